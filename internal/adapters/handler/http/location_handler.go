package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wefixte/Foreach-Wildwatch/internal/core/domain"
	"github.com/wefixte/Foreach-Wildwatch/internal/core/services"
	"github.com/wefixte/Foreach-Wildwatch/internal/monitoring"
)

type LocationHandler struct {
	svc     *services.LocationService
	metrics *monitoring.Metrics
}

func NewLocationHandler(svc *services.LocationService, metrics *monitoring.Metrics) *LocationHandler {
	return &LocationHandler{
		svc:     svc,
		metrics: metrics,
	}
}

func (h *LocationHandler) RegisterRoutes(router *gin.RouterGroup) {
	location := router.Group("/location")
	{
		location.GET("", h.Status)
		location.POST("/permission", h.RequestPermission)
		location.POST("/refresh", h.Refresh)
	}
}

func (h *LocationHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Status())
}

// RequestPermission runs the prompt flow. A rejected prompt is a normal
// outcome (granted=false), not an HTTP error; only a broken provider is.
func (h *LocationHandler) RequestPermission(c *gin.Context) {
	granted, err := h.svc.RequestPermission(c.Request.Context())
	if err != nil && !granted {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	status := h.svc.Status()
	c.JSON(http.StatusOK, gin.H{
		"granted":   granted,
		"state":     status.State,
		"sample":    status.Sample,
		"acquiring": status.Acquiring,
		"error":     status.Error,
	})
}

func (h *LocationHandler) Refresh(c *gin.Context) {
	err := h.svc.RefreshLocation(c.Request.Context())

	switch {
	case errors.Is(err, domain.ErrPermissionRequired):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		return
	case err != nil:
		h.metrics.RecordLocationAcquisition("failure")
		// last-known sample still worth returning
		status := h.svc.Status()
		c.JSON(http.StatusBadGateway, gin.H{
			"error":  status.Error,
			"sample": status.Sample,
		})
		return
	}

	h.metrics.RecordLocationAcquisition("success")
	c.JSON(http.StatusOK, h.svc.Status())
}
