package http

import (
	"context"
	"errors"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wefixte/Foreach-Wildwatch/internal/core/domain"
	"github.com/wefixte/Foreach-Wildwatch/internal/core/services"
	"github.com/wefixte/Foreach-Wildwatch/internal/monitoring"
)

type ObservationHandler struct {
	svc     *services.ObservationService
	images  ImageStore
	cleanup ImageDisposer
	metrics *monitoring.Metrics
}

// ImageStore is the slice of the media adapter the handler needs.
type ImageStore interface {
	Save(ctx context.Context, filename string, r io.Reader) (string, error)
	Open(ctx context.Context, uri string) (io.ReadCloser, error)
}

// ImageDisposer receives image URIs that no longer belong to any record.
type ImageDisposer interface {
	Enqueue(imageURI string)
}

func NewObservationHandler(svc *services.ObservationService, images ImageStore, cleanup ImageDisposer, metrics *monitoring.Metrics) *ObservationHandler {
	return &ObservationHandler{
		svc:     svc,
		images:  images,
		cleanup: cleanup,
		metrics: metrics,
	}
}

type createObservationRequest struct {
	Name            string   `json:"name" binding:"required"`
	ObservationDate string   `json:"observationDate"`
	Latitude        *float64 `json:"latitude" binding:"required,gte=-90,lte=90"`
	Longitude       *float64 `json:"longitude" binding:"required,gte=-180,lte=180"`
	ImageURI        string   `json:"imageUri"`
}

type updateObservationRequest struct {
	Name            *string `json:"name"`
	ObservationDate *string `json:"observationDate"`
	ImageURI        *string `json:"imageUri"`
}

func (h *ObservationHandler) RegisterRoutes(router *gin.RouterGroup) {
	observations := router.Group("/observations")
	{
		observations.GET("", h.List)
		observations.POST("", h.Create)
		observations.GET("/:id", h.Get)
		observations.PUT("/:id", h.Update)
		observations.DELETE("/:id", h.Delete)
		observations.POST("/:id/image", h.AttachImage)
		observations.GET("/:id/image", h.Image)
	}
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrObservationNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrNameEmpty),
		errors.Is(err, domain.ErrNameTooLong),
		errors.Is(err, domain.ErrInvalidDate):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// List re-synchronizes the mirror and returns it. Every fetch of the map
// view goes through here, which is what keeps the collection fresh after
// sub-screen edits. A store failure degrades to the last good snapshot
// with the error attached instead of a blank map.
func (h *ObservationHandler) List(c *gin.Context) {
	_ = h.svc.Refresh(c.Request.Context())

	c.JSON(http.StatusOK, gin.H{
		"observations": h.svc.Snapshot(),
		"isLoading":    h.svc.IsLoading(),
		"error":        h.svc.Err(),
	})
}

func (h *ObservationHandler) Get(c *gin.Context) {
	obs, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, obs)
}

func (h *ObservationHandler) Create(c *gin.Context) {
	var req createObservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// the form defaults the date to today
	if req.ObservationDate == "" {
		req.ObservationDate = domain.FormatDate(time.Now())
	}

	obs, err := h.svc.Create(c.Request.Context(), domain.CreateObservationInput{
		Name:            req.Name,
		ObservationDate: req.ObservationDate,
		Latitude:        *req.Latitude,
		Longitude:       *req.Longitude,
		ImageURI:        req.ImageURI,
	})
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	h.metrics.RecordObservationMutation("create")
	c.JSON(http.StatusCreated, obs)
}

func (h *ObservationHandler) Update(c *gin.Context) {
	id := c.Param("id")

	var req updateObservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	previous, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	obs, err := h.svc.Update(c.Request.Context(), id, domain.UpdateObservationInput{
		Name:            req.Name,
		ObservationDate: req.ObservationDate,
		ImageURI:        req.ImageURI,
	})
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	if previous.ImageURI != "" && previous.ImageURI != obs.ImageURI {
		h.cleanup.Enqueue(previous.ImageURI)
	}

	h.metrics.RecordObservationMutation("update")
	c.JSON(http.StatusOK, obs)
}

func (h *ObservationHandler) Delete(c *gin.Context) {
	id := c.Param("id")

	previous, err := h.svc.Get(c.Request.Context(), id)
	if err != nil && !errors.Is(err, domain.ErrObservationNotFound) {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	removed, err := h.svc.Delete(c.Request.Context(), id)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	if !removed {
		c.JSON(http.StatusNotFound, gin.H{"error": domain.ErrObservationNotFound.Error()})
		return
	}

	if previous != nil && previous.ImageURI != "" {
		h.cleanup.Enqueue(previous.ImageURI)
	}

	h.metrics.RecordObservationMutation("delete")
	c.Status(http.StatusNoContent)
}

// AttachImage stores an uploaded photo and pins it to the observation.
func (h *ObservationHandler) AttachImage(c *gin.Context) {
	id := c.Param("id")

	previous, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	file, header, err := c.Request.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file missing"})
		return
	}
	defer file.Close()

	uri, err := h.images.Save(c.Request.Context(), header.Filename, file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	obs, err := h.svc.Update(c.Request.Context(), id, domain.UpdateObservationInput{ImageURI: &uri})
	if err != nil {
		// the record never got the photo; don't leak the file
		h.cleanup.Enqueue(uri)
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	if previous.ImageURI != "" {
		h.cleanup.Enqueue(previous.ImageURI)
	}

	h.metrics.RecordObservationMutation("attach_image")
	c.JSON(http.StatusOK, obs)
}

func (h *ObservationHandler) Image(c *gin.Context) {
	obs, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}
	if obs.ImageURI == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "observation has no photo"})
		return
	}

	f, err := h.images.Open(c.Request.Context(), obs.ImageURI)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	defer f.Close()

	contentType := mime.TypeByExtension(filepath.Ext(obs.ImageURI))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.DataFromReader(http.StatusOK, -1, contentType, f, nil)
}
