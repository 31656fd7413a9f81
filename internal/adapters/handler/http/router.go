package http

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/wefixte/Foreach-Wildwatch/internal/adapters/handler/http/middleware"
	"github.com/wefixte/Foreach-Wildwatch/internal/adapters/store"
	"github.com/wefixte/Foreach-Wildwatch/internal/monitoring"
)

type RouterDependencies struct {
	ObservationHandler *ObservationHandler
	LocationHandler    *LocationHandler
	Store              store.KeyValueStore
	Redis              *redis.Client
	Metrics            *monitoring.Metrics
	StartTime          time.Time

	RateLimit  int
	RateWindow time.Duration
}

func NewRouter(deps RouterDependencies) *gin.Engine {
	router := gin.Default()

	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	if deps.Metrics != nil {
		router.Use(middleware.MetricsMiddleware(deps.Metrics))
		router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	if deps.Redis != nil {
		limiter := middleware.NewRateLimiter(deps.Redis, deps.RateLimit, deps.RateWindow)
		router.Use(limiter.Middleware())
	}

	router.GET("/health", func(c *gin.Context) {
		storeStatus := "reachable"
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if _, _, err := deps.Store.Get(ctx, "health:probe"); err != nil {
			storeStatus = "unreachable"
		}

		redisStatus := "disabled"
		if deps.Redis != nil {
			redisStatus = "connected"
			if deps.Redis.Ping(c.Request.Context()).Err() != nil {
				redisStatus = "unreachable"
			}
		}

		statusCode := 200
		if storeStatus == "unreachable" || redisStatus == "unreachable" {
			statusCode = 503
		}

		c.JSON(statusCode, gin.H{
			"status": "ok",
			"store":  storeStatus,
			"redis":  redisStatus,
			"uptime": time.Since(deps.StartTime).String(),
		})
	})

	apiV1 := router.Group("/api/v1")

	deps.ObservationHandler.RegisterRoutes(apiV1)
	deps.LocationHandler.RegisterRoutes(apiV1)

	return router
}
