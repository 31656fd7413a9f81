package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wefixte/Foreach-Wildwatch/internal/adapters/cache"
	"github.com/wefixte/Foreach-Wildwatch/internal/adapters/geo"
	adapterHTTP "github.com/wefixte/Foreach-Wildwatch/internal/adapters/handler/http"
	"github.com/wefixte/Foreach-Wildwatch/internal/adapters/media"
	"github.com/wefixte/Foreach-Wildwatch/internal/adapters/repository"
	"github.com/wefixte/Foreach-Wildwatch/internal/adapters/store"
	"github.com/wefixte/Foreach-Wildwatch/internal/config"
	"github.com/wefixte/Foreach-Wildwatch/internal/core/domain"
	"github.com/wefixte/Foreach-Wildwatch/internal/core/services"
	"github.com/wefixte/Foreach-Wildwatch/internal/core/workers"
	"github.com/wefixte/Foreach-Wildwatch/internal/monitoring"
)

func openStore(cfg config.Config) (store.KeyValueStore, error) {
	switch cfg.StoreDriver {
	case config.StorePostgres:
		log.Println("Connecting to postgres store...")
		return store.NewPostgresStore(cfg.PostgresDSN)
	case config.StoreMemory:
		log.Println("Using volatile in-memory store")
		return store.NewMemoryStore(), nil
	default:
		log.Printf("Opening sqlite store at %s", cfg.SQLitePath)
		return store.NewSQLiteStore(cfg.SQLitePath)
	}
}

func buildProvider(cfg config.Config) services.LocationProvider {
	if cfg.GeoProvider == config.GeoBridge && cfg.GeoBridgeURL != "" {
		log.Printf("Using location bridge at %s", cfg.GeoBridgeURL)
		return geo.NewBridgeProvider(cfg.GeoBridgeURL)
	}
	log.Printf("Using static location provider (%.4f, %.4f)", cfg.StaticLatitude, cfg.StaticLongitude)
	return geo.NewStaticProvider(cfg.StaticLatitude, cfg.StaticLongitude)
}

func main() {
	startTime := time.Now()
	cfg := config.Load()

	kv, err := openStore(cfg)
	if err != nil {
		log.Fatalf("Critical: failed to open store: %v", err)
	}
	defer kv.Close()

	var obsRepo domain.ObservationRepository = repository.NewBlobObservationRepository(kv, domain.TimestampRandGenerator{})

	rdb := cache.MaybeConnect(cfg.RedisHost, cfg.RedisPort, cfg.RedisPassword)
	if rdb != nil {
		obsRepo = repository.NewCachedObservationRepository(obsRepo, rdb)
	}

	images, err := media.NewLocalImageStore(cfg.ImageDir)
	if err != nil {
		log.Fatalf("Critical: failed to open image store: %v", err)
	}

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()

	cleanup := workers.NewImageCleanupWorker(images)
	cleanup.Start(workerCtx)

	obsService := services.NewObservationService(obsRepo)
	if err := obsService.Refresh(context.Background()); err != nil {
		log.Printf("Initial observation load failed: %v", err)
	}

	locService := services.NewLocationService(buildProvider(cfg), cfg.Acquire)
	if err := locService.CheckPermission(context.Background()); err != nil {
		log.Printf("Initial permission check failed: %v", err)
	}

	metrics := monitoring.New()

	router := adapterHTTP.NewRouter(adapterHTTP.RouterDependencies{
		ObservationHandler: adapterHTTP.NewObservationHandler(obsService, images, cleanup, metrics),
		LocationHandler:    adapterHTTP.NewLocationHandler(locService, metrics),
		Store:              kv,
		Redis:              rdb,
		Metrics:            metrics,
		StartTime:          startTime,
		RateLimit:          cfg.RateLimit,
		RateWindow:         cfg.RateWindow,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("WildWatch API running on http://localhost:%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Critical server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Stop signal received. Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Forced shutdown error:", err)
	}

	log.Println("Server stopped gracefully.")
}
