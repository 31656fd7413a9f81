package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wefixte/Foreach-Wildwatch/internal/adapters/geo"
	adapterHTTP "github.com/wefixte/Foreach-Wildwatch/internal/adapters/handler/http"
	"github.com/wefixte/Foreach-Wildwatch/internal/adapters/media"
	"github.com/wefixte/Foreach-Wildwatch/internal/adapters/repository"
	"github.com/wefixte/Foreach-Wildwatch/internal/adapters/store"
	"github.com/wefixte/Foreach-Wildwatch/internal/core/domain"
	"github.com/wefixte/Foreach-Wildwatch/internal/core/services"
	"github.com/wefixte/Foreach-Wildwatch/internal/core/workers"
	"github.com/wefixte/Foreach-Wildwatch/internal/monitoring"
)

type observationBody struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	ObservationDate string  `json:"observationDate"`
	Latitude        float64 `json:"latitude"`
	Longitude       float64 `json:"longitude"`
}

func buildApp(t *testing.T, kv store.KeyValueStore) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := repository.NewBlobObservationRepository(kv, domain.TimestampRandGenerator{})
	obsService := services.NewObservationService(repo)
	locService := services.NewLocationService(geo.NewStaticProvider(48.8566, 2.3522), domain.DefaultAcquireOptions())

	images, err := media.NewLocalImageStore(filepath.Join(t.TempDir(), "images"))
	require.NoError(t, err)
	cleanup := workers.NewImageCleanupWorker(images)
	cleanup.Start(t.Context())

	return adapterHTTP.NewRouter(adapterHTTP.RouterDependencies{
		ObservationHandler: adapterHTTP.NewObservationHandler(obsService, images, cleanup, nil),
		LocationHandler:    adapterHTTP.NewLocationHandler(locService, nil),
		Store:              kv,
		Metrics:            monitoring.New(),
		StartTime:          time.Now(),
	})
}

func do(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestEndToEndObservationLifecycle(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "wildwatch.db")
	kv, err := store.NewSQLiteStore(dbPath)
	require.NoError(t, err)
	defer kv.Close()

	app := buildApp(t, kv)

	w := do(app, http.MethodPost, "/api/v1/observations", gin.H{
		"name":            "Heron",
		"observationDate": "05-06-2024",
		"latitude":        48.85,
		"longitude":       2.35,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var created observationBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)

	w = do(app, http.MethodPut, "/api/v1/observations/"+created.ID, gin.H{"name": "Grey Heron"})
	require.Equal(t, http.StatusOK, w.Code)

	var updated observationBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, "Grey Heron", updated.Name)
	assert.Equal(t, "05-06-2024", updated.ObservationDate)

	// a fresh app instance over the same sqlite file sees the record
	restarted := buildApp(t, kv)
	w = do(restarted, http.MethodGet, "/api/v1/observations", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var listed struct {
		Observations []observationBody `json:"observations"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	require.Len(t, listed.Observations, 1)
	assert.Equal(t, "Grey Heron", listed.Observations[0].Name)

	w = do(restarted, http.MethodDelete, "/api/v1/observations/"+created.ID, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = do(restarted, http.MethodGet, "/api/v1/observations", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	assert.Empty(t, listed.Observations)
}

func TestEndToEndLocationFlow(t *testing.T) {
	kv := store.NewMemoryStore()
	app := buildApp(t, kv)

	w := do(app, http.MethodPost, "/api/v1/location/permission", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var granted struct {
		Granted bool `json:"granted"`
		Sample  *struct {
			Latitude float64 `json:"latitude"`
		} `json:"sample"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &granted))
	assert.True(t, granted.Granted)
	require.NotNil(t, granted.Sample)
	assert.Equal(t, 48.8566, granted.Sample.Latitude)

	w = do(app, http.MethodPost, "/api/v1/location/refresh", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHealthEndpoint(t *testing.T) {
	app := buildApp(t, store.NewMemoryStore())

	w := do(app, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"store":"reachable"`)
}

func TestMetricsEndpoint(t *testing.T) {
	app := buildApp(t, store.NewMemoryStore())

	do(app, http.MethodGet, "/api/v1/observations", nil)

	w := do(app, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "wildwatch_http_requests_total")
}
