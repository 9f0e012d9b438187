package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const appTestCSV = `Region, Date, Frequency, Estimated Unemployment Rate (%)
Goa,01-02-2020,M,4.0
Goa,01-03-2020,M,6.5
Bihar,01-02-2020,M,11.0
`

func writeTestDataset(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "unemployment.csv")
	require.NoError(t, os.WriteFile(path, []byte(appTestCSV), 0o644))
	return path
}

func newTestApplication(t *testing.T) *Application {
	t.Helper()
	t.Setenv("LP_DATASET_PATH", writeTestDataset(t))
	t.Setenv("LP_LOGGING_OUTPUT", "console")
	t.Setenv("LP_SECURITY_RATE_LIMIT_ENABLED", "false")

	frontend := fstest.MapFS{
		"index.html": &fstest.MapFile{Data: []byte("<!DOCTYPE html><title>Labor Pulse</title>")},
		"app.css":    &fstest.MapFile{Data: []byte("body{}")},
	}

	app, err := NewApplication(frontend)
	require.NoError(t, err)
	t.Cleanup(func() {
		app.Stop(context.Background())
	})
	return app
}

func TestApplication(t *testing.T) {
	app := newTestApplication(t)

	get := func(path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		return rec
	}

	t.Run("liveness", func(t *testing.T) {
		rec := get("/api/health/live")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "alive")
	})

	t.Run("readiness loads dataset", func(t *testing.T) {
		rec := get("/api/health/ready")
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("regions", func(t *testing.T) {
		rec := get("/api/regions")
		require.Equal(t, http.StatusOK, rec.Code)

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "success", body["status"])
		assert.Equal(t, float64(2), body["count"])
	})

	t.Run("summary", func(t *testing.T) {
		rec := get("/api/summary")
		require.Equal(t, http.StatusOK, rec.Code)

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		data := body["data"].(map[string]interface{})
		assert.InDelta(t, 7.1666, data["mean_rate"].(float64), 0.001)
		assert.Equal(t, float64(11.0), data["max_rate"])
	})

	t.Run("region chart is png", func(t *testing.T) {
		rec := get("/api/charts/region/Goa")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
		assert.True(t, strings.HasPrefix(rec.Body.String(), "\x89PNG"))
	})

	t.Run("unknown region is a problem document", func(t *testing.T) {
		rec := get("/api/charts/region/Atlantis")
		require.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Type"), "application/problem+json")
	})

	t.Run("metrics endpoint", func(t *testing.T) {
		rec := get("/metrics")
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("frontend index", func(t *testing.T) {
		rec := get("/")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
		assert.Contains(t, rec.Body.String(), "Labor Pulse")
	})

	t.Run("frontend asset", func(t *testing.T) {
		rec := get("/app.css")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "text/css", rec.Header().Get("Content-Type"))
	})

	t.Run("request id header", func(t *testing.T) {
		rec := get("/api/regions")
		assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	})

	t.Run("security headers", func(t *testing.T) {
		rec := get("/api/regions")
		assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	})
}
