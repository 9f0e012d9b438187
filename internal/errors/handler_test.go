package errors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestErrorHandler_HandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{
			name:       "api error maps by error code",
			err:        RegionNotFoundError("Kerala"),
			wantStatus: http.StatusNotFound,
			wantType:   TypeRegionNotFound,
		},
		{
			name:       "no chart data",
			err:        ErrNoChartData,
			wantStatus: http.StatusUnprocessableEntity,
			wantType:   TypeNoChartData,
		},
		{
			name:       "dataset unavailable",
			err:        DatasetLoadError(errors.New("open data.csv: no such file")),
			wantStatus: http.StatusServiceUnavailable,
			wantType:   TypeDatasetUnavailable,
		},
		{
			name:       "storage app error maps to dataset unavailable",
			err:        NewStorageError("dataset read", errors.New("disk gone")),
			wantStatus: http.StatusServiceUnavailable,
			wantType:   TypeDatasetUnavailable,
		},
		{
			name:       "render app error stays internal",
			err:        NewRenderError("national_comparison", errors.New("font missing")),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeInternal,
		},
		{
			name:       "context deadline becomes timeout",
			err:        fmt.Errorf("loading: %w", context.DeadlineExceeded),
			wantStatus: http.StatusGatewayTimeout,
			wantType:   TypeTimeout,
		},
		{
			name:       "plain not-found message",
			err:        errors.New("observation not found"),
			wantStatus: http.StatusNotFound,
			wantType:   TypeNotFound,
		},
		{
			name:       "unknown error becomes internal",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewErrorHandler(testLogger(), false)
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/observations", nil)

			h.HandleError(rec, req, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Header().Get("Content-Type"), "application/problem+json")

			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantType, body["type"])
			assert.Equal(t, float64(tt.wantStatus), body["status"])
		})
	}
}

func TestErrorHandler_HandleErrorNil(t *testing.T) {
	h := NewErrorHandler(testLogger(), false)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/summary", nil)

	h.HandleError(rec, req, nil)

	assert.Empty(t, rec.Body.String())
}

func TestErrorHandler_StackTraceOnlyWhenEnabled(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/summary", nil)

	for _, includeStack := range []bool{true, false} {
		h := NewErrorHandler(testLogger(), includeStack)
		rec := httptest.NewRecorder()
		h.HandleError(rec, req, errors.New("boom"))

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		_, hasStack := body["stack"]
		assert.Equal(t, includeStack, hasStack)
	}
}

func TestErrorHandler_HandlePanic(t *testing.T) {
	h := NewErrorHandler(testLogger(), false)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/charts/national", nil)

	h.HandlePanic(rec, req, "nil pointer dereference")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, TypeInternal, body["type"])
}

func TestErrorHandler_NotFoundAndMethodNotAllowed(t *testing.T) {
	h := NewErrorHandler(testLogger(), false)

	rec := httptest.NewRecorder()
	h.NotFound(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	h.MethodNotAllowed(rec, httptest.NewRequest(http.MethodDelete, "/api/summary", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestProblemDetails_MarshalIncludesExtensions(t *testing.T) {
	pd := NewProblemDetails(http.StatusNotFound, TypeRegionNotFound, "Region Not Found", "no such region", "/api/observations").
		WithExtension("region", "Kerala")

	raw, err := json.Marshal(pd)
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, "Kerala", body["region"])
	assert.Equal(t, "Region Not Found", body["title"])
}

func TestAppError_WrapsAndFormats(t *testing.T) {
	cause := errors.New("bad header")
	err := NewParsingError("failed to clean CSV", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "PARSING")
	assert.Contains(t, err.Error(), "bad header")

	err.WithContext("row", 7)
	assert.Equal(t, 7, err.Context["row"])
}
