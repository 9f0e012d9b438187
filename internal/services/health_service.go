package services

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"

	"laborpulse/internal/dataset"
)

// HealthService provides health check functionality
type HealthService struct {
	version   string
	buildTime string
	store     *dataset.Store
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
	Services  map[string]interface{} `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// NewHealthService creates a new health service with injected dependencies
func NewHealthService(version, buildTime string, store *dataset.Store, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		version:   version,
		buildTime: buildTime,
		store:     store,
		startTime: time.Now(),
		logger:    logger.With(slog.String("service", "health")),
	}
}

// Health returns the overall health status including dataset availability
func (h *HealthService) Health(ctx context.Context) *HealthStatus {
	status := &HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   h.version,
		Runtime: map[string]interface{}{
			"go_version":     runtime.Version(),
			"goroutines":     runtime.NumGoroutine(),
			"uptime_seconds": time.Since(h.startTime).Seconds(),
			"os":             runtime.GOOS,
			"arch":           runtime.GOARCH,
		},
		Services: map[string]interface{}{},
	}

	datasetHealth := ServiceHealth{Status: "healthy"}
	if _, err := os.Stat(h.store.Path()); err != nil {
		datasetHealth = ServiceHealth{
			Status:  "degraded",
			Message: fmt.Sprintf("dataset file unavailable: %v", err),
		}
		status.Status = "degraded"
	}
	status.Services["dataset"] = datasetHealth

	return status
}

// Ready reports whether the service can answer data requests. The first call
// forces the dataset load; later calls hit the cache.
func (h *HealthService) Ready(ctx context.Context) error {
	if _, err := h.store.Table(ctx); err != nil {
		h.logger.WarnContext(ctx, "readiness check failed", slog.String("error", err.Error()))
		return fmt.Errorf("dataset not ready: %w", err)
	}
	return nil
}

// Version returns build information
func (h *HealthService) Version() map[string]string {
	return map[string]string{
		"version":    h.version,
		"build_time": h.buildTime,
		"go_version": runtime.Version(),
	}
}
