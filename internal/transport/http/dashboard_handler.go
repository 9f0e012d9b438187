package http

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"laborpulse/internal/dataset"
	apierrors "laborpulse/internal/errors"
	"laborpulse/internal/middleware"
	"laborpulse/internal/services"
)

// DashboardHandler handles dashboard HTTP requests with RFC 7807 compliance
type DashboardHandler struct {
	service      DashboardServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewDashboardHandler creates a new dashboard handler with RFC 7807 error handling
func NewDashboardHandler(service DashboardServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DashboardHandler {
	return &DashboardHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "dashboard_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the dashboard routes with proper Chi patterns
func (h *DashboardHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/summary", h.GetSummary)
	r.Get("/regions", h.GetRegions)
	r.Get("/observations", h.GetObservations)
	r.Get("/averages", h.GetAverages)

	r.Route("/charts", func(r chi.Router) {
		r.Get("/national", h.GetNationalChart)
		r.Get("/averages", h.GetAveragesChart)
		r.Route("/region/{region}", func(r chi.Router) {
			r.Use(h.RegionCtx)
			r.Get("/", h.GetRegionChart)
		})
	})

	r.Route("/export", func(r chi.Router) {
		r.Get("/xlsx", h.ExportXLSX)
		r.Get("/csv", h.ExportCSV)
	})

	return r
}

// RegionCtx middleware validates the region parameter
func (h *DashboardHandler) RegionCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		region := chi.URLParam(r, "region")
		if region == "" {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("region", "Region name is required"))
			return
		}

		if len(region) > 64 {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("region", "Region name is too long"))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// GetSummary handles GET /api/summary
func (h *DashboardHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context())
	if err != nil {
		h.handleServiceError(w, r, "", err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   summary,
	})
}

// GetRegions handles GET /api/regions
func (h *DashboardHandler) GetRegions(w http.ResponseWriter, r *http.Request) {
	regions, err := h.service.Regions(r.Context())
	if err != nil {
		h.handleServiceError(w, r, "", err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   regions,
		"count":  len(regions),
	})
}

// GetObservations handles GET /api/observations?region=NAME
func (h *DashboardHandler) GetObservations(w http.ResponseWriter, r *http.Request) {
	region := r.URL.Query().Get("region")

	observations, err := h.service.Observations(r.Context(), region)
	if err != nil {
		h.handleServiceError(w, r, region, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   observations,
		"count":  len(observations),
	})
}

// GetAverages handles GET /api/averages
func (h *DashboardHandler) GetAverages(w http.ResponseWriter, r *http.Request) {
	averages, err := h.service.RegionAverages(r.Context())
	if err != nil {
		h.handleServiceError(w, r, "", err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   averages,
		"count":  len(averages),
	})
}

// GetRegionChart handles GET /api/charts/region/{region}
func (h *DashboardHandler) GetRegionChart(w http.ResponseWriter, r *http.Request) {
	region := chi.URLParam(r, "region")

	png, err := h.service.RegionChart(r.Context(), region)
	if err != nil {
		h.handleServiceError(w, r, region, err)
		return
	}

	h.writePNG(w, r, png)
}

// GetNationalChart handles GET /api/charts/national
func (h *DashboardHandler) GetNationalChart(w http.ResponseWriter, r *http.Request) {
	png, err := h.service.NationalChart(r.Context())
	if err != nil {
		h.handleServiceError(w, r, "", err)
		return
	}

	h.writePNG(w, r, png)
}

// GetAveragesChart handles GET /api/charts/averages
func (h *DashboardHandler) GetAveragesChart(w http.ResponseWriter, r *http.Request) {
	png, err := h.service.AveragesChart(r.Context())
	if err != nil {
		h.handleServiceError(w, r, "", err)
		return
	}

	h.writePNG(w, r, png)
}

// ExportXLSX handles GET /api/export/xlsx
func (h *DashboardHandler) ExportXLSX(w http.ResponseWriter, r *http.Request) {
	// The dataset is small; buffering keeps export failures reportable as
	// problem documents instead of truncated downloads.
	var buf bytes.Buffer
	if err := h.service.ExportXLSX(r.Context(), &buf); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ExportError("xlsx", err))
		return
	}

	h.writeAttachment(w, r, buf.Bytes(),
		fmt.Sprintf("unemployment_%s.xlsx", time.Now().Format("2006-01-02")),
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
}

// ExportCSV handles GET /api/export/csv
func (h *DashboardHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.service.ExportCSV(r.Context(), &buf); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ExportError("csv", err))
		return
	}

	h.writeAttachment(w, r, buf.Bytes(),
		fmt.Sprintf("unemployment_%s.csv", time.Now().Format("2006-01-02")),
		"text/csv; charset=utf-8")
}

func (h *DashboardHandler) writeAttachment(w http.ResponseWriter, r *http.Request, body []byte, filename, contentType string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if _, err := w.Write(body); err != nil {
		h.logger.WarnContext(r.Context(), "failed to write export response",
			slog.String("file", filename),
			slog.String("error", err.Error()))
	}
}

// writePNG writes chart bytes with caching disabled so region switches always re-render
func (h *DashboardHandler) writePNG(w http.ResponseWriter, r *http.Request, png []byte) {
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(png); err != nil {
		h.logger.WarnContext(r.Context(), "failed to write chart response",
			slog.String("error", err.Error()))
	}
}

// handleServiceError maps service errors to API errors before delegating
func (h *DashboardHandler) handleServiceError(w http.ResponseWriter, r *http.Request, region string, err error) {
	h.logger.ErrorContext(r.Context(), "dashboard request failed",
		slog.String("error", err.Error()),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("path", r.URL.Path),
	)

	switch {
	case errors.Is(err, services.ErrRegionNotFound):
		h.errorHandler.HandleError(w, r, apierrors.RegionNotFoundError(region))
	case errors.Is(err, services.ErrNoChartData):
		h.errorHandler.HandleError(w, r, apierrors.ErrNoChartData)
	case errors.Is(err, os.ErrNotExist), errors.Is(err, dataset.ErrRateColumnNotFound):
		h.errorHandler.HandleError(w, r, apierrors.DatasetLoadError(err))
	default:
		h.errorHandler.HandleError(w, r, err)
	}
}
