package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"laborpulse/internal/charts"
	"laborpulse/internal/dataset"
	apierrors "laborpulse/internal/errors"
	"laborpulse/internal/exporter"
	"laborpulse/internal/infrastructure"
)

// DashboardService answers the dashboard's data questions from the cached
// observation table and renders its charts.
type DashboardService struct {
	store    *dataset.Store
	renderer *charts.Renderer
	metrics  *infrastructure.DashboardMetrics
	logger   *slog.Logger
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(store *dataset.Store, renderer *charts.Renderer, logger *slog.Logger) *DashboardService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DashboardService{
		store:    store,
		renderer: renderer,
		logger:   logger.With(slog.String("service", "dashboard")),
	}
}

// SetMetrics attaches dashboard metrics. Optional; nil metrics are skipped.
func (s *DashboardService) SetMetrics(m *infrastructure.DashboardMetrics) {
	s.metrics = m
}

// Summary holds the headline metrics shown above the charts
type Summary struct {
	MeanRate     *float64  `json:"mean_rate"`
	MaxRate      *float64  `json:"max_rate"`
	Regions      int       `json:"regions"`
	Observations int       `json:"observations"`
	From         string    `json:"from,omitempty"`
	To           string    `json:"to,omitempty"`
	LockdownDate time.Time `json:"lockdown_date"`
}

// Observation is the JSON shape of a single cleaned data point
type Observation struct {
	Region string   `json:"region"`
	Date   string   `json:"date"`
	Rate   *float64 `json:"rate"`
}

const dateFormat = "2006-01-02"

// Summary computes national headline metrics over the full dataset
func (s *DashboardService) Summary(ctx context.Context) (*Summary, error) {
	table, err := s.store.Table(ctx)
	if err != nil {
		return nil, fmt.Errorf("summary: %w", err)
	}

	summary := &Summary{
		Regions:      len(table.Regions()),
		Observations: len(table.Rows),
		LockdownDate: charts.LockdownDate,
	}

	if mean, ok := table.MeanRate(); ok {
		summary.MeanRate = &mean
	}
	if max, ok := table.MaxRate(); ok {
		summary.MaxRate = &max
	}
	if from, to, ok := table.DateSpan(); ok {
		summary.From = from.Format(dateFormat)
		summary.To = to.Format(dateFormat)
	}

	return summary, nil
}

// Regions returns the sorted distinct region names
func (s *DashboardService) Regions(ctx context.Context) ([]string, error) {
	table, err := s.store.Table(ctx)
	if err != nil {
		return nil, fmt.Errorf("regions: %w", err)
	}
	return table.Regions(), nil
}

// Observations returns the cleaned observations, optionally filtered to one
// region. An unknown region yields ErrRegionNotFound.
func (s *DashboardService) Observations(ctx context.Context, region string) ([]Observation, error) {
	table, err := s.store.Table(ctx)
	if err != nil {
		return nil, fmt.Errorf("observations: %w", err)
	}

	rows := table.Rows
	if region != "" {
		if !table.HasRegion(region) {
			return nil, fmt.Errorf("observations: %q: %w", region, ErrRegionNotFound)
		}
		rows = table.FilterRegion(region)
	}

	out := make([]Observation, 0, len(rows))
	for _, row := range rows {
		out = append(out, Observation{
			Region: row.Region,
			Date:   row.Date.Format(dateFormat),
			Rate:   row.Rate,
		})
	}
	return out, nil
}

// RegionAverages returns per-region mean rates, highest first
func (s *DashboardService) RegionAverages(ctx context.Context) ([]dataset.RegionAverage, error) {
	table, err := s.store.Table(ctx)
	if err != nil {
		return nil, fmt.Errorf("region averages: %w", err)
	}
	return table.RegionAverages(), nil
}

// RegionChart renders the single-region time series as PNG
func (s *DashboardService) RegionChart(ctx context.Context, region string) ([]byte, error) {
	table, err := s.store.Table(ctx)
	if err != nil {
		return nil, fmt.Errorf("region chart: %w", err)
	}

	if !table.HasRegion(region) {
		return nil, fmt.Errorf("region chart: %q: %w", region, ErrRegionNotFound)
	}

	return s.render(ctx, "region_series", func() ([]byte, error) {
		return s.renderer.RegionSeries(table, region)
	})
}

// NationalChart renders the all-regions comparison as PNG
func (s *DashboardService) NationalChart(ctx context.Context) ([]byte, error) {
	table, err := s.store.Table(ctx)
	if err != nil {
		return nil, fmt.Errorf("national chart: %w", err)
	}

	return s.render(ctx, "national_comparison", func() ([]byte, error) {
		return s.renderer.NationalComparison(table)
	})
}

// AveragesChart renders the region-average bar chart as PNG
func (s *DashboardService) AveragesChart(ctx context.Context) ([]byte, error) {
	table, err := s.store.Table(ctx)
	if err != nil {
		return nil, fmt.Errorf("averages chart: %w", err)
	}

	return s.render(ctx, "region_averages", func() ([]byte, error) {
		return s.renderer.AveragesBar(table.RegionAverages())
	})
}

// render wraps chart rendering with metrics and error mapping
func (s *DashboardService) render(ctx context.Context, chart string, fn func() ([]byte, error)) ([]byte, error) {
	start := time.Now()
	png, err := fn()
	infrastructure.RecordChartRender(ctx, s.metrics, chart, time.Since(start), err)

	if err != nil {
		if errors.Is(err, charts.ErrNoData) {
			return nil, fmt.Errorf("%s: %w", chart, ErrNoChartData)
		}
		infrastructure.RecordError(ctx, err)
		s.logger.ErrorContext(ctx, "chart render failed",
			slog.String("chart", chart),
			slog.String("error", err.Error()))
		return nil, apierrors.NewRenderError(chart, err)
	}
	return png, nil
}

// ExportXLSX streams the dataset workbook
func (s *DashboardService) ExportXLSX(ctx context.Context, w io.Writer) error {
	table, err := s.store.Table(ctx)
	if err != nil {
		return fmt.Errorf("export xlsx: %w", err)
	}

	if err := exporter.WriteWorkbook(w, table); err != nil {
		return fmt.Errorf("export xlsx: %w", err)
	}
	s.recordExport(ctx, "xlsx")
	return nil
}

// ExportCSV streams the cleaned dataset as CSV
func (s *DashboardService) ExportCSV(ctx context.Context, w io.Writer) error {
	table, err := s.store.Table(ctx)
	if err != nil {
		return fmt.Errorf("export csv: %w", err)
	}

	if err := exporter.WriteCSV(w, table); err != nil {
		return fmt.Errorf("export csv: %w", err)
	}
	s.recordExport(ctx, "csv")
	return nil
}

func (s *DashboardService) recordExport(ctx context.Context, format string) {
	if s.metrics != nil {
		s.metrics.ExportsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("format", format)))
	}
	s.logger.InfoContext(ctx, "dataset exported", slog.String("format", format))
}
