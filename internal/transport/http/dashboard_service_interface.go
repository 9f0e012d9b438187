package http

import (
	"context"
	"io"

	"laborpulse/internal/dataset"
	"laborpulse/internal/services"
)

// DashboardServiceInterface defines the interface for dashboard operations
type DashboardServiceInterface interface {
	Summary(ctx context.Context) (*services.Summary, error)
	Regions(ctx context.Context) ([]string, error)
	Observations(ctx context.Context, region string) ([]services.Observation, error)
	RegionAverages(ctx context.Context) ([]dataset.RegionAverage, error)

	RegionChart(ctx context.Context, region string) ([]byte, error)
	NationalChart(ctx context.Context) ([]byte, error)
	AveragesChart(ctx context.Context) ([]byte, error)

	ExportXLSX(ctx context.Context, w io.Writer) error
	ExportCSV(ctx context.Context, w io.Writer) error
}
