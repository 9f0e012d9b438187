package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gonum.org/v1/plot/vg"

	"laborpulse/internal/charts"
	"laborpulse/internal/config"
	"laborpulse/internal/dataset"
	"laborpulse/internal/exporter"
	"laborpulse/internal/infrastructure"
	"laborpulse/internal/services"
)

func main() {
	input := flag.String("in", "", "dataset csv path (defaults to LP_DATASET_PATH or data/unemployment.csv)")
	outputDir := flag.String("out", "reports", "output directory for the workbook, csv, and charts")
	width := flag.Float64("width", 10, "chart width in inches")
	height := flag.Float64("height", 5, "chart height in inches")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Warn("Failed to load config, using defaults", "error", err)
		cfg = config.Default()
	}
	if *input == "" {
		*input = cfg.Dataset.Path
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}

	logger.Info("Starting report generation",
		slog.String("input", *input),
		slog.String("output_dir", *outputDir))

	if err := run(*input, *outputDir, *width, *height, logger); err != nil {
		logger.Error("Report generation failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("Report generation complete", slog.String("output_dir", *outputDir))
}

func run(input, outputDir string, width, height float64, logger *slog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	ctx = infrastructure.EnsureTraceID(ctx)

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	store := dataset.NewStore(input, logger)
	table, err := store.Table(ctx)
	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}

	logger.Info("Dataset loaded",
		slog.Int("rows", len(table.Rows)),
		slog.Int("regions", len(table.Regions())))

	renderer := &charts.Renderer{
		Width:  vg.Length(width) * vg.Inch,
		Height: vg.Length(height) * vg.Inch,
	}
	svc := services.NewDashboardService(store, renderer, logger)

	stamp := time.Now().Format("2006-01-02")

	xlsxPath := filepath.Join(outputDir, fmt.Sprintf("unemployment_%s.xlsx", stamp))
	if err := writeFile(xlsxPath, func(f *os.File) error {
		return svc.ExportXLSX(ctx, f)
	}); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	csvPath := filepath.Join(outputDir, fmt.Sprintf("unemployment_%s.csv", stamp))
	if err := writeFile(csvPath, func(f *os.File) error {
		return svc.ExportCSV(ctx, f)
	}); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}

	national, err := svc.NationalChart(ctx)
	if err != nil {
		return fmt.Errorf("failed to render national chart: %w", err)
	}
	if err := os.WriteFile(filepath.Join(outputDir, "national.png"), national, 0o644); err != nil {
		return err
	}

	averages, err := svc.AveragesChart(ctx)
	if err != nil {
		return fmt.Errorf("failed to render averages chart: %w", err)
	}
	if err := os.WriteFile(filepath.Join(outputDir, "averages.png"), averages, 0o644); err != nil {
		return err
	}

	// One trend chart per region; regions with no plottable rows are skipped.
	for _, region := range table.Regions() {
		png, err := svc.RegionChart(ctx, region)
		if err != nil {
			logger.Warn("Skipping region chart",
				slog.String("region", region),
				slog.String("reason", err.Error()))
			continue
		}
		name := fmt.Sprintf("region_%s.png", exporter.SafeFileName(region))
		if err := os.WriteFile(filepath.Join(outputDir, name), png, 0o644); err != nil {
			return err
		}
	}

	return nil
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
