package exporter

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"laborpulse/internal/dataset"
)

const (
	observationsSheet = "Observations"
	averagesSheet     = "Region Averages"
)

// Workbook builds an Excel workbook with the cleaned observation table and
// the region-average summary, one sheet each.
func Workbook(table *dataset.Table) (*excelize.File, error) {
	f := excelize.NewFile()
	f.SetSheetName("Sheet1", observationsSheet)

	headers := observationHeaders(table)
	for i, header := range headers {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, fmt.Errorf("failed to map header column: %w", err)
		}
		if err := f.SetCellValue(observationsSheet, col+"1", header); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
		f.SetColWidth(observationsSheet, col, col, 18)
	}

	for i, row := range table.Rows {
		values := observationValues(table, row)
		for j, v := range values {
			cell, err := excelize.CoordinatesToCellName(j+1, i+2)
			if err != nil {
				return nil, fmt.Errorf("failed to map cell: %w", err)
			}
			if err := f.SetCellValue(observationsSheet, cell, v); err != nil {
				return nil, fmt.Errorf("failed to write row %d: %w", i, err)
			}
		}
	}

	if _, err := f.NewSheet(averagesSheet); err != nil {
		return nil, fmt.Errorf("failed to create averages sheet: %w", err)
	}

	f.SetCellValue(averagesSheet, "A1", "Rank")
	f.SetCellValue(averagesSheet, "B1", dataset.RegionColumn)
	f.SetCellValue(averagesSheet, "C1", "Mean "+dataset.RateColumn)
	f.SetCellValue(averagesSheet, "D1", "Observations")
	f.SetColWidth(averagesSheet, "B", "C", 28)

	for i, avg := range table.RegionAverages() {
		row := i + 2
		f.SetCellValue(averagesSheet, fmt.Sprintf("A%d", row), i+1)
		f.SetCellValue(averagesSheet, fmt.Sprintf("B%d", row), avg.Region)
		f.SetCellValue(averagesSheet, fmt.Sprintf("C%d", row), fmt.Sprintf("%.2f", avg.MeanRate))
		f.SetCellValue(averagesSheet, fmt.Sprintf("D%d", row), avg.Count)
	}

	return f, nil
}

// WriteWorkbook streams the workbook to w, for HTTP downloads.
func WriteWorkbook(w io.Writer, table *dataset.Table) error {
	f, err := Workbook(table)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// SaveWorkbook writes the workbook to a file, for the batch report command.
func SaveWorkbook(path string, table *dataset.Table) error {
	f, err := Workbook(table)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

// SafeFileName converts a region name into a filename-safe token.
func SafeFileName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// observationHeaders returns the export column order: the three canonical
// columns first, then any passthrough columns in table order.
func observationHeaders(table *dataset.Table) []string {
	headers := []string{dataset.RegionColumn, dataset.DateColumn, dataset.RateColumn}
	for _, c := range table.Columns {
		if c == dataset.RegionColumn || c == dataset.DateColumn || c == dataset.RateColumn {
			continue
		}
		headers = append(headers, c)
	}
	return headers
}

func observationValues(table *dataset.Table, row dataset.Observation) []interface{} {
	values := []interface{}{row.Region, row.Date.Format(dataset.DateLayout)}
	if row.Rate != nil {
		values = append(values, *row.Rate)
	} else {
		values = append(values, "")
	}
	for _, c := range table.Columns {
		if c == dataset.RegionColumn || c == dataset.DateColumn || c == dataset.RateColumn {
			continue
		}
		values = append(values, row.Extra[c])
	}
	return values
}
