package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	apierrors "laborpulse/internal/errors"
)

// ErrRateColumnNotFound is returned when no header matches the unemployment
// rate column, neither exactly nor by substring search.
var ErrRateColumnNotFound = fmt.Errorf("unemployment rate column not found")

// Load reads a delimited text file and produces the cleaned observation
// table. Cleaning follows the source file's known quirks: fields may carry
// stray whitespace, the Region header appears twice, and the file contains
// fully blank lines.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apierrors.NewStorageError("failed to open dataset", err).WithContext("path", path)
	}
	defer f.Close()

	table, err := Parse(f)
	if err != nil {
		return nil, apierrors.NewParsingError("failed to clean dataset", err).WithContext("path", path)
	}

	slog.Info("dataset loaded",
		slog.String("path", path),
		slog.Int("rows", len(table.Rows)),
		slog.Int("columns", len(table.Columns)))

	return table, nil
}

// Parse reads CSV data from r and applies the cleaning rules. It is split
// from Load so tests can feed it in-memory data.
func Parse(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("csv contains no header row")
	}

	header, keep := cleanHeader(records[0])

	rateIdx, err := locateRateColumn(header)
	if err != nil {
		return nil, err
	}
	header[rateIdx] = RateColumn

	regionIdx := indexOf(header, RegionColumn)
	if regionIdx < 0 {
		return nil, fmt.Errorf("required column %q not found", RegionColumn)
	}
	dateIdx := indexOf(header, DateColumn)
	if dateIdx < 0 {
		return nil, fmt.Errorf("required column %q not found", DateColumn)
	}

	table := &Table{Columns: header}
	dropped := 0

	for _, record := range records[1:] {
		cells := projectRow(record, keep, len(header))

		region := cellValue(cells[regionIdx])
		date, dateOK := parseDate(cellValue(cells[dateIdx]))

		// Rows without a region or a parsable date carry nothing usable;
		// this also removes the fully blank lines in the source file.
		if region == "" || !dateOK {
			dropped++
			continue
		}

		obs := Observation{
			Region: region,
			Date:   date,
			Rate:   parseRate(cellValue(cells[rateIdx])),
		}

		for i, name := range header {
			if i == regionIdx || i == dateIdx || i == rateIdx {
				continue
			}
			if v := cellValue(cells[i]); v != "" {
				if obs.Extra == nil {
					obs.Extra = make(map[string]string)
				}
				obs.Extra[name] = v
			}
		}

		table.Rows = append(table.Rows, obs)
	}

	if dropped > 0 {
		slog.Debug("dropped incomplete rows", slog.Int("count", dropped))
	}

	return table, nil
}

// cleanHeader trims header cells and drops duplicated column names, keeping
// the first occurrence. It returns the cleaned header and, per original
// column position, whether that position survives.
func cleanHeader(raw []string) ([]string, []bool) {
	header := make([]string, 0, len(raw))
	keep := make([]bool, len(raw))
	seen := make(map[string]bool, len(raw))

	for i, name := range raw {
		name = strings.TrimSpace(name)
		if seen[name] {
			continue
		}
		seen[name] = true
		keep[i] = true
		header = append(header, name)
	}

	return header, keep
}

// locateRateColumn finds the unemployment rate column: the canonical header
// if present, otherwise the first header containing "Unemployment Rate".
func locateRateColumn(header []string) (int, error) {
	if i := indexOf(header, RateColumn); i >= 0 {
		return i, nil
	}
	for i, name := range header {
		if strings.Contains(name, "Unemployment Rate") {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: no header contains %q", ErrRateColumnNotFound, "Unemployment Rate")
}

// projectRow maps a raw record onto the cleaned header, skipping cells under
// dropped duplicate columns and padding short records.
func projectRow(record []string, keep []bool, width int) []string {
	cells := make([]string, 0, width)
	for i, cell := range record {
		if i < len(keep) && !keep[i] {
			continue
		}
		cells = append(cells, cell)
	}
	for len(cells) < width {
		cells = append(cells, "")
	}
	return cells[:width]
}

// cellValue trims a cell; blank and whitespace-only cells become the empty
// string, which the callers treat as null.
func cellValue(cell string) string {
	return strings.TrimSpace(cell)
}

func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func parseRate(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

func indexOf(header []string, name string) int {
	for i, h := range header {
		if h == name {
			return i
		}
	}
	return -1
}
