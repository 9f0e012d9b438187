package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"laborpulse/internal/dataset"
)

// WriteCSV writes the cleaned observation table as CSV. A UTF-8 BOM is
// prepended so Excel recognizes the encoding when the download is opened
// directly.
func WriteCSV(w io.Writer, table *dataset.Table) error {
	if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return fmt.Errorf("failed to write BOM: %w", err)
	}

	writer := csv.NewWriter(w)

	if err := writer.Write(observationHeaders(table)); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	for i, row := range table.Rows {
		record := []string{row.Region, row.Date.Format(dataset.DateLayout)}
		if row.Rate != nil {
			record = append(record, strconv.FormatFloat(*row.Rate, 'f', -1, 64))
		} else {
			record = append(record, "")
		}
		for _, c := range table.Columns {
			if c == dataset.RegionColumn || c == dataset.DateColumn || c == dataset.RateColumn {
				continue
			}
			record = append(record, row.Extra[c])
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}
