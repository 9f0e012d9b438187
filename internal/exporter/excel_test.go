package exporter

import (
	"bytes"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"laborpulse/internal/dataset"
)

func exportTable() *dataset.Table {
	day := func(d int) time.Time {
		return time.Date(2020, time.January, d, 0, 0, 0, 0, time.UTC)
	}
	return &dataset.Table{
		Columns: []string{dataset.RegionColumn, dataset.DateColumn, "Frequency", dataset.RateColumn},
		Rows: []dataset.Observation{
			{Region: "Goa", Date: day(1), Rate: dataset.Float64(4.5), Extra: map[string]string{"Frequency": "M"}},
			{Region: "Bihar", Date: day(1), Rate: dataset.Float64(12.25), Extra: map[string]string{"Frequency": "M"}},
			{Region: "Bihar", Date: day(2), Rate: nil},
		},
	}
}

func TestWorkbook_BothSheets(t *testing.T) {
	f, err := Workbook(exportTable())
	require.NoError(t, err)
	defer f.Close()

	sheets := f.GetSheetList()
	assert.Contains(t, sheets, "Observations")
	assert.Contains(t, sheets, "Region Averages")

	// Header row of the observations sheet.
	header, err := f.GetCellValue("Observations", "A1")
	require.NoError(t, err)
	assert.Equal(t, dataset.RegionColumn, header)

	// Null rate exports as an empty cell.
	rate, err := f.GetCellValue("Observations", "C4")
	require.NoError(t, err)
	assert.Empty(t, rate)

	// Averages are ranked descending; Bihar's single valid rate leads.
	top, err := f.GetCellValue("Region Averages", "B2")
	require.NoError(t, err)
	assert.Equal(t, "Bihar", top)
	mean, err := f.GetCellValue("Region Averages", "C2")
	require.NoError(t, err)
	assert.Equal(t, "12.25", mean)
}

func TestWorkbook_WideTable(t *testing.T) {
	// 3 canonical columns plus 24 passthrough ones push the header row to
	// column AA; widths must follow the full column name, not its first letter.
	columns := []string{dataset.RegionColumn, dataset.DateColumn, dataset.RateColumn}
	extra := map[string]string{}
	for i := 0; i < 24; i++ {
		name := fmt.Sprintf("Indicator %02d", i)
		columns = append(columns, name)
		extra[name] = fmt.Sprintf("%d", i)
	}
	table := &dataset.Table{
		Columns: columns,
		Rows: []dataset.Observation{
			{Region: "Goa", Date: time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC), Rate: dataset.Float64(4.5), Extra: extra},
		},
	}

	f, err := Workbook(table)
	require.NoError(t, err)
	defer f.Close()

	header, err := f.GetCellValue("Observations", "AA1")
	require.NoError(t, err)
	assert.Equal(t, "Indicator 23", header)

	width, err := f.GetColWidth("Observations", "AA")
	require.NoError(t, err)
	assert.Equal(t, 18.0, width)
}

func TestSaveWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "unemployment.xlsx")
	require.NoError(t, SaveWorkbook(path, exportTable()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Contains(t, f.GetSheetList(), "Observations")
}

func TestSafeFileName(t *testing.T) {
	assert.Equal(t, "Andhra_Pradesh", SafeFileName("Andhra Pradesh"))
	assert.Equal(t, "Jammu___Kashmir", SafeFileName("Jammu & Kashmir"))
	assert.Equal(t, "Goa", SafeFileName("Goa"))
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, exportTable()))

	out := buf.Bytes()
	assert.True(t, bytes.HasPrefix(out, []byte{0xEF, 0xBB, 0xBF}), "CSV must carry a UTF-8 BOM")

	body := string(out[3:])
	assert.Contains(t, body, "Region,Date,Estimated Unemployment Rate (%),Frequency")
	assert.Contains(t, body, "Goa,01-01-2020,4.5,M")
	assert.Contains(t, body, "Bihar,02-01-2020,,")
}
