package charts

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"laborpulse/internal/dataset"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func chartTable() *dataset.Table {
	day := func(d int) time.Time {
		return time.Date(2020, time.February, d, 0, 0, 0, 0, time.UTC)
	}
	return &dataset.Table{
		Columns: []string{dataset.RegionColumn, dataset.DateColumn, dataset.RateColumn},
		Rows: []dataset.Observation{
			{Region: "Goa", Date: day(1), Rate: dataset.Float64(4.0)},
			{Region: "Goa", Date: day(15), Rate: dataset.Float64(6.5)},
			{Region: "Goa", Date: time.Date(2020, time.April, 1, 0, 0, 0, 0, time.UTC), Rate: dataset.Float64(18.2)},
			{Region: "Bihar", Date: day(1), Rate: dataset.Float64(11.0)},
			{Region: "Bihar", Date: day(15), Rate: nil},
			{Region: "Sikkim", Date: day(1), Rate: nil},
		},
	}
}

func TestRenderer_RegionSeries(t *testing.T) {
	r := NewRenderer()

	png, err := r.RegionSeries(chartTable(), "Goa")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, pngMagic), "output must be a PNG")
}

func TestRenderer_RegionSeriesNoData(t *testing.T) {
	r := NewRenderer()

	// Unknown region and all-null region both yield ErrNoData, never a panic.
	_, err := r.RegionSeries(chartTable(), "Kerala")
	assert.ErrorIs(t, err, ErrNoData)

	_, err = r.RegionSeries(chartTable(), "Sikkim")
	assert.ErrorIs(t, err, ErrNoData)
}

func TestRenderer_NationalComparison(t *testing.T) {
	r := NewRenderer()

	png, err := r.NationalComparison(chartTable())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, pngMagic))

	_, err = r.NationalComparison(&dataset.Table{})
	assert.ErrorIs(t, err, ErrNoData)
}

func TestRenderer_AveragesBar(t *testing.T) {
	r := NewRenderer()

	png, err := r.AveragesBar(chartTable().RegionAverages())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, pngMagic))

	_, err = r.AveragesBar(nil)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestLockdownDate(t *testing.T) {
	assert.Equal(t, time.Date(2020, time.March, 1, 0, 0, 0, 0, time.UTC), LockdownDate)
}
