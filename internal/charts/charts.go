package charts

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"math"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"laborpulse/internal/dataset"
)

// ErrNoData is returned when a chart has no plottable observations, for
// example a region whose rows were all dropped during cleaning.
var ErrNoData = errors.New("no observations to plot")

// LockdownDate is the fixed vertical-marker date drawn on both time-series
// charts. It denotes the national lockdown start and has no data dependency.
var LockdownDate = time.Date(2020, time.March, 1, 0, 0, 0, 0, time.UTC)

const lockdownLabel = "Lockdown start"

var (
	seriesColor   = color.RGBA{R: 70, G: 130, B: 180, A: 255}
	lockdownColor = color.RGBA{R: 220, G: 20, B: 60, A: 255}
)

// Renderer draws dashboard charts as PNG images.
type Renderer struct {
	Width  vg.Length
	Height vg.Length
}

// NewRenderer creates a renderer with the default dashboard canvas size.
func NewRenderer() *Renderer {
	return &Renderer{
		Width:  10 * vg.Inch,
		Height: 5 * vg.Inch,
	}
}

// RegionSeries renders the rate-over-time line chart for a single region,
// with point markers and the lockdown marker overlay.
func (r *Renderer) RegionSeries(table *dataset.Table, region string) ([]byte, error) {
	points := timeSeries(table.FilterRegion(region))
	if len(points) == 0 {
		return nil, fmt.Errorf("region %q: %w", region, ErrNoData)
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Unemployment Trend – %s", region)
	p.X.Label.Text = "Date"
	p.Y.Label.Text = "Unemployment Rate (%)"
	p.X.Tick.Marker = plot.TimeTicks{Format: "Jan 2006"}

	line, scatter, err := plotter.NewLinePoints(points)
	if err != nil {
		return nil, fmt.Errorf("failed to build line series: %w", err)
	}
	line.Color = seriesColor
	line.Width = vg.Points(2)
	scatter.GlyphStyle.Color = seriesColor
	scatter.GlyphStyle.Radius = vg.Points(3)
	scatter.GlyphStyle.Shape = draw.CircleGlyph{}

	p.Add(line, scatter, plotter.NewGrid())

	if err := addLockdownMarker(p, points); err != nil {
		return nil, err
	}

	return r.encode(p)
}

// NationalComparison renders one line per region over the full date range,
// with the lockdown marker overlay.
func (r *Renderer) NationalComparison(table *dataset.Table) ([]byte, error) {
	regions := table.Regions()
	if len(regions) == 0 {
		return nil, ErrNoData
	}

	p := plot.New()
	p.Title.Text = "National Unemployment Trend (All Regions)"
	p.X.Label.Text = "Date"
	p.Y.Label.Text = "Unemployment Rate (%)"
	p.X.Tick.Marker = plot.TimeTicks{Format: "Jan 2006"}
	p.Legend.Top = true

	var all plotter.XYs
	for i, region := range regions {
		points := timeSeries(table.FilterRegion(region))
		if len(points) == 0 {
			continue
		}
		all = append(all, points...)

		line, err := plotter.NewLine(points)
		if err != nil {
			return nil, fmt.Errorf("failed to build line for %s: %w", region, err)
		}
		line.Color = plotutil.Color(i)
		p.Add(line)
		p.Legend.Add(region, line)
	}

	if len(all) == 0 {
		return nil, ErrNoData
	}

	p.Add(plotter.NewGrid())

	if err := addLockdownMarker(p, all); err != nil {
		return nil, err
	}

	return r.encode(p)
}

// AveragesBar renders the region-average bar chart: one bar per region in
// the order given (callers pass means sorted descending), two-decimal value
// labels, and bar color scaled to the mean.
func (r *Renderer) AveragesBar(averages []dataset.RegionAverage) ([]byte, error) {
	if len(averages) == 0 {
		return nil, ErrNoData
	}

	p := plot.New()
	p.Title.Text = "Average Unemployment Rate per Region"
	p.X.Label.Text = "Region"
	p.Y.Label.Text = "Mean Unemployment Rate (%)"

	maxMean := averages[0].MeanRate
	for _, a := range averages {
		if a.MeanRate > maxMean {
			maxMean = a.MeanRate
		}
	}

	labels := make([]string, len(averages))
	for i, a := range averages {
		labels[i] = a.Region

		// One bar chart per region so each bar carries its own color.
		values := make(plotter.Values, len(averages))
		values[i] = a.MeanRate
		bars, err := plotter.NewBarChart(values, vg.Points(18))
		if err != nil {
			return nil, fmt.Errorf("failed to build bar for %s: %w", a.Region, err)
		}
		bars.Color = blueScale(a.MeanRate, maxMean)
		bars.LineStyle.Width = vg.Length(0)
		p.Add(bars)

		label, err := plotter.NewLabels(plotter.XYLabels{
			XYs:    []plotter.XY{{X: float64(i), Y: a.MeanRate + maxMean*0.02}},
			Labels: []string{fmt.Sprintf("%.2f", a.MeanRate)},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to build bar label: %w", err)
		}
		p.Add(label)
	}

	p.NominalX(labels...)
	p.X.Tick.Label.Rotation = math.Pi / 3
	p.X.Tick.Label.YAlign = draw.YCenter
	p.X.Tick.Label.XAlign = draw.XRight
	p.Y.Min = 0
	p.Y.Max = maxMean * 1.15

	return r.encode(p)
}

// timeSeries converts observations to plot points, skipping null rates.
func timeSeries(rows []dataset.Observation) plotter.XYs {
	var points plotter.XYs
	for _, row := range rows {
		if row.Rate == nil {
			continue
		}
		points = append(points, plotter.XY{
			X: float64(row.Date.Unix()),
			Y: *row.Rate,
		})
	}
	return points
}

// addLockdownMarker draws the dashed vertical line at the lockdown date,
// spanning the data's vertical extent, with its label anchored at the top.
func addLockdownMarker(p *plot.Plot, points plotter.XYs) error {
	yMin, yMax := points[0].Y, points[0].Y
	for _, pt := range points[1:] {
		yMin = math.Min(yMin, pt.Y)
		yMax = math.Max(yMax, pt.Y)
	}
	if yMin == yMax {
		yMax = yMin + 1
	}

	x := float64(LockdownDate.Unix())
	line, err := plotter.NewLine(plotter.XYs{{X: x, Y: yMin}, {X: x, Y: yMax}})
	if err != nil {
		return fmt.Errorf("failed to build lockdown marker: %w", err)
	}
	line.Color = lockdownColor
	line.Width = vg.Points(2)
	line.Dashes = []vg.Length{vg.Points(5), vg.Points(5)}
	p.Add(line)

	label, err := plotter.NewLabels(plotter.XYLabels{
		XYs:    []plotter.XY{{X: x, Y: yMax}},
		Labels: []string{lockdownLabel},
	})
	if err != nil {
		return fmt.Errorf("failed to build lockdown label: %w", err)
	}
	label.TextStyle[0].Color = lockdownColor
	p.Add(label)

	return nil
}

// blueScale maps a value in [0, max] to a blue ramp, darker for larger
// values.
func blueScale(value, max float64) color.Color {
	if max <= 0 {
		return color.RGBA{R: 222, G: 235, B: 247, A: 255}
	}
	t := value / max
	lerp := func(a, b float64) uint8 {
		return uint8(a + (b-a)*t)
	}
	return color.RGBA{
		R: lerp(222, 8),
		G: lerp(235, 48),
		B: lerp(247, 107),
		A: 255,
	}
}

// encode renders the plot to PNG bytes.
func (r *Renderer) encode(p *plot.Plot) ([]byte, error) {
	wt, err := p.WriterTo(r.Width, r.Height, "png")
	if err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode chart: %w", err)
	}
	return buf.Bytes(), nil
}
