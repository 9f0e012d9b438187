package dataset

import (
	"sort"
	"time"
)

// MeanRate returns the arithmetic mean of the rate column. Rows with a nil
// rate are ignored. The second return is false when no row has a rate.
func (t *Table) MeanRate() (float64, bool) {
	sum := 0.0
	count := 0
	for _, row := range t.Rows {
		if row.Rate == nil {
			continue
		}
		sum += *row.Rate
		count++
	}
	if count == 0 {
		return 0, false
	}
	return sum / float64(count), true
}

// MaxRate returns the maximum of the rate column, ignoring nil rates.
func (t *Table) MaxRate() (float64, bool) {
	max := 0.0
	found := false
	for _, row := range t.Rows {
		if row.Rate == nil {
			continue
		}
		if !found || *row.Rate > max {
			max = *row.Rate
			found = true
		}
	}
	return max, found
}

// Regions returns the distinct region names present in the table, sorted
// ascending. This is the option set for the dashboard's region selector.
func (t *Table) Regions() []string {
	seen := make(map[string]bool)
	var regions []string
	for _, row := range t.Rows {
		if !seen[row.Region] {
			seen[row.Region] = true
			regions = append(regions, row.Region)
		}
	}
	sort.Strings(regions)
	return regions
}

// HasRegion reports whether the table contains at least one row for region.
func (t *Table) HasRegion(region string) bool {
	for _, row := range t.Rows {
		if row.Region == region {
			return true
		}
	}
	return false
}

// FilterRegion returns the rows for one region, preserving input order.
func (t *Table) FilterRegion(region string) []Observation {
	var rows []Observation
	for _, row := range t.Rows {
		if row.Region == region {
			rows = append(rows, row)
		}
	}
	return rows
}

// RegionAverages groups rows by region and computes the mean rate per group,
// sorted descending by mean. Rows with a nil rate do not contribute to their
// group's mean; a region whose rows are all nil-rate is omitted. Tie order
// between equal means is not guaranteed.
func (t *Table) RegionAverages() []RegionAverage {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, row := range t.Rows {
		if row.Rate == nil {
			continue
		}
		sums[row.Region] += *row.Rate
		counts[row.Region]++
	}

	averages := make([]RegionAverage, 0, len(sums))
	for region, sum := range sums {
		averages = append(averages, RegionAverage{
			Region:   region,
			MeanRate: sum / float64(counts[region]),
			Count:    counts[region],
		})
	}

	sort.Slice(averages, func(i, j int) bool {
		return averages[i].MeanRate > averages[j].MeanRate
	})

	return averages
}

// DateSpan returns the earliest and latest observation dates. The third
// return is false for an empty table.
func (t *Table) DateSpan() (time.Time, time.Time, bool) {
	if len(t.Rows) == 0 {
		return time.Time{}, time.Time{}, false
	}
	min, max := t.Rows[0].Date, t.Rows[0].Date
	for _, row := range t.Rows[1:] {
		if row.Date.Before(min) {
			min = row.Date
		}
		if row.Date.After(max) {
			max = row.Date
		}
	}
	return min, max, true
}
