package dataprocessing

import (
	"math"
	"sort"

	"trendapi/pkg/contracts/domain"
)

// CalculateStatistics computes descriptive statistics for every numeric
// column with at least one value, in column order. Missing cells are ignored.
func CalculateStatistics(t *Table) domain.Statistics {
	stats := domain.Statistics{}
	for _, col := range t.NumericColumns() {
		values := col.Numbers()
		if len(values) == 0 {
			continue
		}
		stats = append(stats, columnStatistics(col.Name, values))
	}
	return stats
}

func columnStatistics(name string, values []float64) domain.ColumnStatistics {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	cs := domain.ColumnStatistics{
		ColumnName: name,
		Mean:       mean(values),
		Median:     quantile(sorted, 0.5),
		Std:        sampleStd(values),
		Min:        sorted[0],
		Max:        sorted[len(sorted)-1],
		Count:      len(values),
	}

	first, last := values[0], values[len(values)-1]
	if len(values) > 1 && first != 0 {
		growth := percentChange(first, last)
		cs.GrowthRate = &growth
	}
	return cs
}

func mean(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// sampleStd is the n-1 standard deviation; a single value has zero spread.
func sampleStd(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	ss := 0.0
	for _, v := range values {
		d := v - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(values)-1))
}

func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}

func percentChange(first, last float64) float64 {
	return (last - first) / first * 100
}

func isFinite(v float64) bool {
	return !math.IsInf(v, 0) && !math.IsNaN(v)
}

// finiteStatistics reports the first column whose statistics overflowed
func finiteStatistics(stats domain.Statistics) (string, bool) {
	for _, cs := range stats {
		if !isFinite(cs.Mean) || !isFinite(cs.Std) || !isFinite(cs.Median) {
			return cs.ColumnName, false
		}
		if cs.GrowthRate != nil && !isFinite(*cs.GrowthRate) {
			return cs.ColumnName, false
		}
	}
	return "", true
}
