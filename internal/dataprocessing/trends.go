package dataprocessing

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"trendapi/pkg/contracts/domain"
)

const (
	// StableThreshold is the absolute percent change below which a column is stable
	StableThreshold = 5.0
	// TrendConfidence is the fixed confidence reported for every trend
	TrendConfidence = 0.8
)

// DetectTrends labels each numeric column with at least two values by
// comparing its first and last non-missing values.
func DetectTrends(t *Table) []domain.TrendRecord {
	trends := []domain.TrendRecord{}
	for _, col := range t.NumericColumns() {
		values := col.Numbers()
		if len(values) < 2 {
			continue
		}
		trends = append(trends, trendFor(col.Name, values[0], values[len(values)-1]))
	}
	return trends
}

func trendFor(column string, first, last float64) domain.TrendRecord {
	change := 0.0
	if first != 0 {
		change = percentChange(first, last)
	}

	direction := domain.TrendStable
	switch {
	case math.Abs(change) < StableThreshold:
	case change > 0:
		direction = domain.TrendIncreasing
	default:
		direction = domain.TrendDecreasing
	}

	rounded := roundTo(change, 2)
	magnitude := formatPercent(math.Abs(rounded))
	if first == 0 {
		magnitude = "0"
	}

	return domain.TrendRecord{
		Column:          column,
		Direction:       direction,
		ChangePercent:   rounded,
		Description:     fmt.Sprintf("%s is %s by %s%%", column, direction, magnitude),
		IndicatorSymbol: direction.Indicator(),
		Confidence:      TrendConfidence,
	}
}

func roundTo(v float64, places int) float64 {
	if !isFinite(v) {
		return v
	}
	pow := math.Pow(10, float64(places))
	r := math.Round(v*pow) / pow
	if r == 0 {
		return 0
	}
	return r
}

// formatPercent renders a float the way it reads as a literal: shortest
// round-trip digits with at least one decimal place ("100.0", "33.33").
func formatPercent(v float64) string {
	abs := math.Abs(v)
	if abs != 0 && (abs >= 1e16 || abs < 1e-4) {
		return strconv.FormatFloat(v, 'e', -1, 64)
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".NI") {
		s += ".0"
	}
	return s
}
