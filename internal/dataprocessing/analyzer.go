package dataprocessing

import (
	"fmt"

	apierrors "trendapi/internal/errors"
	"trendapi/pkg/contracts/domain"
)

// Analysis is the combined output of the statistics, trend and summary steps
type Analysis struct {
	Summary    string
	Statistics domain.Statistics
	Trends     []domain.TrendRecord
}

// Analyze runs statistics, trend detection and summary generation over a
// table. It fails only when a numeric result cannot be represented.
func Analyze(t *Table) (*Analysis, error) {
	stats := CalculateStatistics(t)
	if column, ok := finiteStatistics(stats); !ok {
		return nil, apierrors.NewProcessingError(
			fmt.Sprintf("statistics for column %q are out of range", column), nil)
	}

	trends := DetectTrends(t)
	for _, tr := range trends {
		if !isFinite(tr.ChangePercent) {
			return nil, apierrors.NewProcessingError(
				fmt.Sprintf("change for column %q is out of range", tr.Column), nil)
		}
	}

	return &Analysis{
		Summary:    GenerateSummary(t, trends),
		Statistics: stats,
		Trends:     trends,
	}, nil
}
