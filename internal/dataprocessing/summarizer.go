package dataprocessing

import (
	"fmt"
	"strings"

	"trendapi/pkg/contracts/domain"
)

// GenerateSummary renders a deterministic description of the table shape and
// of its increasing and decreasing columns. Stable columns are not mentioned.
func GenerateSummary(t *Table, trends []domain.TrendRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Dataset contains %d rows and %d columns (%d numeric). ",
		t.RowCount(), t.ColumnCount(), len(t.NumericColumns()))

	var increasing, decreasing []string
	for _, tr := range trends {
		switch tr.Direction {
		case domain.TrendIncreasing:
			increasing = append(increasing, tr.Column)
		case domain.TrendDecreasing:
			decreasing = append(decreasing, tr.Column)
		}
	}

	if len(increasing) > 0 {
		fmt.Fprintf(&b, "Increasing trends detected in: %s. ", strings.Join(increasing, ", "))
	}
	if len(decreasing) > 0 {
		fmt.Fprintf(&b, "Decreasing trends detected in: %s. ", strings.Join(decreasing, ", "))
	}
	return b.String()
}
