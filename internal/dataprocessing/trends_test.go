package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trendapi/pkg/contracts/domain"
)

func TestDetectTrends(t *testing.T) {
	tests := []struct {
		name            string
		lines           []string
		wantDirection   domain.TrendDirection
		wantChange      float64
		wantDescription string
		wantSymbol      string
	}{
		{
			name:            "doubling",
			lines:           []string{"sales", "100", "200"},
			wantDirection:   domain.TrendIncreasing,
			wantChange:      100.0,
			wantDescription: "sales is increasing by 100.0%",
			wantSymbol:      "📈",
		},
		{
			name:            "first to last over three rows",
			lines:           []string{"sales", "100", "200", "300"},
			wantDirection:   domain.TrendIncreasing,
			wantChange:      200.0,
			wantDescription: "sales is increasing by 200.0%",
			wantSymbol:      "📈",
		},
		{
			name:            "small change is stable",
			lines:           []string{"price", "50", "51"},
			wantDirection:   domain.TrendStable,
			wantChange:      2.0,
			wantDescription: "price is stable by 2.0%",
			wantSymbol:      "➡️",
		},
		{
			name:            "decline",
			lines:           []string{"stock", "90", "60"},
			wantDirection:   domain.TrendDecreasing,
			wantChange:      -33.33,
			wantDescription: "stock is decreasing by 33.33%",
			wantSymbol:      "📉",
		},
		{
			name:            "exactly five percent is a trend",
			lines:           []string{"v", "100", "105"},
			wantDirection:   domain.TrendIncreasing,
			wantChange:      5.0,
			wantDescription: "v is increasing by 5.0%",
			wantSymbol:      "📈",
		},
		{
			name:            "negative just inside threshold",
			lines:           []string{"v", "100", "95.01"},
			wantDirection:   domain.TrendStable,
			wantChange:      -4.99,
			wantDescription: "v is stable by 4.99%",
			wantSymbol:      "➡️",
		},
		{
			name:            "zero first value reports no change",
			lines:           []string{"v", "0", "50"},
			wantDirection:   domain.TrendStable,
			wantChange:      0,
			wantDescription: "v is stable by 0%",
			wantSymbol:      "➡️",
		},
		{
			name:            "missing values are skipped",
			lines:           []string{"id,v", "1,", "2,10", "3,NA", "4,20", "5,"},
			wantDirection:   domain.TrendIncreasing,
			wantChange:      100.0,
			wantDescription: "v is increasing by 100.0%",
			wantSymbol:      "📈",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := mustParseCSV(t, tt.lines...)

			trends := DetectTrends(table)
			var got *domain.TrendRecord
			for i := range trends {
				if trends[i].Column == table.ColumnNames()[table.ColumnCount()-1] {
					got = &trends[i]
				}
			}
			require.NotNil(t, got)

			assert.Equal(t, tt.wantDirection, got.Direction)
			assert.InDelta(t, tt.wantChange, got.ChangePercent, 1e-9)
			assert.Equal(t, tt.wantDescription, got.Description)
			assert.Equal(t, tt.wantSymbol, got.IndicatorSymbol)
			assert.Equal(t, 0.8, got.Confidence)
		})
	}
}

func TestDetectTrends_SkipsShortAndTextColumns(t *testing.T) {
	table := mustParseCSV(t,
		"one,name,two",
		"5,a,1",
		",b,2",
	)

	trends := DetectTrends(table)

	require.Len(t, trends, 1)
	assert.Equal(t, "two", trends[0].Column)
}

func TestDetectTrends_EmptyTable(t *testing.T) {
	table := mustParseCSV(t, "a,b")

	trends := DetectTrends(table)

	assert.NotNil(t, trends)
	assert.Empty(t, trends)
}

func TestDetectTrends_DirectionMatchesThreshold(t *testing.T) {
	table := mustParseCSV(t,
		"a,b,c,d,e",
		"100,100,100,100,100",
		"104.99,95.5,150,10,100",
	)

	for _, tr := range DetectTrends(table) {
		switch {
		case tr.ChangePercent > -StableThreshold && tr.ChangePercent < StableThreshold:
			assert.Equal(t, domain.TrendStable, tr.Direction, tr.Column)
		case tr.ChangePercent > 0:
			assert.Equal(t, domain.TrendIncreasing, tr.Direction, tr.Column)
		default:
			assert.Equal(t, domain.TrendDecreasing, tr.Direction, tr.Column)
		}
	}
}

func TestFormatPercent(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{100, "100.0"},
		{2, "2.0"},
		{33.33, "33.33"},
		{0.5, "0.5"},
		{0, "0.0"},
		{1e20, "1e+20"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, formatPercent(tt.in))
		})
	}
}
