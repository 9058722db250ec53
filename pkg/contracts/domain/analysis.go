package domain

import (
	"bytes"
	"encoding/json"
	"time"
)

// TrendDirection labels the first-vs-last movement of a numeric column
type TrendDirection string

const (
	TrendIncreasing TrendDirection = "increasing"
	TrendDecreasing TrendDirection = "decreasing"
	TrendStable     TrendDirection = "stable"
)

// Indicator returns the display symbol for a direction
func (d TrendDirection) Indicator() string {
	switch d {
	case TrendIncreasing:
		return "📈"
	case TrendDecreasing:
		return "📉"
	default:
		return "➡️"
	}
}

// AnalysisSourceBasic identifies results produced by the built-in analyzer
const AnalysisSourceBasic = "basic_analysis"

// AnalyzeOptions carries the optional parameters of an analyze request.
// Query is accepted for forward compatibility and does not change the result.
type AnalyzeOptions struct {
	Query string `json:"query,omitempty" validate:"max=1000"`
}

// ColumnStatistics holds descriptive statistics for one numeric column
type ColumnStatistics struct {
	ColumnName string   `json:"column_name"`
	Mean       float64  `json:"mean"`
	Median     float64  `json:"median"`
	Std        float64  `json:"std"`
	Min        float64  `json:"min"`
	Max        float64  `json:"max"`
	Count      int      `json:"count"`
	GrowthRate *float64 `json:"growth_rate,omitempty"`
}

// Statistics is an ordered set of column statistics. It marshals to a JSON
// object keyed by column name, keeping the column order of the dataset.
type Statistics []ColumnStatistics

// Get returns the statistics for the named column
func (s Statistics) Get(column string) (ColumnStatistics, bool) {
	for _, cs := range s {
		if cs.ColumnName == column {
			return cs, true
		}
	}
	return ColumnStatistics{}, false
}

// MarshalJSON implements json.Marshaler
func (s Statistics) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, cs := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(cs.ColumnName)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(cs)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON implements json.Unmarshaler. Column order is taken from the
// order of keys in the document.
func (s *Statistics) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil {
		return err
	}
	var out Statistics
	for dec.More() {
		if _, err := dec.Token(); err != nil {
			return err
		}
		var cs ColumnStatistics
		if err := dec.Decode(&cs); err != nil {
			return err
		}
		out = append(out, cs)
	}
	*s = out
	return nil
}

// TrendRecord describes the detected trend of one numeric column
type TrendRecord struct {
	Column          string         `json:"column"`
	Direction       TrendDirection `json:"direction"`
	ChangePercent   float64        `json:"change_percent"`
	Description     string         `json:"description"`
	IndicatorSymbol string         `json:"emoji"`
	Confidence      float64        `json:"confidence"`
}

// AnalysisResult is the response of the analyze endpoint
type AnalysisResult struct {
	DatasetID  string        `json:"dataset_id"`
	Summary    string        `json:"summary"`
	Statistics Statistics    `json:"statistics"`
	Trends     []TrendRecord `json:"trends"`
	AnalyzedAt time.Time     `json:"analyzed_at"`
	Source     string        `json:"source"`
}
