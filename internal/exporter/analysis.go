package exporter

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"trendapi/pkg/contracts/domain"
)

// Format selects the representation of an exported analysis
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat validates a format name, case-insensitively
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatJSON, FormatCSV, FormatXLSX:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported export format %q (want json, csv or xlsx)", s)
	}
}

const (
	statisticsSheet = "Statistics"
	summarySheet    = "Summary"
)

// StatisticsHeaders are the columns of the per-column statistics table
var StatisticsHeaders = []string{
	"column", "count", "mean", "median", "std", "min", "max",
	"growth_rate", "direction", "change_percent",
}

// StatisticsRecords flattens the statistics and trends of result into one
// row per numeric column. Columns without a trend leave the trend cells empty.
func StatisticsRecords(result *domain.AnalysisResult) [][]string {
	trends := trendsByColumn(result.Trends)

	records := make([][]string, 0, len(result.Statistics))
	for _, cs := range result.Statistics {
		row := []string{
			cs.ColumnName,
			formatInt(cs.Count),
			formatFloat(cs.Mean),
			formatFloat(cs.Median),
			formatFloat(cs.Std),
			formatFloat(cs.Min),
			formatFloat(cs.Max),
			formatOptionalFloat(cs.GrowthRate),
			"",
			"",
		}
		if tr, ok := trends[cs.ColumnName]; ok {
			row[8] = string(tr.Direction)
			row[9] = formatFloat(tr.ChangePercent)
		}
		records = append(records, row)
	}
	return records
}

// ExportCSV writes the statistics table of result as CSV
func ExportCSV(w io.Writer, result *domain.AnalysisResult) error {
	return WriteCSV(w, WriteOptions{
		Headers:   StatisticsHeaders,
		Records:   StatisticsRecords(result),
		BOMPrefix: true,
	})
}

// ExportXLSX writes a workbook with a Summary sheet and a Statistics sheet.
// Numeric cells keep their numeric type.
func ExportXLSX(w io.Writer, result *domain.AnalysisResult) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), summarySheet); err != nil {
		return fmt.Errorf("failed to name summary sheet: %w", err)
	}
	summaryRows := [][]interface{}{
		{"dataset_id", result.DatasetID},
		{"summary", strings.TrimSpace(result.Summary)},
		{"analyzed_at", result.AnalyzedAt.Format(time.RFC3339)},
		{"source", result.Source},
	}
	if err := writeRows(f, summarySheet, summaryRows); err != nil {
		return err
	}

	if _, err := f.NewSheet(statisticsSheet); err != nil {
		return fmt.Errorf("failed to create statistics sheet: %w", err)
	}
	header := make([]interface{}, len(StatisticsHeaders))
	for i, h := range StatisticsHeaders {
		header[i] = h
	}
	rows := [][]interface{}{header}

	trends := trendsByColumn(result.Trends)
	for _, cs := range result.Statistics {
		row := []interface{}{cs.ColumnName, cs.Count, cs.Mean, cs.Median, cs.Std, cs.Min, cs.Max, nil, nil, nil}
		if cs.GrowthRate != nil {
			row[7] = *cs.GrowthRate
		}
		if tr, ok := trends[cs.ColumnName]; ok {
			row[8] = string(tr.Direction)
			row[9] = tr.ChangePercent
		}
		rows = append(rows, row)
	}
	if err := writeRows(f, statisticsSheet, rows); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func trendsByColumn(trends []domain.TrendRecord) map[string]domain.TrendRecord {
	m := make(map[string]domain.TrendRecord, len(trends))
	for _, tr := range trends {
		m[tr.Column] = tr
	}
	return m
}
