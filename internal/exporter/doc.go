// Package exporter writes analysis results as CSV or Excel.
//
// CSV output carries a UTF-8 BOM so spreadsheet applications detect the
// encoding. Excel output holds two sheets: Summary with the dataset id,
// summary sentence and timestamp, and Statistics with one row per numeric
// column.
//
// Example usage:
//
//	format, err := exporter.ParseFormat("csv")
//	...
//	err = exporter.ExportCSV(os.Stdout, result)
package exporter
