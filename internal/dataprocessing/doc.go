// Package dataprocessing turns uploaded CSV and Excel files into typed tables
// and analyzes them.
//
// # Components
//
//  1. Parser: ParseUpload picks CSV or Excel from the file extension and
//     builds a Table with one inferred type per column
//  2. Statistics: count, mean, median, sample std, min and max per numeric
//     column, plus the first-to-last growth rate
//  3. Trends: compares the first and last value of every numeric column
//  4. Summarizer: a short sentence naming the rows, columns and trends
//
// # Usage
//
//	table, err := dataprocessing.ParseUpload("sales.csv", data)
//	if err != nil {
//	    return err
//	}
//	analysis, err := dataprocessing.Analyze(table)
//
// # Type Inference
//
// Empty cells and the usual missing markers (NA, null, NaN and friends) are
// treated as missing. A column is numeric when every present value parses as
// an integer or a float; missing values are skipped by every statistic.
//
// # Errors
//
// Unknown extensions return an unsupported file type error. Unreadable content and
// non-finite statistics return a processing error. Both come from
// internal/errors and map onto HTTP problem responses.
package dataprocessing
