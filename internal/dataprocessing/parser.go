package dataprocessing

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	apierrors "trendapi/internal/errors"
)

// FileFormat is the tabular format of an upload, chosen by file extension
type FileFormat string

const (
	FormatCSV   FileFormat = "csv"
	FormatExcel FileFormat = "excel"
)

// DetectFormat maps a filename to its format. Extensions are matched
// case-insensitively; anything other than .csv, .xlsx or .xls is rejected.
func DetectFormat(filename string) (FileFormat, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx", ".xls":
		return FormatExcel, nil
	default:
		return "", apierrors.NewUnsupportedFileTypeError(filename)
	}
}

// ParseUpload decodes the bytes of an uploaded file into a typed table.
// The first row is the header. Any parse failure is a processing error and
// no partial table is returned.
func ParseUpload(filename string, data []byte) (*Table, error) {
	format, err := DetectFormat(filename)
	if err != nil {
		return nil, err
	}

	switch format {
	case FormatCSV:
		return ParseCSV(bytes.NewReader(data))
	default:
		return ParseExcel(bytes.NewReader(data))
	}
}

// ParseCSV reads comma separated values with a header row
func ParseCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, apierrors.NewProcessingError("failed to parse CSV", err)
	}
	if len(records) == 0 {
		return nil, apierrors.NewProcessingError("failed to parse CSV", errors.New("no columns to parse from file"))
	}

	header := records[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	rows := records[1:]
	for i, row := range rows {
		if len(row) > len(header) {
			return nil, apierrors.NewProcessingError("failed to parse CSV",
				fmt.Errorf("expected %d fields in data row %d, saw %d", len(header), i+1, len(row)))
		}
	}

	return buildTable(header, rows, nil), nil
}

// ParseExcel reads the first worksheet of a workbook with a header row.
// Rows wider than the header get "Unnamed" columns.
func ParseExcel(r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, apierrors.NewProcessingError("failed to open workbook", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apierrors.NewProcessingError("failed to read workbook", errors.New("workbook has no sheets"))
	}
	sheet := sheets[0]

	raw, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, apierrors.NewProcessingError(fmt.Sprintf("failed to read sheet %q", sheet), err)
	}
	formatted, err := f.GetRows(sheet)
	if err != nil {
		return nil, apierrors.NewProcessingError(fmt.Sprintf("failed to read sheet %q", sheet), err)
	}
	if len(raw) == 0 {
		return nil, apierrors.NewProcessingError("failed to read workbook", errors.New("no columns to parse from file"))
	}

	width := 0
	for _, row := range raw {
		if len(row) > width {
			width = len(row)
		}
	}
	header := make([]string, width)
	copy(header, raw[0])

	var display [][]string
	if len(formatted) > 1 {
		display = formatted[1:]
	}
	return buildTable(header, raw[1:], display), nil
}
