package testutil

import (
	"bytes"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

// SalesCSV is a small dataset with increasing, stable and text columns
const SalesCSV = `month,sales,price,region
2024-01-01,100,50,north
2024-02-01,200,50.5,south
2024-03-01,300,51,east
`

// CSV joins lines into CSV file content with a trailing newline
func CSV(lines ...string) []byte {
	return []byte(strings.Join(lines, "\n") + "\n")
}

// XLSX builds a workbook in memory with rows written to the first sheet
// starting at A1. Values keep their Go types so numbers stay numeric.
func XLSX(t *testing.T, rows ...[]interface{}) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("write row %d: %v", i+1, err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}
