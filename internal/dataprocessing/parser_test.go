package dataprocessing

import (
	"bytes"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "trendapi/internal/errors"
	"trendapi/internal/shared/testutil"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     FileFormat
		wantErr  bool
	}{
		{name: "csv", filename: "sales.csv", want: FormatCSV},
		{name: "upper case csv", filename: "SALES.CSV", want: FormatCSV},
		{name: "xlsx", filename: "report.xlsx", want: FormatExcel},
		{name: "legacy xls", filename: "report.xls", want: FormatExcel},
		{name: "text file", filename: "notes.txt", wantErr: true},
		{name: "no extension", filename: "data", wantErr: true},
		{name: "csv in name only", filename: "data.csv.bak", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetectFormat(tt.filename)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apierrors.IsUnsupportedFileType(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseUpload_UnsupportedExtension(t *testing.T) {
	table, err := ParseUpload("notes.txt", []byte("a,b\n1,2\n"))

	assert.Nil(t, table)
	require.Error(t, err)
	assert.True(t, apierrors.IsUnsupportedFileType(err))
}

func TestParseCSV_TypeInference(t *testing.T) {
	table, err := ParseUpload("sales.csv", []byte(testutil.SalesCSV))
	require.NoError(t, err)

	assert.Equal(t, 3, table.RowCount())
	assert.Equal(t, 4, table.ColumnCount())
	assert.Equal(t, []string{"month", "sales", "price", "region"}, table.ColumnNames())
	assert.Equal(t, map[string]string{
		"month":  "datetime64[ns]",
		"sales":  "int64",
		"price":  "float64",
		"region": "object",
	}, table.ColumnTypes())

	numeric := table.NumericColumns()
	require.Len(t, numeric, 2)
	assert.Equal(t, "sales", numeric[0].Name)
	assert.Equal(t, []float64{100, 200, 300}, numeric[0].Numbers())
}

func TestParseCSV_MissingValues(t *testing.T) {
	data := testutil.CSV(
		"id,score,label,flag",
		"1,,a,true",
		"2,NA,,false",
		"3,7.5,c,TRUE",
		"4,n/a,d,False",
	)

	table, err := ParseCSV(bytesReader(data))
	require.NoError(t, err)

	types := table.ColumnTypes()
	assert.Equal(t, "int64", types["id"])
	assert.Equal(t, "float64", types["score"])
	assert.Equal(t, "object", types["label"])
	assert.Equal(t, "bool", types["flag"])

	score, ok := table.Column("score")
	require.True(t, ok)
	assert.Equal(t, []float64{7.5}, score.Numbers())
	assert.True(t, score.Cells[0].IsMissing())
	assert.True(t, score.Cells[1].IsMissing())

	label, _ := table.Column("label")
	assert.True(t, label.Cells[1].IsMissing())
}

func TestParseCSV_IntegerColumnWithGapsIsFloat(t *testing.T) {
	table, err := ParseCSV(bytesReader(testutil.CSV("qty,tag", "1,a", ",b", "3,c")))
	require.NoError(t, err)

	assert.Equal(t, "float64", table.ColumnTypes()["qty"])
	col, _ := table.Column("qty")
	assert.Equal(t, []float64{1, 3}, col.Numbers())
}

func TestParseCSV_AllMissingColumnIsNumeric(t *testing.T) {
	table, err := ParseCSV(bytesReader(testutil.CSV("a,b", "1,", "2,")))
	require.NoError(t, err)

	assert.Equal(t, "float64", table.ColumnTypes()["b"])
	assert.Len(t, table.NumericColumns(), 2)
}

func TestParseCSV_InfinityIsText(t *testing.T) {
	table, err := ParseCSV(bytesReader(testutil.CSV("v", "1", "inf", "1e400")))
	require.NoError(t, err)

	assert.Equal(t, "object", table.ColumnTypes()["v"])
}

func TestParseCSV_HeaderNormalization(t *testing.T) {
	table, err := ParseCSV(bytesReader(testutil.CSV("\ufeffa,a,,a", "1,2,3,4")))
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "a.1", "Unnamed: 2", "a.2"}, table.ColumnNames())
}

func TestParseCSV_ShortRowsArePadded(t *testing.T) {
	table, err := ParseCSV(bytesReader(testutil.CSV("a,b,c", "1,2", "4,5,6")))
	require.NoError(t, err)

	assert.Equal(t, 2, table.RowCount())
	c, _ := table.Column("c")
	assert.True(t, c.Cells[0].IsMissing())
	assert.Equal(t, []float64{6}, c.Numbers())
}

func TestParseCSV_Failures(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{name: "empty file", data: []byte("")},
		{name: "row wider than header", data: testutil.CSV("a,b", "1,2,3")},
		{name: "bare quote", data: []byte("a,b\n1,x\"y\n")},
		{name: "text after quoted field", data: []byte("a,b\n1,\"x\"y\n")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := ParseUpload("broken.csv", tt.data)
			assert.Nil(t, table)
			require.Error(t, err)
			assert.True(t, apierrors.IsType(err, apierrors.ErrTypeProcessing))
		})
	}
}

func TestParseCSV_HeaderOnly(t *testing.T) {
	table, err := ParseUpload("empty.csv", testutil.CSV("a,b,c"))
	require.NoError(t, err)

	assert.Equal(t, 0, table.RowCount())
	assert.Equal(t, 3, table.ColumnCount())
	assert.Empty(t, table.Preview(5))
}

func TestParseExcel(t *testing.T) {
	data := testutil.XLSX(t,
		[]interface{}{"product", "units", "revenue"},
		[]interface{}{"widget", 10, 99.5},
		[]interface{}{"gadget", 12, nil},
		[]interface{}{"doohickey", 20, 120.25},
	)

	table, err := ParseUpload("report.xlsx", data)
	require.NoError(t, err)

	assert.Equal(t, 3, table.RowCount())
	assert.Equal(t, []string{"product", "units", "revenue"}, table.ColumnNames())
	assert.Equal(t, "object", table.ColumnTypes()["product"])
	assert.Equal(t, "int64", table.ColumnTypes()["units"])
	assert.Equal(t, "float64", table.ColumnTypes()["revenue"])

	revenue, _ := table.Column("revenue")
	assert.Equal(t, []float64{99.5, 120.25}, revenue.Numbers())
}

func TestParseExcel_DatesAndBooleans(t *testing.T) {
	data := testutil.XLSX(t,
		[]interface{}{"day", "open", "close"},
		[]interface{}{time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), true, 10.5},
		[]interface{}{time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC), false, 11},
	)

	table, err := ParseUpload("days.xlsx", data)
	require.NoError(t, err)

	types := table.ColumnTypes()
	assert.Equal(t, "datetime64[ns]", types["day"])
	assert.Equal(t, "bool", types["open"])
	assert.Equal(t, "float64", types["close"])

	day, _ := table.Column("day")
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), day.Cells[0].Time)
	assert.Len(t, table.NumericColumns(), 1)
}

func TestParseExcel_WideRowsGetUnnamedColumns(t *testing.T) {
	data := testutil.XLSX(t,
		[]interface{}{"a"},
		[]interface{}{1, 2},
	)

	table, err := ParseUpload("wide.xlsx", data)
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "Unnamed: 1"}, table.ColumnNames())
}

func TestParseExcel_CorruptWorkbook(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		data     []byte
	}{
		{name: "not a zip", filename: "bad.xlsx", data: []byte("definitely not a workbook")},
		{name: "legacy binary xls", filename: "old.xls", data: []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseUpload(tt.filename, tt.data)
			require.Error(t, err)
			assert.True(t, apierrors.IsType(err, apierrors.ErrTypeProcessing))
		})
	}
}

func TestTablePreview(t *testing.T) {
	data := testutil.CSV("n,when,name", "1,2024-01-15,a", "2,,b", "3,2024-03-01,c", "4,2024-04-01,d", "5,2024-05-01,e", "6,2024-06-01,f")
	table, err := ParseCSV(bytesReader(data))
	require.NoError(t, err)

	preview := table.Preview(5)
	require.Len(t, preview, 5)
	assert.Equal(t, int64(1), preview[0]["n"])
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC).Format(time.RFC3339), preview[0]["when"])
	assert.Nil(t, preview[1]["when"])
	assert.Equal(t, "e", preview[4]["name"])
}

func bytesReader(b []byte) io.Reader {
	return bytes.NewReader(b)
}
