package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"trendapi/internal/shared/testutil"
	"trendapi/pkg/contracts"
	"trendapi/pkg/contracts/domain"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestAnalyzeCommand_CSV(t *testing.T) {
	path := writeFile(t, "sales.csv", []byte(testutil.SalesCSV))

	out, err := execute(t, "analyze", path, "--query", "growth")
	require.NoError(t, err)

	var result domain.AnalysisResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.NotEmpty(t, result.DatasetID)
	assert.Equal(t, domain.AnalysisSourceBasic, result.Source)
	require.NotEmpty(t, result.Trends)
	assert.Equal(t, "sales", result.Trends[0].Column)
	assert.Equal(t, domain.TrendIncreasing, result.Trends[0].Direction)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(out), &raw))
	assert.NotContains(t, raw, "upload")
}

func TestAnalyzeCommand_ExcelWithPreview(t *testing.T) {
	path := writeFile(t, "stock.xlsx", testutil.XLSX(t,
		[]interface{}{"day", "level"},
		[]interface{}{1, 100},
		[]interface{}{2, 50},
	))

	out, err := execute(t, "analyze", path, "--preview", "--indent=false")
	require.NoError(t, err)

	var payload struct {
		domain.AnalysisResult
		Upload *domain.UploadResult `json:"upload"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &payload))
	require.NotNil(t, payload.Upload)
	assert.Equal(t, "stock.xlsx", payload.Upload.Filename)
	assert.Equal(t, 2, payload.Upload.RowCount)
	assert.Contains(t, payload.Summary, "Decreasing trends detected in: level")
}

func TestAnalyzeCommand_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing argument", []string{"analyze"}, "accepts 1 arg"},
		{"missing file", []string{"analyze", filepath.Join(t.TempDir(), "nope.csv")}, "read"},
		{"unsupported type", []string{"analyze", writeFile(t, "notes.txt", []byte("x"))}, "Unsupported file type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, contracts.GetVersionString())
}

func TestAnalyzeCommand_Formats(t *testing.T) {
	path := writeFile(t, "sales.csv", []byte(testutil.SalesCSV))

	t.Run("csv to stdout", func(t *testing.T) {
		out, err := execute(t, "analyze", path, "--format", "csv")
		require.NoError(t, err)
		assert.Contains(t, out, "column,count,mean,median,std,min,max,growth_rate,direction,change_percent")
		assert.Contains(t, out, "sales,3,200,200,100,100,300,200,increasing,200")
	})

	t.Run("xlsx to file", func(t *testing.T) {
		target := filepath.Join(t.TempDir(), "report.xlsx")
		_, err := execute(t, "analyze", path, "-f", "xlsx", "-o", target)
		require.NoError(t, err)

		f, err := excelize.OpenFile(target)
		require.NoError(t, err)
		defer f.Close()
		assert.Contains(t, f.GetSheetList(), "Statistics")
	})

	t.Run("xlsx needs output", func(t *testing.T) {
		_, err := execute(t, "analyze", path, "--format", "xlsx")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "--output")
	})

	t.Run("unknown format", func(t *testing.T) {
		_, err := execute(t, "analyze", path, "--format", "yaml")
		require.Error(t, err)
	})
}

func TestAnalyzeCommand_DebugLogsTraceID(t *testing.T) {
	path := writeFile(t, "sales.csv", []byte(testutil.SalesCSV))

	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{"analyze", path, "--debug"})
	require.NoError(t, cmd.Execute())

	var result domain.AnalysisResult
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &result))
	assert.Contains(t, stderr.String(), `"trace_id"`)
	assert.Contains(t, stderr.String(), `"component":"dataset_service"`)
}
