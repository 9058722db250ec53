package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"trendapi/internal/exporter"
	"trendapi/internal/infrastructure"
	"trendapi/internal/registry"
	"trendapi/internal/services"
	"trendapi/pkg/contracts/domain"
)

type analyzeOptions struct {
	query       string
	indent      bool
	withPreview bool
	format      string
	output      string
}

// analyzeOutput is printed by analyze; Upload is set only with --preview
type analyzeOutput struct {
	*domain.AnalysisResult
	Upload *domain.UploadResult `json:"upload,omitempty"`
}

func newAnalyzeCmd(root *rootOptions) *cobra.Command {
	opts := &analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "Analyze a CSV or Excel file and print the result as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := exporter.ParseFormat(opts.format)
			if err != nil {
				return err
			}
			if format == exporter.FormatXLSX && opts.output == "" {
				return fmt.Errorf("--output is required for xlsx")
			}

			path := args[0]
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}

			// One trace id per run ties the debug log lines together
			ctx := infrastructure.EnsureTraceID(cmd.Context())
			svc := services.NewDatasetService(registry.NewMemoryStore(), root.logger(cmd))

			up, err := svc.Upload(ctx, filepath.Base(path), data)
			if err != nil {
				return err
			}
			result, err := svc.Analyze(ctx, up.DatasetID, domain.AnalyzeOptions{Query: opts.query})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if opts.output != "" {
				file, err := os.Create(opts.output)
				if err != nil {
					return fmt.Errorf("create %s: %w", opts.output, err)
				}
				defer file.Close()
				w = file
			}

			switch format {
			case exporter.FormatCSV:
				return exporter.ExportCSV(w, result)
			case exporter.FormatXLSX:
				return exporter.ExportXLSX(w, result)
			default:
				out := analyzeOutput{AnalysisResult: result}
				if opts.withPreview {
					out.Upload = up
				}
				return writeJSON(w, out, opts.indent)
			}
		},
	}

	cmd.Flags().StringVarP(&opts.query, "query", "q", "", "free-text query recorded with the analysis")
	cmd.Flags().BoolVar(&opts.indent, "indent", true, "indent the JSON output")
	cmd.Flags().BoolVar(&opts.withPreview, "preview", false, "include the upload summary and row preview (json only)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", string(exporter.FormatJSON), "output format: json, csv or xlsx")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write to this file instead of stdout")
	return cmd
}

func writeJSON(w io.Writer, v interface{}, indent bool) error {
	enc := json.NewEncoder(w)
	if indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
