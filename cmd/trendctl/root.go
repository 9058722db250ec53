package main

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"trendapi/internal/config"
	"trendapi/internal/infrastructure"
	"trendapi/pkg/contracts"
)

type rootOptions struct {
	debug bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "trendctl",
		Short:         "Analyze CSV and Excel files offline",
		Long:          `trendctl runs the same ingestion, statistics, trend detection and summary as the Trend Analysis API against local files, without starting a server.`,
		Version:       contracts.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "log debug output to stderr")

	cmd.AddCommand(newAnalyzeCmd(opts))
	cmd.AddCommand(newVersionCmd())
	return cmd
}

// logger writes to stderr only with --debug so stdout stays valid JSON
func (o *rootOptions) logger(cmd *cobra.Command) *slog.Logger {
	if !o.debug {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return infrastructure.NewLogger(config.LoggingConfig{Level: "debug", Output: "console"}, cmd.ErrOrStderr())
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println(contracts.GetFullVersionString())
		},
	}
}
