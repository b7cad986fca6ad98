package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/tsawler/gridscan/internal/log"
)

// NewRootCmd creates the root command for gridscan.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gridscan",
		Short: "Extract ruled tables from scanned documents",
		Long: `gridscan extracts tables from scanned PDFs and page images.

Each page is searched for its dominant ruled table. The table is deskewed,
cut into cells along its grid lines and every cell is recognized with
Tesseract. Rows are written as CSV, one file per input.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().String("log-format", "text", "Log format: text or json")

	cmd.AddCommand(NewExtractCmd())
	cmd.AddCommand(NewConfigCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// newLogger creates the logger selected by --log-format, writing to the
// command's error stream.
func newLogger(cmd *cobra.Command, verbose bool) (*slog.Logger, error) {
	format, err := cmd.Flags().GetString("log-format")
	if err != nil {
		format, err = cmd.Root().PersistentFlags().GetString("log-format")
		if err != nil {
			format = "text"
		}
	}
	switch format {
	case "text", "":
		return log.New(cmd.ErrOrStderr(), verbose), nil
	case "json":
		return log.NewJSON(cmd.ErrOrStderr(), verbose), nil
	default:
		return nil, fmt.Errorf("unknown log format %q (want text or json)", format)
	}
}
