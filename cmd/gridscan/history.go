package main

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/tsawler/gridscan/internal/config"
	"github.com/tsawler/gridscan/internal/store"
	"github.com/tsawler/gridscan/record"
)

// NewHistoryCmd creates the history command.
// It reads results that extract saved with --db.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [file]",
		Short: "Show extraction results stored in the database",
		Long: `History lists the documents recorded by 'gridscan extract --db'.

With a file argument it prints the records of the latest run for that file
as CSV, or as Markdown with --markdown.

Examples:
  gridscan history
  gridscan history invoice.pdf --markdown
  gridscan history --db ./data`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}
	cmd.Flags().String("db", config.DataDir(), "Database directory")
	cmd.Flags().BoolP("markdown", "m", false, "Print records as a Markdown table")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, args []string) error {
	dir, err := cmd.Flags().GetString("db")
	if err != nil {
		return err
	}
	asMarkdown, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}

	opts := store.DefaultOptions()
	opts.CreateIfNotExists = false
	db, err := store.Open(dir, opts)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if len(args) == 0 {
		docs, err := db.Documents(ctx)
		if err != nil {
			return err
		}
		if len(docs) == 0 {
			fmt.Fprintln(out, "No documents stored")
			return nil
		}
		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tDATE\tPAGES\tFAILED\tPATH")
		for _, d := range docs {
			failed := 0
			for _, p := range d.Pages {
				if p.Err != "" {
					failed++
				}
			}
			fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%s\n", d.ID, d.CreatedAt.Format(time.DateTime), len(d.Pages), failed, d.Path)
		}
		return tw.Flush()
	}

	records, err := db.Records(ctx, args[0])
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("no stored results for %s", args[0])
	}
	if err != nil {
		return err
	}
	var w record.Writer = record.NewCSVWriter(out)
	if asMarkdown {
		md := record.NewMarkdownWriter(out)
		md.Title = args[0]
		w = md
	}
	return w.Write(records)
}
