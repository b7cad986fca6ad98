package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tsawler/gridscan"
	"github.com/tsawler/gridscan/internal/config"
	"github.com/tsawler/gridscan/internal/store"
	"github.com/tsawler/gridscan/ocr"
	"github.com/tsawler/gridscan/overlay"
	"github.com/tsawler/gridscan/record"
	"github.com/tsawler/gridscan/source"
)

// newRecognizer creates the OCR engine for a run. Tests replace it.
var newRecognizer = func(lang string) (ocr.Recognizer, func(), error) {
	client, err := ocr.New()
	if err != nil {
		return nil, nil, err
	}
	if err := client.SetLanguage(lang); err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	return client, func() { _ = client.Close() }, nil
}

// NewExtractCmd creates the extract command.
func NewExtractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract <file>...",
		Short: "Extract tables from scanned PDFs and images",
		Long: `Extract finds the ruled table on every page of each input, recognizes its
cells and writes <name>_scanned.csv to the output directory.

PDFs that carry a text layer are skipped. Pages without a table are skipped
with a log line.

Examples:
  gridscan extract invoice.pdf
  gridscan extract scans/*.png -o results --markdown
  gridscan extract report.pdf --pages 1,3-5 --workers 2 --debug-dir debug`,
		Args: cobra.MinimumNArgs(1),
		RunE: runExtractCmd,
	}

	d := config.Default()
	cmd.Flags().StringP("output-dir", "o", d.OutputDir, "Directory for CSV output")
	cmd.Flags().StringP("pages", "p", "", "Pages to process, e.g. 1,3-5 (default all)")
	cmd.Flags().IntP("workers", "w", d.Workers, "Pages processed concurrently")
	cmd.Flags().Int("cell-workers", d.CellWorkers, "Cells refined concurrently per page")
	cmd.Flags().DurationP("timeout", "t", d.PageTimeout, "Time limit per page (0 disables)")
	cmd.Flags().StringP("lang", "l", d.Language, "OCR language, e.g. eng+deu")
	cmd.Flags().String("debug-dir", "", "Write grid line overlays to this directory")
	cmd.Flags().BoolP("markdown", "m", false, "Also write a Markdown preview")
	cmd.Flags().Bool("align", false, "Keep empty fields so columns follow the grid")
	cmd.Flags().String("db", "", "Store results in a database in this directory")
	cmd.Flags().StringP("config", "c", "", "Configuration file (default "+config.DefaultPath()+")")
	registerWindowFlag(cmd)

	return cmd
}

func runExtractCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	pagesFlag, err := cmd.Flags().GetString("pages")
	if err != nil {
		return err
	}
	pages, err := parsePages(pagesFlag)
	if err != nil {
		return err
	}

	logger, err := newLogger(cmd, cfg.Verbose)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runExtract(ctx, cfg, args, pages, logger)
}

// buildConfig loads the configuration file and applies the flags the user
// set explicitly.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	var cfg *config.Config
	if path != "" {
		// An explicit path must exist.
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.LoadOrDefault("")
	}
	if err != nil {
		return nil, err
	}

	// Flags only override the file when set explicitly. The flags are
	// registered by NewExtractCmd, so lookups cannot fail.
	flags := cmd.Flags()
	if flags.Changed("output-dir") {
		cfg.OutputDir, _ = flags.GetString("output-dir")
	}
	if flags.Changed("workers") {
		cfg.Workers, _ = flags.GetInt("workers")
	}
	if flags.Changed("cell-workers") {
		cfg.CellWorkers, _ = flags.GetInt("cell-workers")
	}
	if flags.Changed("timeout") {
		cfg.PageTimeout, _ = flags.GetDuration("timeout")
	}
	if flags.Changed("lang") {
		cfg.Language, _ = flags.GetString("lang")
	}
	if flags.Changed("debug-dir") {
		cfg.DebugDir, _ = flags.GetString("debug-dir")
	}
	if flags.Changed("debug-window") {
		cfg.DebugWindow, _ = flags.GetBool("debug-window")
	}
	if flags.Changed("markdown") {
		cfg.Markdown, _ = flags.GetBool("markdown")
	}
	if flags.Changed("align") {
		cfg.AlignColumns, _ = flags.GetBool("align")
	}
	if flags.Changed("db") {
		cfg.Database, _ = flags.GetString("db")
	}
	if getVerboseFlag(cmd) {
		cfg.Verbose = true
	}
	return cfg, nil
}

// parsePages parses "1,3-5" into sorted page numbers. An empty string
// selects all pages.
func parsePages(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var pages []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		lo, hi, isRange := strings.Cut(part, "-")
		start, err := strconv.Atoi(strings.TrimSpace(lo))
		if err != nil || start < 1 {
			return nil, fmt.Errorf("invalid page %q", part)
		}
		end := start
		if isRange {
			end, err = strconv.Atoi(strings.TrimSpace(hi))
			if err != nil || end < start {
				return nil, fmt.Errorf("invalid page range %q", part)
			}
		}
		for p := start; p <= end; p++ {
			pages = append(pages, p)
		}
	}
	return pages, nil
}

// runExtract processes every input in turn. A failing input is logged and
// the others still run; the returned error reports how many failed.
func runExtract(ctx context.Context, cfg *config.Config, inputs []string, pages []int, logger *slog.Logger) error {
	if err := os.MkdirAll(cfg.OutputDir, 0o750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	rec, closeRec, err := newRecognizer(cfg.Language)
	if err != nil {
		return fmt.Errorf("failed to start OCR: %w", err)
	}
	defer closeRec()

	var db *store.Store
	if cfg.Database != "" {
		db, err = store.Open(cfg.Database, store.DefaultOptions())
		if err != nil {
			return err
		}
		defer db.Close()
	}

	failed := 0
	for _, input := range inputs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := extractInput(ctx, cfg, input, pages, rec, db, logger); err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			logger.Error("extraction failed", "path", input, "error", err)
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d inputs failed", failed, len(inputs))
	}
	return nil
}

// outputStem is the input file name without its extension
func outputStem(input string) string {
	base := filepath.Base(input)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func extractInput(ctx context.Context, cfg *config.Config, input string, pages []int, rec ocr.Recognizer, db *store.Store, logger *slog.Logger) error {
	scanned := true
	if source.IsPDF(input) {
		var err error
		scanned, err = source.IsScanned(input)
		if err != nil {
			logger.Warn("could not read text layer, treating as scanned", "path", input, "error", err)
		}
		if !scanned {
			logger.Info("skipping digital document", "path", input)
			return nil
		}
	}

	stem := outputStem(input)
	ext := gridscan.Open(input).
		Pages(pages...).
		Workers(cfg.Workers).
		CellWorkers(cfg.CellWorkers).
		PageTimeout(cfg.PageTimeout).
		Config(cfg.Tables()).
		Detector(cfg.Detector.Name).
		Recognizer(rec).
		Logger(logger)
	if cfg.AlignColumns {
		ext = ext.KeepGridIndices()
	}
	var sinks overlay.Multi
	if cfg.DebugDir != "" {
		sinks = append(sinks, overlay.NewPNGSink(filepath.Join(cfg.DebugDir, stem)))
	}
	if cfg.DebugWindow {
		window, err := newWindowSink()
		if err != nil {
			return err
		}
		sinks = append(sinks, window)
		// One window at a time.
		ext = ext.Workers(1)
	}
	if len(sinks) > 0 {
		ext = ext.Debug(sinks)
	}

	logger.Info("processing document", "path", input)
	results, warnings, err := ext.Recognize(ctx)
	if err != nil {
		return err
	}
	for _, w := range warnings {
		logger.Warn(w.Message, "path", input, "page", w.Page, "error", w.Err)
	}

	var records [][]string
	for _, r := range results {
		records = append(records, r.Records...)
	}

	csvPath := filepath.Join(cfg.OutputDir, stem+"_scanned.csv")
	if err := writeFile(csvPath, records, func(f *os.File) record.Writer { return record.NewCSVWriter(f) }); err != nil {
		return err
	}
	logger.Info("saved output", "path", csvPath, "records", len(records))

	if cfg.Markdown {
		mdPath := filepath.Join(cfg.OutputDir, stem+"_scanned.md")
		err := writeFile(mdPath, records, func(f *os.File) record.Writer {
			w := record.NewMarkdownWriter(f)
			w.Title = filepath.Base(input)
			return w
		})
		if err != nil {
			return err
		}
		logger.Info("saved output", "path", mdPath)
	}

	if db != nil {
		doc := store.Document{Path: input, Scanned: scanned}
		for _, r := range results {
			p := store.Page{Number: r.Page, Records: r.Records}
			if r.Table != nil {
				p.Rows, p.Cols = r.Table.RowCount(), r.Table.ColCount()
			}
			if r.Err != nil {
				p.Err = r.Err.Error()
			}
			doc.Pages = append(doc.Pages, p)
		}
		if _, err := db.SaveDocument(ctx, doc); err != nil {
			return err
		}
		logger.Debug("stored results", "path", input, "database", db.Path())
	}
	return nil
}

func writeFile(path string, records [][]string, newWriter func(*os.File) record.Writer) error {
	f, err := os.Create(path) //nolint:gosec // output path is built from the configured directory
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := newWriter(f).Write(records); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
