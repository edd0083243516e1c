package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/nao1215/svgmin/internal/config"
	"github.com/nao1215/svgmin/internal/database"
	applog "github.com/nao1215/svgmin/internal/log"
	"github.com/nao1215/svgmin/internal/model"
	"github.com/nao1215/svgmin/internal/optimizer"
	"github.com/nao1215/svgmin/internal/pipeline"
	"github.com/nao1215/svgmin/internal/report"
)

// reportFilePerm is the permission of report files written with --report.
const reportFilePerm = 0o644

// NewRunCmd creates the run command.
// It is the explicit form of running svgmin without a subcommand.
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Minify the SVG files of the input directory",
		Long: `Run minifies every SVG file of the input directory and writes the smaller
copies to the output directory. Running svgmin without a subcommand does the same.

Settings are taken from the defaults, then the configuration file, then the
flags given on the command line. A failing file is reported and skipped; the
other files are still processed.

Examples:
  # Minify ./svg into ./svg-min
  svgmin

  # Use other directories and the built-in optimizer
  svgmin run --input assets/icons --output dist/icons --optimizer builtin

  # Four workers, keep two decimal places
  svgmin run --jobs 4 --precision 2

  # See what would be saved without writing anything
  svgmin run --dry-run

  # Write a Markdown report for a pull request comment
  svgmin run --markdown -o report.md

Configuration file (.svgmin) example:
  input: assets
  output: dist
  precision: 2
  rules:
    "logo.svg":
      optimizer: builtin
    "*-anim.svg":
      precision: 4
    "vendor-*.svg":
      skip: true`,
		Args: cobra.NoArgs,
		RunE: runBatchCmd,
	}

	addRunFlags(cmd)

	return cmd
}

// addRunFlags registers the batch flags on cmd.
func addRunFlags(cmd *cobra.Command) {
	// Directory flags
	cmd.Flags().StringP("input", "i", config.DefaultInputDir,
		"Directory containing the SVG files")
	cmd.Flags().String("output", config.DefaultOutputDir,
		"Directory the minified files are written to (created if needed)")
	cmd.Flags().StringP("extension", "e", config.DefaultExtension,
		"File extension of the input files")

	// Optimizer flags
	cmd.Flags().String("optimizer", config.DefaultOptimizer,
		"Optimizer strategy: auto, minify or builtin")
	cmd.Flags().IntP("precision", "p", config.DefaultPrecision,
		"Decimal places kept in numbers (0-10)")
	cmd.Flags().IntP("jobs", "n", config.DefaultJobs,
		"Number of files processed concurrently")
	cmd.Flags().Int64("max-file-size", config.DefaultMaxFileSize,
		"Largest input file in bytes; larger files fail")
	cmd.Flags().BoolP("dry-run", "d", false,
		"Optimize and report without writing output files")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .svgmin in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("report", "o", "",
		"Write report to specified file path (creates directories if needed)")
	cmd.Flags().Bool("no-history", false,
		"Do not save this run to the history database")
}

// runBatchCmd executes the batch run.
func runBatchCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	if cfg.NoColor {
		color.NoColor = true
	}

	logger := setupLogger(cmd, cfg.Verbose)
	slog.SetDefault(logger)
	logger.Debug("configuration", "config", cfg.String())

	// Cancel on interrupt; files not yet started are skipped.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_, err = runBatch(ctx, cfg, cmd.OutOrStdout(), cmd.ErrOrStderr(), logger)
	return err
}

// getBoolFlag retrieves a bool flag from the command or the root's
// persistent flags.
func getBoolFlag(cmd *cobra.Command, name string) bool {
	v, err := cmd.Flags().GetBool(name)
	if err != nil {
		v, err = cmd.Root().PersistentFlags().GetBool(name)
		if err != nil {
			return false
		}
	}
	return v
}

// setupLogger creates the structured logger for the command.
func setupLogger(cmd *cobra.Command, verbose bool) *slog.Logger {
	if getBoolFlag(cmd, "log-json") {
		return applog.NewJSONLogger(cmd.ErrOrStderr(), verbose)
	}
	return applog.NewLogger(cmd.ErrOrStderr(), verbose)
}

// buildConfig creates a Config from defaults, the configuration file and
// the flags the user set, in that order of precedence.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	var err error
	cfg.ConfigFilePath, err = flags.GetString("config")
	if err != nil {
		return nil, err
	}

	// An explicit path must exist; otherwise a missing file means defaults.
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	if configPath != "" {
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cfg.ApplyFile(file)
	} else if cfg.ConfigFilePath != "" {
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}

	if err := changedString(flags, "input", &cfg.InputDir); err != nil {
		return nil, err
	}
	if err := changedString(flags, "output", &cfg.OutputDir); err != nil {
		return nil, err
	}
	if err := changedString(flags, "extension", &cfg.Extension); err != nil {
		return nil, err
	}
	if err := changedString(flags, "optimizer", &cfg.Optimizer); err != nil {
		return nil, err
	}
	if flags.Changed("precision") {
		if cfg.Precision, err = flags.GetInt("precision"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("jobs") {
		if cfg.Jobs, err = flags.GetInt("jobs"); err != nil {
			return nil, err
		}
	}
	if cfg.MaxFileSize, err = flags.GetInt64("max-file-size"); err != nil {
		return nil, err
	}
	if cfg.DryRun, err = flags.GetBool("dry-run"); err != nil {
		return nil, err
	}
	if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
		return nil, err
	}
	if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
		return nil, err
	}
	if cfg.ReportFile, err = flags.GetString("report"); err != nil {
		return nil, err
	}
	noHistory, err := flags.GetBool("no-history")
	if err != nil {
		return nil, err
	}
	cfg.SaveHistory = !noHistory

	cfg.Verbose = getBoolFlag(cmd, "verbose")
	cfg.NoColor = getBoolFlag(cmd, "no-color")

	return cfg, nil
}

// changedString copies a string flag into dst when the user set it.
func changedString(flags *pflag.FlagSet, name string, dst *string) error {
	if !flags.Changed(name) {
		return nil
	}
	v, err := flags.GetString(name)
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

// runBatch minifies the input directory and writes the report.
// The error is non-nil only when the run could not happen at all or was
// interrupted; per-file failures are part of the returned report.
func runBatch(ctx context.Context, cfg *config.Config, out, errOut io.Writer, logger *slog.Logger) (*model.RunReport, error) {
	format := report.SelectFormat(cfg.JSONReport, cfg.MarkdownReport)

	// Progress goes to stdout only when it cannot corrupt a machine-readable report.
	progress := out
	if format != report.FormatText && cfg.ReportFile == "" {
		progress = errOut
	}

	files, created, err := pipeline.Discover(cfg.InputDir, cfg.Extension)
	if err != nil {
		return nil, err
	}
	if created {
		fmt.Fprintf(progress, "Created input directory %s; add %s files and run again.\n", cfg.InputDir, cfg.Extension)
	}

	if !cfg.DryRun && len(files) > 0 {
		if err := pipeline.PrepareOutput(cfg.OutputDir); err != nil {
			return nil, err
		}
	}

	defaultOpt, err := optimizer.Select(cfg.Optimizer, optimizer.Options{Precision: cfg.Precision})
	if err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}

	logger.Info("starting run",
		"input", cfg.InputDir,
		"output", cfg.OutputDir,
		"files", len(files),
		"optimizer", defaultOpt.Name(),
		"jobs", cfg.Jobs,
	)

	docs := make([]*model.Document, 0, len(files))
	for _, name := range files {
		doc := model.NewDocument(name, filepath.Join(cfg.InputDir, name), pipeline.TargetPath(cfg.OutputDir, name))
		if s := cfg.SettingsFor(name); s.Skip {
			doc.Skip("matched rule " + s.Rule)
		}
		docs = append(docs, doc)
	}

	runReport := model.NewRunReport(cfg.InputDir, cfg.OutputDir, defaultOpt.Name())
	runReport.DryRun = cfg.DryRun

	bp := pipeline.NewBatchProcessor(
		func(doc *model.Document) *pipeline.Pipeline {
			return newFilePipeline(cfg, doc.Name, defaultOpt, logger)
		},
		pipeline.WithConcurrency(cfg.Jobs),
		pipeline.WithBatchLogger(logger),
	)

	done := 0
	batchErr := bp.ProcessBatchWithCallback(ctx, docs, func(doc *model.Document, _ int) {
		done++
		printProgress(progress, done, len(docs), doc.Result())
	})

	// Report order is discovery order, whatever the completion order was.
	for _, doc := range docs {
		runReport.Add(doc.Result())
	}
	runReport.Finish()

	if err := saveHistory(ctx, cfg, runReport, logger); err != nil {
		logger.Error("failed to save run history", "error", err)
	}

	if err := outputReport(cfg, format, out, runReport); err != nil {
		return runReport, fmt.Errorf("failed to write report: %w", err)
	}

	if !optimizer.Available(optimizer.NameMinify) && len(files) > 0 {
		fmt.Fprintln(errOut, "[TIP] Build without the nominify tag for better optimization:")
		fmt.Fprintln(errOut, "      go install github.com/nao1215/svgmin/cmd/svgmin@latest")
	}

	if errors.Is(batchErr, context.Canceled) {
		return runReport, errors.New("interrupted: remaining files were skipped")
	}
	return runReport, batchErr
}

// newFilePipeline creates the pipeline of one file, applying the matching
// configuration rule.
func newFilePipeline(cfg *config.Config, name string, defaultOpt optimizer.Optimizer, logger *slog.Logger) *pipeline.Pipeline {
	s := cfg.SettingsFor(name)

	opt := defaultOpt
	if s.Optimizer != cfg.Optimizer || s.Precision != cfg.Precision {
		selected, err := optimizer.Select(s.Optimizer, optimizer.Options{Precision: s.Precision})
		if err != nil {
			logger.Warn("rule optimizer unavailable, using default",
				"file", name,
				"optimizer", s.Optimizer,
				"error", err,
			)
		} else {
			opt = selected
		}
	}

	return pipeline.DefaultPipeline(opt,
		[]pipeline.Option{pipeline.WithLogger(logger)},
		pipeline.WithPipelineFallback(optimizer.NewBuiltin(optimizer.Options{Precision: s.Precision})),
		pipeline.WithPipelineDryRun(cfg.DryRun),
		pipeline.WithPipelineMaxFileSize(cfg.MaxFileSize),
	)
}

var (
	okColor   = color.New(color.FgGreen)
	sameColor = color.New(color.FgYellow)
	failColor = color.New(color.FgRed)
)

// printProgress prints one line per completed file.
func printProgress(w io.Writer, done, total int, r model.FileResult) {
	c := okColor
	switch r.Status {
	case model.StatusFailed:
		c = failColor
	case model.StatusUnchanged, model.StatusSkipped:
		c = sameColor
	}
	fmt.Fprintf(w, "[%d/%d] %s %s  %s\n", done, total, c.Sprint(report.StatusLabel(r.Status)), r.Name, report.FileDetail(r))
}

// outputReport writes the run report in the requested format. With
// --report the file receives that format and the terminal still gets the
// text summary.
func outputReport(cfg *config.Config, format report.Format, out io.Writer, runReport *model.RunReport) error {
	if cfg.ReportFile == "" {
		_, err := report.NewWriter(format, out, getVersion()).Write(runReport)
		return err
	}

	dir := filepath.Dir(cfg.ReportFile)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}

	f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, reportFilePerm)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}

	w := report.NewMultiWriter(
		report.NewWriter(format, f, getVersion()),
		report.NewSimpleWriter(out, report.WithShowFiles(false)),
	)
	if _, err := w.Write(runReport); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(out, "Report written to %s\n", cfg.ReportFile)
	return nil
}

// saveHistory stores the run in the history database when enabled.
func saveHistory(ctx context.Context, cfg *config.Config, runReport *model.RunReport, logger *slog.Logger) error {
	if !cfg.SaveHistory {
		return nil
	}

	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return err
	}
	defer db.Close()

	// An interrupted run is still recorded.
	id, err := db.SaveRun(context.WithoutCancel(ctx), runReport)
	if err != nil {
		return err
	}

	logger.Info("run saved to history", "id", id, "db", db.Path())
	return nil
}

// optimizerList returns the compiled-in optimizer names.
func optimizerList() string {
	return strings.Join(optimizer.Names(), ", ")
}
