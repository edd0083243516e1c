package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/spf13/cobra"

	"github.com/nao1215/svgmin/internal/config"
	"github.com/nao1215/svgmin/internal/database"
	"github.com/nao1215/svgmin/internal/model"
	"github.com/nao1215/svgmin/internal/report"
)

// historyDateFormat is used for run timestamps in listings.
const historyDateFormat = "2006-01-02 15:04:05"

// defaultHistoryLimit is the number of runs listed by --list.
const defaultHistoryLimit = 20

// NewHistoryCmd creates the history command.
// This command shows and compares runs stored in the history database.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show and compare previous runs",
		Long: `History displays runs stored in the history database.

Every svgmin run is saved unless --no-history is given. Without flags the
latest two runs are compared file by file, showing which files became
smaller or larger and which were added, removed or failed.

Examples:
  # Compare the latest two runs
  svgmin history

  # List recent runs
  svgmin history --list

  # Show the report of a stored run
  svgmin history --show 5

  # Show the stored run as Markdown
  svgmin history --show 5 --markdown

  # Track the size of one file over time
  svgmin history --file logo.svg

  # Output the comparison in JSON format
  svgmin history --json`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().BoolP("list", "l", false,
		"List recent runs")
	cmd.Flags().IntP("limit", "n", defaultHistoryLimit,
		"Maximum number of runs or records listed")
	cmd.Flags().Int64P("show", "s", 0,
		"Show the report of the run with this ID (use --list to see available IDs)")
	cmd.Flags().StringP("file", "f", "",
		"Show the history of one file")

	cmd.Flags().BoolP("json", "j", false,
		"Output in JSON format")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output in Markdown format")

	return cmd
}

// historyOptions holds the parsed history flags.
type historyOptions struct {
	list     bool
	limit    int
	show     int64
	file     string
	format   report.Format
	database string
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	opts, err := parseHistoryFlags(cmd)
	if err != nil {
		return err
	}

	// Reading history never creates the database.
	db, err := database.Open(opts.database, database.Options{CreateIfNotExists: false, EnableWAL: true})
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer db.Close()

	return runHistory(context.Background(), cmd.OutOrStdout(), db, opts)
}

// parseHistoryFlags reads and validates the history flags.
func parseHistoryFlags(cmd *cobra.Command) (historyOptions, error) {
	opts := historyOptions{database: config.XDGDataDir()}
	flags := cmd.Flags()

	var err error
	if opts.list, err = flags.GetBool("list"); err != nil {
		return opts, err
	}
	if opts.limit, err = flags.GetInt("limit"); err != nil {
		return opts, err
	}
	if opts.show, err = flags.GetInt64("show"); err != nil {
		return opts, err
	}
	if opts.file, err = flags.GetString("file"); err != nil {
		return opts, err
	}
	jsonOutput, err := flags.GetBool("json")
	if err != nil {
		return opts, err
	}
	markdownOutput, err := flags.GetBool("markdown")
	if err != nil {
		return opts, err
	}
	if jsonOutput && markdownOutput {
		return opts, config.ErrConflictingReportFormats
	}
	opts.format = report.SelectFormat(jsonOutput, markdownOutput)

	modes := 0
	for _, set := range []bool{opts.list, opts.show != 0, opts.file != ""} {
		if set {
			modes++
		}
	}
	if modes > 1 {
		return opts, errors.New("--list, --show and --file cannot be used together")
	}
	return opts, nil
}

// runHistory dispatches to the selected history view.
func runHistory(ctx context.Context, w io.Writer, db *database.HistoryDB, opts historyOptions) error {
	switch {
	case opts.list:
		return listRuns(ctx, w, db, opts.limit, opts.format)
	case opts.show != 0:
		return showRun(ctx, w, db, opts.show, opts.format)
	case opts.file != "":
		return showFileHistory(ctx, w, db, opts.file, opts.limit, opts.format)
	default:
		return compareLatest(ctx, w, db, opts.format)
	}
}

// listRuns lists the most recent runs.
func listRuns(ctx context.Context, w io.Writer, db *database.HistoryDB, limit int, format report.Format) error {
	runs, err := db.ListRuns(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if format == report.FormatJSON {
		return writeJSON(w, runs)
	}

	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs found in the history.")
		fmt.Fprintln(w, "\nRun 'svgmin' to minify a directory and record a run.")
		return nil
	}

	if format == report.FormatMarkdown {
		rows := make([][]string, 0, len(runs))
		for _, r := range runs {
			rows = append(rows, []string{
				strconv.FormatInt(r.ID, 10),
				r.StartedAt.Local().Format(historyDateFormat),
				r.InputDir,
				strconv.Itoa(r.Summary.Files),
				strconv.Itoa(r.Summary.Failed),
				report.Size(r.Summary.SavedBytes),
				report.Percent(r.Summary.SavedPercent),
			})
		}
		return markdown.NewMarkdown(w).
			H1("svgmin Run History").
			Table(markdown.TableSet{
				Header: []string{"ID", "Date", "Input", "Files", "Failed", "Saved", "Ratio"},
				Rows:   rows,
			}).
			Build()
	}

	fmt.Fprintf(w, "Run history (%d runs):\n\n", len(runs))
	fmt.Fprintf(w, "  %-6s  %-19s  %-6s  %-6s  %-12s  %s\n", "ID", "Date", "Files", "Failed", "Saved", "Input")
	fmt.Fprintln(w, "  "+strings.Repeat("-", 70))
	for _, r := range runs {
		saved := fmt.Sprintf("%s (%s)", report.Size(r.Summary.SavedBytes), report.Percent(r.Summary.SavedPercent))
		dryRun := ""
		if r.DryRun {
			dryRun = " [dry run]"
		}
		fmt.Fprintf(w, "  %-6d  %-19s  %-6d  %-6d  %-12s  %s%s\n",
			r.ID,
			r.StartedAt.Local().Format(historyDateFormat),
			r.Summary.Files,
			r.Summary.Failed,
			saved,
			r.InputDir,
			dryRun,
		)
	}
	fmt.Fprintln(w, "\nUse 'svgmin history --show <id>' to see the report of a run.")

	return nil
}

// showRun renders a stored run with the report writers.
func showRun(ctx context.Context, w io.Writer, db *database.HistoryDB, id int64, format report.Format) error {
	run, err := db.GetRun(ctx, id)
	if err != nil {
		return err
	}
	_, err = report.NewWriter(format, w, getVersion()).Write(run)
	return err
}

// showFileHistory prints the size of one file across runs.
func showFileHistory(ctx context.Context, w io.Writer, db *database.HistoryDB, name string, limit int, format report.Format) error {
	records, err := db.FileHistory(ctx, name, limit)
	if err != nil {
		return fmt.Errorf("failed to get file history: %w", err)
	}

	if format == report.FormatJSON {
		return writeJSON(w, records)
	}

	if len(records) == 0 {
		fmt.Fprintf(w, "No history found for %s\n", name)
		return nil
	}

	if format == report.FormatMarkdown {
		rows := make([][]string, 0, len(records))
		for _, rec := range records {
			rows = append(rows, []string{
				strconv.FormatInt(rec.RunID, 10),
				rec.StartedAt.Local().Format(historyDateFormat),
				string(rec.Result.Status),
				report.Size(rec.Result.OriginalSize),
				report.Size(rec.Result.MinifiedSize),
				report.Percent(rec.Result.SavedPercent()),
			})
		}
		return markdown.NewMarkdown(w).
			H1(fmt.Sprintf("History of %s", name)).
			Table(markdown.TableSet{
				Header: []string{"Run", "Date", "Status", "Original", "Minified", "Ratio"},
				Rows:   rows,
			}).
			Build()
	}

	fmt.Fprintf(w, "History of %s (%d runs):\n\n", name, len(records))
	fmt.Fprintf(w, "  %-6s  %-19s  %-6s  %s\n", "Run", "Date", "Status", "Result")
	fmt.Fprintln(w, "  "+strings.Repeat("-", 70))
	for _, rec := range records {
		fmt.Fprintf(w, "  %-6d  %-19s  %s  %s\n",
			rec.RunID,
			rec.StartedAt.Local().Format(historyDateFormat),
			report.StatusLabel(rec.Result.Status),
			report.FileDetail(rec.Result),
		)
	}
	return nil
}

// compareLatest compares the latest two runs.
func compareLatest(ctx context.Context, w io.Writer, db *database.HistoryDB, format report.Format) error {
	runs, err := db.LatestRuns(ctx, 2)
	if err != nil {
		return fmt.Errorf("failed to get run history: %w", err)
	}
	if len(runs) < 2 {
		return fmt.Errorf("at least 2 runs are required for comparison (found %d)", len(runs))
	}

	diff := model.Compare(runs[1], runs[0])

	switch format {
	case report.FormatJSON:
		return writeJSON(w, diff)
	case report.FormatMarkdown:
		return writeComparisonMarkdown(w, diff)
	default:
		writeComparisonText(w, diff)
		return nil
	}
}

// writeJSON writes v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// writeComparisonText writes the comparison in human-readable text format.
func writeComparisonText(w io.Writer, d *model.RunDiff) {
	fmt.Fprintf(w, "Run Comparison: #%d -> #%d\n", d.PreviousID, d.CurrentID)
	fmt.Fprintln(w, strings.Repeat("=", 60))

	fmt.Fprintf(w, "\nPrevious run: %s\n", d.PreviousStarted.Local().Format(historyDateFormat))
	fmt.Fprintf(w, "Current run:  %s\n", d.CurrentStarted.Local().Format(historyDateFormat))

	fmt.Fprintln(w, "\nSummary:")
	fmt.Fprintf(w, "  %-10s  %-12s  %-12s  %s\n", "", "Previous", "Current", "Change")
	fmt.Fprintln(w, "  "+strings.Repeat("-", 50))
	fmt.Fprintf(w, "  %-10s  %-12d  %-12d  %s\n", "Files",
		d.Previous.Files, d.Current.Files, formatDelta(int64(d.Current.Files-d.Previous.Files)))
	fmt.Fprintf(w, "  %-10s  %-12d  %-12d  %s\n", "Failed",
		d.Previous.Failed, d.Current.Failed, formatDelta(int64(d.Current.Failed-d.Previous.Failed)))
	fmt.Fprintf(w, "  %-10s  %-12s  %-12s  %s\n", "Minified",
		report.Size(d.Previous.MinifiedBytes), report.Size(d.Current.MinifiedBytes), formatSizeDelta(d.MinifiedDelta()))
	fmt.Fprintf(w, "  %-10s  %-12s  %-12s\n", "Ratio",
		report.Percent(d.Previous.SavedPercent), report.Percent(d.Current.SavedPercent))

	changed := d.Changed()
	if len(changed) == 0 {
		fmt.Fprintln(w, "\nNo file changed.")
		return
	}

	fmt.Fprintf(w, "\nChanged Files (%d):\n", len(changed))
	for _, f := range changed {
		fmt.Fprintf(w, "  %s %s  %s\n", changeMarker(f.Kind), f.Name, describeChange(f))
	}

	if n := d.Count(model.ChangeSame); n > 0 {
		fmt.Fprintf(w, "\nUnchanged: %d files\n", n)
	}
}

// writeComparisonMarkdown writes the comparison in Markdown format.
func writeComparisonMarkdown(w io.Writer, d *model.RunDiff) error {
	md := markdown.NewMarkdown(w).
		H1(fmt.Sprintf("Run Comparison: #%d -> #%d", d.PreviousID, d.CurrentID)).
		H2("Summary").
		Table(markdown.TableSet{
			Header: []string{"Metric", "Previous", "Current", "Change"},
			Rows: [][]string{
				{"Date", d.PreviousStarted.Local().Format(historyDateFormat), d.CurrentStarted.Local().Format(historyDateFormat), "-"},
				{"Files", strconv.Itoa(d.Previous.Files), strconv.Itoa(d.Current.Files), formatDelta(int64(d.Current.Files - d.Previous.Files))},
				{"Failed", strconv.Itoa(d.Previous.Failed), strconv.Itoa(d.Current.Failed), formatDelta(int64(d.Current.Failed - d.Previous.Failed))},
				{"Minified", report.Size(d.Previous.MinifiedBytes), report.Size(d.Current.MinifiedBytes), formatSizeDelta(d.MinifiedDelta())},
				{"Ratio", report.Percent(d.Previous.SavedPercent), report.Percent(d.Current.SavedPercent), "-"},
			},
		})

	changed := d.Changed()
	if len(changed) == 0 {
		md.Note("No file changed.")
		return md.Build()
	}

	rows := make([][]string, 0, len(changed))
	for _, f := range changed {
		rows = append(rows, []string{
			"`"+f.Name+"`",
			string(f.Kind),
			report.Size(f.Previous),
			report.Size(f.Current),
			formatSizeDelta(f.Delta),
		})
	}
	md.H2(fmt.Sprintf("Changed Files (%d)", len(changed))).
		Table(markdown.TableSet{
			Header: []string{"File", "Change", "Previous", "Current", "Delta"},
			Rows:   rows,
		})

	if n := d.Count(model.ChangeSame); n > 0 {
		md.HorizontalRule().PlainTextf("*%d files unchanged*", n)
	}
	return md.Build()
}

// changeMarker returns the one-character marker of a change kind.
func changeMarker(kind model.ChangeKind) string {
	switch kind {
	case model.ChangeAdded:
		return "[+]"
	case model.ChangeRemoved:
		return "[-]"
	case model.ChangeSmaller:
		return "[<]"
	case model.ChangeLarger:
		return "[>]"
	case model.ChangeFailed:
		return "[!]"
	default:
		return "[=]"
	}
}

// describeChange describes a file change for text output.
func describeChange(f model.FileDiff) string {
	switch f.Kind {
	case model.ChangeAdded:
		return fmt.Sprintf("new, %s", report.Size(f.Current))
	case model.ChangeRemoved:
		return fmt.Sprintf("removed, was %s", report.Size(f.Previous))
	case model.ChangeFailed:
		return "failed in the current run"
	default:
		return fmt.Sprintf("%s -> %s (%s)", report.Size(f.Previous), report.Size(f.Current), formatSizeDelta(f.Delta))
	}
}

// formatDelta formats a numeric delta with sign for display.
func formatDelta(delta int64) string {
	if delta > 0 {
		return "+" + strconv.FormatInt(delta, 10)
	}
	return strconv.FormatInt(delta, 10)
}

// formatSizeDelta formats a byte delta with sign for display.
func formatSizeDelta(delta int64) string {
	if delta > 0 {
		return "+" + report.Size(delta)
	}
	return report.Size(delta)
}
