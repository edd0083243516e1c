package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nao1215/svgmin/internal/model"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display: a header, one line per
// file and a totals block. Byte totals are printed with digit grouping
// for the configured language.
type SimpleWriter struct {
	baseWriter

	// showFiles controls whether the per-file section is written.
	showFiles bool

	// printer formats grouped numbers.
	printer *message.Printer
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowFiles configures whether per-file lines are written.
func WithShowFiles(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showFiles = show
	}
}

// WithLanguage sets the language used for digit grouping.
func WithLanguage(tag language.Tag) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.printer = message.NewPrinter(tag)
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		showFiles:  true,
		printer:    message.NewPrinter(language.English),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the report in human-readable format.
func (w *SimpleWriter) Write(report *model.RunReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	if w.showFiles {
		w.writeFiles(&sb, report)
	}
	w.writeSummary(&sb, report)

	return io.WriteString(w.output, sb.String())
}

func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.RunReport) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                           SVGMIN REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "Input:      %s\n", report.InputDir)
	fmt.Fprintf(sb, "Output:     %s\n", report.OutputDir)
	fmt.Fprintf(sb, "Optimizer:  %s\n", report.Optimizer)
	fmt.Fprintf(sb, "Started:    %s\n", report.StartedAt.Format(timeFormat))
	if d := report.Duration(); d > 0 {
		fmt.Fprintf(sb, "Duration:   %s\n", d.Round(time.Millisecond))
	}
	if report.DryRun {
		sb.WriteString("Mode:       dry run (no files written)\n")
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeFiles(sb *strings.Builder, report *model.RunReport) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("FILES\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if len(report.Files) == 0 {
		sb.WriteString("  No files found.\n\n")
		return
	}

	width := 0
	for _, f := range report.Files {
		width = max(width, len(f.Name))
	}
	for _, f := range report.Files {
		fmt.Fprintf(sb, "  %s  %-*s  %s\n", StatusLabel(f.Status), width, f.Name, FileDetail(f))
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeSummary(sb *strings.Builder, report *model.RunReport) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("SUMMARY\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	s := model.NewSummary(report)
	sb.WriteString(w.printer.Sprintf("  Files:      %d (%d succeeded, %d failed, %d skipped)\n",
		s.Files, s.Succeeded, s.Failed, s.Skipped))
	sb.WriteString(w.printer.Sprintf("  Original:   %d bytes (%s)\n", s.OriginalBytes, Size(s.OriginalBytes)))
	sb.WriteString(w.printer.Sprintf("  Minified:   %d bytes (%s)\n", s.MinifiedBytes, Size(s.MinifiedBytes)))
	sb.WriteString(w.printer.Sprintf("  Saved:      %d bytes (%s)\n", s.SavedBytes, Percent(s.SavedPercent)))
	sb.WriteString("\n")

	if failures := report.Failures(); len(failures) > 0 {
		sb.WriteString("  Failed files:\n")
		for _, f := range failures {
			fmt.Fprintf(sb, "    - %s: %s\n", f.Name, f.Error)
		}
		sb.WriteString("\n")
	}
}
