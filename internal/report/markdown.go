package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"github.com/nao1215/svgmin/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// The output is meant for pull request comments and CI job summaries.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *model.RunReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeSummary(md, report)
	w.writeFiles(md, report)
	w.writeFailures(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.RunReport) {
	md.H1("svgmin Report")
	md.PlainText("")

	rows := [][]string{
		{"Input", "`" + report.InputDir + "`"},
		{"Output", "`" + report.OutputDir + "`"},
		{"Optimizer", report.Optimizer},
		{"Started", report.StartedAt.Format(timeFormat)},
	}
	if report.ID > 0 {
		rows = append(rows, []string{"Run", "#" + strconv.FormatInt(report.ID, 10)})
	}
	if report.DryRun {
		rows = append(rows, []string{"Mode", "Dry run"})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, report *model.RunReport) {
	md.H2("Summary")
	md.PlainText("")

	s := model.NewSummary(report)
	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Files", strconv.Itoa(s.Files)},
			{"✅ Succeeded", strconv.Itoa(s.Succeeded)},
			{"❌ Failed", strconv.Itoa(s.Failed)},
			{"⏭️ Skipped", strconv.Itoa(s.Skipped)},
			{"Original size", Size(s.OriginalBytes)},
			{"Minified size", Size(s.MinifiedBytes)},
			{"**Saved**", "**" + Size(s.SavedBytes) + " (" + Percent(s.SavedPercent) + ")**"},
		},
	})
	md.PlainText("")

	if s.SavedBytes > 0 {
		w.writePieChart(md, s)
	}

	w.writeAlert(md, report)
}

// writePieChart writes a mermaid pie chart of saved and remaining bytes.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, s model.Summary) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Size Reduction"),
		piechart.WithShowData(true),
	)

	chart.LabelAndIntValue("Saved", uint64(s.SavedBytes))
	chart.LabelAndIntValue("Remaining", uint64(s.MinifiedBytes))

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, report *model.RunReport) {
	switch {
	case report.HasFailures():
		md.Warningf("%d file(s) could not be optimized. See the failures below.", report.Failed())
	case report.Processed() == 0:
		md.Note("No SVG files were found in the input directory.")
	case report.Saved() == 0:
		md.Importantf("None of the %d file(s) got smaller.", report.Processed())
	case report.DryRun:
		md.Note("Dry run: no files were written.")
	default:
		md.Tip("All files were optimized successfully.")
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writeFiles(md *markdown.Markdown, report *model.RunReport) {
	md.H2("Files")
	md.PlainText("")

	if len(report.Files) == 0 {
		md.PlainText("No files processed.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(report.Files))
	for i, f := range report.Files {
		minified, saved := "-", "-"
		if f.Succeeded() {
			minified = Size(f.MinifiedSize)
			saved = Percent(f.SavedPercent())
		}
		optimizer := f.Optimizer
		if optimizer == "" {
			optimizer = "-"
		}
		rows[i] = []string{
			"`" + f.Name + "`",
			string(f.Status),
			Size(f.OriginalSize),
			minified,
			saved,
			optimizer,
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"File", "Status", "Original", "Minified", "Saved", "Optimizer"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeFailures(md *markdown.Markdown, report *model.RunReport) {
	failures := report.Failures()
	if len(failures) == 0 {
		return
	}

	md.H2("Failures")
	md.PlainText("")
	for _, f := range failures {
		md.Details(f.Name, f.Error)
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [svgmin](https://github.com/nao1215/svgmin)*")
}
