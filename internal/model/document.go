package model

import "time"

// Document is a single SVG file being processed. Pipeline steps read and
// modify it in order; it is discarded once its FileResult has been taken.
type Document struct {
	// Name is the file name relative to the input directory.
	Name string

	// SourcePath is the path the document is read from.
	SourcePath string

	// TargetPath is the path the optimized document is written to.
	TargetPath string

	// Source holds the original bytes after the read step.
	Source []byte

	// Output holds the optimized bytes after the optimize step.
	Output []byte

	// Optimizer is the name of the strategy that produced Output.
	Optimizer string

	// Unchanged is set when optimization did not reduce the size and the
	// original bytes were kept.
	Unchanged bool

	// SkipReason is set when the document was excluded by a rule.
	SkipReason string

	// PerformedSteps lists the pipeline steps that ran, in order.
	PerformedSteps []string

	// Error is the first step error, if any.
	Error error

	// StartedAt is when processing began.
	StartedAt time.Time

	// Elapsed is the total processing time.
	Elapsed time.Duration
}

// NewDocument creates a Document for the given file.
func NewDocument(name, sourcePath, targetPath string) *Document {
	return &Document{
		Name:           name,
		SourcePath:     sourcePath,
		TargetPath:     targetPath,
		PerformedSteps: make([]string, 0),
	}
}

// Skip marks the document as excluded from processing.
func (d *Document) Skip(reason string) {
	d.SkipReason = reason
}

// Skipped reports whether the document was excluded by a rule.
func (d *Document) Skipped() bool {
	return d.SkipReason != ""
}

// Result converts the document into its processing record.
func (d *Document) Result() FileResult {
	r := FileResult{
		Name:         d.Name,
		OriginalSize: int64(len(d.Source)),
		MinifiedSize: int64(len(d.Output)),
		Optimizer:    d.Optimizer,
		Elapsed:      d.Elapsed,
	}

	switch {
	case d.Skipped():
		r.Status = StatusSkipped
		r.Error = d.SkipReason
		r.MinifiedSize = r.OriginalSize
	case d.Error != nil:
		r.Status = StatusFailed
		r.Error = d.Error.Error()
		r.MinifiedSize = 0
	case d.Unchanged:
		r.Status = StatusUnchanged
	default:
		r.Status = StatusOptimized
	}
	return r
}
