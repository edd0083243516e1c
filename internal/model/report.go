package model

import "time"

// RunReport is the result of one batch run.
// Files are kept in discovery order regardless of how many workers ran.
type RunReport struct {
	// ID is the run history identifier; zero until the run is saved.
	ID int64 `json:"id,omitempty"`

	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`

	// FinishedAt is when the last file completed.
	FinishedAt time.Time `json:"finished_at"`

	// InputDir is the directory the SVG files were read from.
	InputDir string `json:"input_dir"`

	// OutputDir is the directory the minified files were written to.
	OutputDir string `json:"output_dir"`

	// Optimizer is the default strategy of the run. Individual files may
	// have used another one through rules or verification fallback.
	Optimizer string `json:"optimizer"`

	// DryRun is true when no files were written.
	DryRun bool `json:"dry_run,omitempty"`

	// Files holds one record per discovered file.
	Files []FileResult `json:"files"`
}

// NewRunReport creates a RunReport stamped with the current time.
func NewRunReport(inputDir, outputDir, optimizer string) *RunReport {
	return &RunReport{
		StartedAt: time.Now(),
		InputDir:  inputDir,
		OutputDir: outputDir,
		Optimizer: optimizer,
		Files:     make([]FileResult, 0),
	}
}

// Add appends a file record.
func (r *RunReport) Add(result FileResult) {
	r.Files = append(r.Files, result)
}

// Finish stamps the completion time.
func (r *RunReport) Finish() {
	r.FinishedAt = time.Now()
}

// Duration returns the wall-clock time of the run.
func (r *RunReport) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Processed returns the number of files that were not skipped.
func (r *RunReport) Processed() int {
	return len(r.Files) - r.count(StatusSkipped)
}

// Succeeded returns the number of files written.
func (r *RunReport) Succeeded() int {
	return r.count(StatusOptimized) + r.count(StatusUnchanged)
}

// Failed returns the number of files that failed.
func (r *RunReport) Failed() int {
	return r.count(StatusFailed)
}

// Skipped returns the number of files excluded by rules.
func (r *RunReport) Skipped() int {
	return r.count(StatusSkipped)
}

func (r *RunReport) count(status FileStatus) int {
	n := 0
	for _, f := range r.Files {
		if f.Status == status {
			n++
		}
	}
	return n
}

// TotalOriginal returns the input bytes of all successful files.
func (r *RunReport) TotalOriginal() int64 {
	var total int64
	for _, f := range r.Files {
		if f.Succeeded() {
			total += f.OriginalSize
		}
	}
	return total
}

// TotalMinified returns the output bytes of all successful files.
func (r *RunReport) TotalMinified() int64 {
	var total int64
	for _, f := range r.Files {
		if f.Succeeded() {
			total += f.MinifiedSize
		}
	}
	return total
}

// Saved returns the total number of bytes saved.
func (r *RunReport) Saved() int64 {
	return r.TotalOriginal() - r.TotalMinified()
}

// SavedPercent returns the total percentage saved.
func (r *RunReport) SavedPercent() float64 {
	return CompressionRatio(r.TotalOriginal(), r.TotalMinified())
}

// Failures returns the records of failed files.
func (r *RunReport) Failures() []FileResult {
	var failed []FileResult
	for _, f := range r.Files {
		if f.Status == StatusFailed {
			failed = append(failed, f)
		}
	}
	return failed
}

// HasFailures reports whether any file failed.
func (r *RunReport) HasFailures() bool {
	return r.Failed() > 0
}

// File returns the record with the given name.
func (r *RunReport) File(name string) (FileResult, bool) {
	for _, f := range r.Files {
		if f.Name == name {
			return f, true
		}
	}
	return FileResult{}, false
}
