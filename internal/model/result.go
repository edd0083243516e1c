package model

import (
	"math"
	"time"
)

// FileStatus is the outcome of processing one file.
type FileStatus string

const (
	// StatusOptimized means a smaller copy was written.
	StatusOptimized FileStatus = "optimized"

	// StatusUnchanged means optimization did not help and the original
	// bytes were written instead.
	StatusUnchanged FileStatus = "unchanged"

	// StatusSkipped means a configuration rule excluded the file.
	StatusSkipped FileStatus = "skipped"

	// StatusFailed means the file could not be read, optimized or written.
	StatusFailed FileStatus = "failed"
)

// FileResult is the processing record of a single file.
type FileResult struct {
	// Name is the file name relative to the input directory.
	Name string `json:"name"`

	// OriginalSize is the input size in bytes.
	OriginalSize int64 `json:"original_size"`

	// MinifiedSize is the output size in bytes.
	MinifiedSize int64 `json:"minified_size"`

	// Optimizer is the strategy that produced the output.
	Optimizer string `json:"optimizer,omitempty"`

	// Status is the processing outcome.
	Status FileStatus `json:"status"`

	// Error holds the failure or skip reason.
	Error string `json:"error,omitempty"`

	// Elapsed is the processing time.
	Elapsed time.Duration `json:"elapsed"`
}

// Succeeded reports whether an output file was produced.
func (r FileResult) Succeeded() bool {
	return r.Status == StatusOptimized || r.Status == StatusUnchanged
}

// Saved returns the number of bytes saved.
func (r FileResult) Saved() int64 {
	if !r.Succeeded() {
		return 0
	}
	return r.OriginalSize - r.MinifiedSize
}

// SavedPercent returns the percentage of bytes saved.
func (r FileResult) SavedPercent() float64 {
	if !r.Succeeded() {
		return 0
	}
	return CompressionRatio(r.OriginalSize, r.MinifiedSize)
}

// CompressionRatio returns (1 - compressed/original) * 100 rounded to two
// decimal places. A zero original size yields 0.
func CompressionRatio(original, compressed int64) float64 {
	if original <= 0 {
		return 0
	}
	ratio := (1 - float64(compressed)/float64(original)) * 100
	return math.Round(ratio*100) / 100
}
