package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate(). Callers use errors.Is()
// to tell them apart.
var (
	// ErrEmptyInputDir is returned when no input directory is configured.
	ErrEmptyInputDir = errors.New("input directory must not be empty")

	// ErrEmptyOutputDir is returned when no output directory is configured.
	ErrEmptyOutputDir = errors.New("output directory must not be empty")

	// ErrSameDirectory is returned when input and output resolve to the
	// same directory. Writing there would overwrite the originals.
	ErrSameDirectory = errors.New("input and output directories must differ")

	// ErrEmptyExtension is returned when the file extension is empty.
	ErrEmptyExtension = errors.New("file extension must not be empty")

	// ErrUnknownOptimizer is returned for optimizer names other than
	// auto, minify and builtin.
	ErrUnknownOptimizer = errors.New("unknown optimizer: use auto, minify or builtin")

	// ErrInvalidPrecision is returned when precision is outside 0..10.
	ErrInvalidPrecision = errors.New("invalid precision: must be between 0 and 10")

	// ErrInvalidJobs is returned when the worker count is not positive.
	ErrInvalidJobs = errors.New("invalid jobs: must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidMaxFileSize is returned when the file size limit is negative.
	ErrInvalidMaxFileSize = errors.New("invalid max file size: must be non-negative")

	// ErrInvalidRule is returned when a rule pattern is malformed or a rule
	// sets an invalid optimizer or precision.
	ErrInvalidRule = errors.New("invalid rule")
)
