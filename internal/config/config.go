package config

import (
	"fmt"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/nao1215/svgmin/internal/optimizer"
)

// Default configuration values.
const (
	// DefaultInputDir is the directory SVG files are read from.
	DefaultInputDir = "svg"

	// DefaultOutputDir is the directory minified copies are written to.
	DefaultOutputDir = "svg-min"

	// DefaultExtension selects the files processed in the input directory.
	DefaultExtension = ".svg"

	// DefaultOptimizer picks the external optimizer when compiled in and
	// the built-in one otherwise.
	DefaultOptimizer = optimizer.NameAuto

	// DefaultPrecision is the number of decimal places kept in numbers.
	DefaultPrecision = optimizer.DefaultPrecision

	// DefaultJobs keeps processing sequential.
	DefaultJobs = 1

	// DefaultMaxFileSize is the largest SVG file read (64 MiB).
	DefaultMaxFileSize int64 = 64 << 20

	// AppName is the application name used for XDG directory paths.
	AppName = "svgmin"
)

// Config holds all configuration options of a run.
// It is built once by the CLI and passed explicitly; there is no global
// configuration state.
type Config struct {
	// InputDir is the directory SVG files are read from. It is created
	// when missing, which yields an empty run.
	InputDir string

	// OutputDir is the directory minified copies are written to, created
	// if absent. It must not resolve to InputDir.
	OutputDir string

	// Extension selects files by case-insensitive suffix.
	Extension string

	// Optimizer is the strategy name: auto, minify or builtin.
	Optimizer string

	// Precision is the number of decimal places kept in numbers.
	Precision int

	// Jobs is the number of files processed at once. 1 is sequential.
	Jobs int

	// MaxFileSize is the largest input file read, in bytes.
	// 0 means DefaultMaxFileSize.
	MaxFileSize int64

	// ConfigFilePath is the path to the configuration file.
	// If empty, FindConfigFile searches the default locations.
	ConfigFilePath string

	// File holds the loaded configuration file, including per-file rules.
	// Nil when no file was found.
	File *File

	// JSONReport enables JSON report output instead of human-readable format.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown report output instead of human-readable format.
	// Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report.
	// When set, the report is written to this file instead of stdout.
	ReportFile string

	// DBDir is the directory of the run history database.
	DBDir string

	// SaveHistory records the run in the history database.
	SaveHistory bool

	// DryRun optimizes and reports without writing output files.
	DryRun bool

	// Verbose enables debug log output.
	Verbose bool

	// NoColor disables colored progress output.
	NoColor bool
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		InputDir:    DefaultInputDir,
		OutputDir:   DefaultOutputDir,
		Extension:   DefaultExtension,
		Optimizer:   DefaultOptimizer,
		Precision:   DefaultPrecision,
		Jobs:        DefaultJobs,
		MaxFileSize: DefaultMaxFileSize,
		DBDir:       XDGDataDir(),
		SaveHistory: true,
	}
}

// XDGDataDir returns the XDG data directory for svgmin.
// On Linux: ~/.local/share/svgmin
// On macOS: ~/Library/Application Support/svgmin
// On Windows: %LOCALAPPDATA%\svgmin
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for svgmin.
// On Linux: ~/.config/svgmin
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// ApplyFile copies the values set in f over c. Zero values in f leave
// c unchanged. f is also kept as c.File for rule lookups.
func (c *Config) ApplyFile(f *File) {
	if f == nil {
		return
	}
	c.File = f

	if f.Input != "" {
		c.InputDir = f.Input
	}
	if f.Output != "" {
		c.OutputDir = f.Output
	}
	if f.Extension != "" {
		c.Extension = f.Extension
	}
	if f.Optimizer != "" {
		c.Optimizer = f.Optimizer
	}
	if f.Precision != nil {
		c.Precision = *f.Precision
	}
	if f.Jobs != 0 {
		c.Jobs = f.Jobs
	}
}

// Validate checks if the configuration is valid.
// It returns the first error found.
func (c *Config) Validate() error {
	if c.InputDir == "" {
		return ErrEmptyInputDir
	}
	if c.OutputDir == "" {
		return ErrEmptyOutputDir
	}
	if sameDir(c.InputDir, c.OutputDir) {
		return ErrSameDirectory
	}
	if c.Extension == "" {
		return ErrEmptyExtension
	}
	if !optimizer.ValidName(c.Optimizer) {
		return ErrUnknownOptimizer
	}
	if !validPrecision(c.Precision) {
		return ErrInvalidPrecision
	}
	if c.Jobs <= 0 {
		return ErrInvalidJobs
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	if c.MaxFileSize < 0 {
		return ErrInvalidMaxFileSize
	}
	if c.File != nil {
		if err := c.File.validateRules(); err != nil {
			return err
		}
	}
	return nil
}

// FileSettings are the effective settings for one input file.
type FileSettings struct {
	// Optimizer is the strategy name for the file.
	Optimizer string

	// Precision is the number of decimal places kept in numbers.
	Precision int

	// Skip excludes the file from processing.
	Skip bool

	// Rule is the matching rule pattern, empty when defaults apply.
	Rule string
}

// SettingsFor returns the settings for the file name, applying the
// matching rule of the configuration file over the run defaults.
func (c *Config) SettingsFor(name string) FileSettings {
	s := FileSettings{
		Optimizer: c.Optimizer,
		Precision: c.Precision,
	}
	if c.File == nil {
		return s
	}

	pattern, rule, ok := c.File.RuleFor(name)
	if !ok {
		return s
	}
	s.Rule = pattern
	s.Skip = rule.Skip
	if rule.Optimizer != "" {
		s.Optimizer = rule.Optimizer
	}
	if rule.Precision != nil {
		s.Precision = *rule.Precision
	}
	return s
}

func validPrecision(p int) bool {
	return p >= 0 && p <= optimizer.MaxPrecision
}

// sameDir reports whether a and b resolve to the same directory.
func sameDir(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	if absA == absB {
		return true
	}
	// Symlinked directories only resolve when they exist.
	realA, errA := filepath.EvalSymlinks(absA)
	realB, errB := filepath.EvalSymlinks(absB)
	return errA == nil && errB == nil && realA == realB
}

// String returns a one-line description used in debug logs.
func (c *Config) String() string {
	return fmt.Sprintf("input=%s output=%s optimizer=%s precision=%d jobs=%d dry_run=%v",
		c.InputDir, c.OutputDir, c.Optimizer, c.Precision, c.Jobs, c.DryRun)
}
