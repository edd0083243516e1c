package config

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/nao1215/svgmin/internal/optimizer"
)

// Rule overrides the run settings for files matching a glob pattern.
type Rule struct {
	// Optimizer overrides the strategy for matching files.
	Optimizer string `yaml:"optimizer,omitempty"`

	// Precision overrides the number of decimal places.
	// A pointer so that an explicit 0 can be told apart from unset.
	Precision *int `yaml:"precision,omitempty"`

	// Skip excludes matching files. They are reported as skipped.
	Skip bool `yaml:"skip,omitempty"`
}

// File represents the structure of the .svgmin configuration file.
type File struct {
	// Input is the input directory.
	Input string `yaml:"input,omitempty"`

	// Output is the output directory.
	Output string `yaml:"output,omitempty"`

	// Extension selects the processed files.
	Extension string `yaml:"extension,omitempty"`

	// Optimizer is the default strategy.
	Optimizer string `yaml:"optimizer,omitempty"`

	// Precision is the default number of decimal places.
	Precision *int `yaml:"precision,omitempty"`

	// Jobs is the number of files processed at once.
	Jobs int `yaml:"jobs,omitempty"`

	// Rules maps glob patterns (path.Match syntax, matched against the
	// file name) to per-file overrides.
	Rules map[string]Rule `yaml:"rules,omitempty"`
}

// RuleFor returns the rule that applies to the file name.
// An exact name match wins; otherwise the longest matching pattern is
// used, with ties broken alphabetically.
func (f *File) RuleFor(name string) (pattern string, rule Rule, ok bool) {
	if r, found := f.Rules[name]; found {
		return name, r, true
	}
	for _, p := range f.sortedPatterns() {
		if matched, err := filepath.Match(p, name); err == nil && matched {
			return p, f.Rules[p], true
		}
	}
	return "", Rule{}, false
}

// sortedPatterns returns the rule patterns longest first.
func (f *File) sortedPatterns() []string {
	patterns := make([]string, 0, len(f.Rules))
	for p := range f.Rules {
		patterns = append(patterns, p)
	}
	sort.Slice(patterns, func(i, j int) bool {
		if len(patterns[i]) != len(patterns[j]) {
			return len(patterns[i]) > len(patterns[j])
		}
		return patterns[i] < patterns[j]
	})
	return patterns
}

func (f *File) validateRules() error {
	for _, p := range f.sortedPatterns() {
		rule := f.Rules[p]
		if _, err := filepath.Match(p, ""); err != nil {
			return fmt.Errorf("%w %q: %w", ErrInvalidRule, p, err)
		}
		if rule.Optimizer != "" && !optimizer.ValidName(rule.Optimizer) {
			return fmt.Errorf("%w %q: %w", ErrInvalidRule, p, ErrUnknownOptimizer)
		}
		if rule.Precision != nil && !validPrecision(*rule.Precision) {
			return fmt.Errorf("%w %q: %w", ErrInvalidRule, p, ErrInvalidPrecision)
		}
	}
	return nil
}
