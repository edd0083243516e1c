package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// intPtr returns a pointer to v.
func intPtr(v int) *int { return &v }

// TestNewConfig verifies that NewConfig returns a Config with all expected default values.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("default directories are svg and svg-min", func(t *testing.T) {
		t.Parallel()
		if cfg.InputDir != "svg" || cfg.OutputDir != "svg-min" {
			t.Errorf("unexpected directories %q, %q", cfg.InputDir, cfg.OutputDir)
		}
	})

	t.Run("default extension is .svg", func(t *testing.T) {
		t.Parallel()
		if cfg.Extension != ".svg" {
			t.Errorf("expected .svg, got %q", cfg.Extension)
		}
	})

	t.Run("default optimizer is auto with precision 3", func(t *testing.T) {
		t.Parallel()
		if cfg.Optimizer != "auto" {
			t.Errorf("expected auto, got %q", cfg.Optimizer)
		}
		if cfg.Precision != 3 {
			t.Errorf("expected precision 3, got %d", cfg.Precision)
		}
	})

	t.Run("processing is sequential by default", func(t *testing.T) {
		t.Parallel()
		if cfg.Jobs != 1 {
			t.Errorf("expected 1 job, got %d", cfg.Jobs)
		}
	})

	t.Run("history is saved under the XDG data dir", func(t *testing.T) {
		t.Parallel()
		if !cfg.SaveHistory {
			t.Error("expected SaveHistory to be true")
		}
		if cfg.DBDir != XDGDataDir() {
			t.Errorf("expected %q, got %q", XDGDataDir(), cfg.DBDir)
		}
	})

	t.Run("defaults are valid", func(t *testing.T) {
		t.Parallel()
		if err := cfg.Validate(); err != nil {
			t.Errorf("expected valid defaults, got %v", err)
		}
	})
}

// TestConfigValidate tests configuration validation.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		modify  func(c *Config)
		wantErr error
	}{
		{name: "empty input", modify: func(c *Config) { c.InputDir = "" }, wantErr: ErrEmptyInputDir},
		{name: "empty output", modify: func(c *Config) { c.OutputDir = "" }, wantErr: ErrEmptyOutputDir},
		{name: "same directory", modify: func(c *Config) { c.OutputDir = "./svg/" }, wantErr: ErrSameDirectory},
		{name: "empty extension", modify: func(c *Config) { c.Extension = "" }, wantErr: ErrEmptyExtension},
		{name: "unknown optimizer", modify: func(c *Config) { c.Optimizer = "scour" }, wantErr: ErrUnknownOptimizer},
		{name: "negative precision", modify: func(c *Config) { c.Precision = -1 }, wantErr: ErrInvalidPrecision},
		{name: "precision too high", modify: func(c *Config) { c.Precision = 11 }, wantErr: ErrInvalidPrecision},
		{name: "zero jobs", modify: func(c *Config) { c.Jobs = 0 }, wantErr: ErrInvalidJobs},
		{
			name:    "json and markdown",
			modify:  func(c *Config) { c.JSONReport, c.MarkdownReport = true, true },
			wantErr: ErrConflictingReportFormats,
		},
		{name: "negative max file size", modify: func(c *Config) { c.MaxFileSize = -1 }, wantErr: ErrInvalidMaxFileSize},
		{
			name: "malformed rule pattern",
			modify: func(c *Config) {
				c.File = &File{Rules: map[string]Rule{"[": {Skip: true}}}
			},
			wantErr: ErrInvalidRule,
		},
		{
			name: "rule with unknown optimizer",
			modify: func(c *Config) {
				c.File = &File{Rules: map[string]Rule{"*.svg": {Optimizer: "svgo"}}}
			},
			wantErr: ErrUnknownOptimizer,
		},
		{
			name: "rule with invalid precision",
			modify: func(c *Config) {
				c.File = &File{Rules: map[string]Rule{"icon-*": {Precision: intPtr(42)}}}
			},
			wantErr: ErrInvalidPrecision,
		},
		{name: "builtin optimizer is valid", modify: func(c *Config) { c.Optimizer = "builtin" }},
		{name: "zero precision is valid", modify: func(c *Config) { c.Precision = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := NewConfig()
			tt.modify(cfg)
			err := cfg.Validate()

			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

// TestConfigApplyFile tests merging configuration file values.
func TestConfigApplyFile(t *testing.T) {
	t.Parallel()

	t.Run("nil file keeps defaults", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.ApplyFile(nil)

		if cfg.File != nil || cfg.InputDir != DefaultInputDir {
			t.Errorf("unexpected config %v", cfg)
		}
	})

	t.Run("set values override defaults", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		f := &File{
			Input:     "assets/icons",
			Output:    "public/icons",
			Extension: ".SVG",
			Optimizer: "builtin",
			Precision: intPtr(0),
			Jobs:      4,
		}
		cfg.ApplyFile(f)

		if cfg.InputDir != "assets/icons" || cfg.OutputDir != "public/icons" {
			t.Errorf("unexpected directories %q, %q", cfg.InputDir, cfg.OutputDir)
		}
		if cfg.Extension != ".SVG" || cfg.Optimizer != "builtin" {
			t.Errorf("unexpected extension/optimizer %q, %q", cfg.Extension, cfg.Optimizer)
		}
		if cfg.Precision != 0 {
			t.Errorf("expected explicit precision 0, got %d", cfg.Precision)
		}
		if cfg.Jobs != 4 {
			t.Errorf("expected 4 jobs, got %d", cfg.Jobs)
		}
		if cfg.File != f {
			t.Error("expected file to be kept")
		}
	})

	t.Run("unset values keep defaults", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.ApplyFile(&File{Output: "dist"})

		if cfg.InputDir != DefaultInputDir || cfg.Precision != DefaultPrecision || cfg.Jobs != DefaultJobs {
			t.Errorf("unexpected config %v", cfg)
		}
	})
}

// TestConfigSettingsFor tests per-file rule resolution.
func TestConfigSettingsFor(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()
	cfg.ApplyFile(&File{
		Rules: map[string]Rule{
			"*.svg":         {Precision: intPtr(2)},
			"icon-*.svg":    {Optimizer: "builtin", Precision: intPtr(1)},
			"logo.svg":      {Skip: true},
			"vendor-?*.svg": {Skip: true},
		},
	})

	tests := []struct {
		name string
		file string
		want FileSettings
	}{
		{
			name: "exact name wins",
			file: "logo.svg",
			want: FileSettings{Optimizer: "auto", Precision: 3, Skip: true, Rule: "logo.svg"},
		},
		{
			name: "longest pattern wins",
			file: "icon-home.svg",
			want: FileSettings{Optimizer: "builtin", Precision: 1, Rule: "icon-*.svg"},
		},
		{
			name: "catch-all pattern",
			file: "hero.svg",
			want: FileSettings{Optimizer: "auto", Precision: 2, Rule: "*.svg"},
		},
		{
			name: "skip rule",
			file: "vendor-chart.svg",
			want: FileSettings{Optimizer: "auto", Precision: 3, Skip: true, Rule: "vendor-?*.svg"},
		},
		{
			name: "no match uses defaults",
			file: "hero.SVG",
			want: FileSettings{Optimizer: "auto", Precision: 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := cfg.SettingsFor(tt.file); got != tt.want {
				t.Errorf("SettingsFor(%q) = %+v, want %+v", tt.file, got, tt.want)
			}
		})
	}

	t.Run("without configuration file", func(t *testing.T) {
		t.Parallel()

		got := NewConfig().SettingsFor("a.svg")
		want := FileSettings{Optimizer: "auto", Precision: 3}
		if got != want {
			t.Errorf("got %+v, want %+v", got, want)
		}
	})
}

// TestLoadConfigFile tests the LoadConfigFile function.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	write := func(t *testing.T, content string) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), ".svgmin")
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}
		return path
	}

	t.Run("returns ErrConfigNotFound for non-existent file", func(t *testing.T) {
		t.Parallel()

		cfg, err := LoadConfigFile("/nonexistent/path/.svgmin")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Fatalf("expected ErrConfigNotFound, got: %v", err)
		}
		if cfg != nil {
			t.Error("expected nil config when file not found")
		}
	})

	t.Run("loads valid YAML config", func(t *testing.T) {
		t.Parallel()

		path := write(t, `input: assets
output: dist
optimizer: builtin
precision: 2
jobs: 4
rules:
  "icon-*.svg":
    precision: 1
  "animated.svg":
    optimizer: builtin
  "third-party-*.svg":
    skip: true
`)

		cf, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cf.Input != "assets" || cf.Output != "dist" || cf.Optimizer != "builtin" {
			t.Errorf("unexpected file %+v", cf)
		}
		if cf.Precision == nil || *cf.Precision != 2 {
			t.Errorf("expected precision 2, got %v", cf.Precision)
		}
		if cf.Jobs != 4 {
			t.Errorf("expected 4 jobs, got %d", cf.Jobs)
		}
		if len(cf.Rules) != 3 {
			t.Fatalf("expected 3 rules, got %d", len(cf.Rules))
		}
		if r := cf.Rules["icon-*.svg"]; r.Precision == nil || *r.Precision != 1 {
			t.Errorf("unexpected icon rule %+v", r)
		}
		if !cf.Rules["third-party-*.svg"].Skip {
			t.Error("expected skip rule")
		}
	})

	t.Run("rejects unknown keys", func(t *testing.T) {
		t.Parallel()

		path := write(t, "inptu: assets\n")
		if _, err := LoadConfigFile(path); err == nil {
			t.Error("expected error for unknown key")
		}
	})

	t.Run("returns error for invalid YAML", func(t *testing.T) {
		t.Parallel()

		path := write(t, `invalid: yaml: content: [}`)
		if _, err := LoadConfigFile(path); err == nil {
			t.Error("expected error for invalid YAML")
		}
	})

	t.Run("empty file is valid", func(t *testing.T) {
		t.Parallel()

		cf, err := LoadConfigFile(write(t, ""))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cf.Rules == nil {
			t.Error("expected Rules map to be initialized")
		}
	})
}

// TestFindConfigFile tests the FindConfigFile function.
func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns explicit path if exists", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), "custom.yaml")
		if err := os.WriteFile(configPath, []byte("jobs: 2\n"), 0o600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		if result := FindConfigFile(configPath); result != configPath {
			t.Errorf("expected %q, got %q", configPath, result)
		}
	})

	t.Run("returns empty for non-existent explicit path", func(t *testing.T) {
		t.Parallel()

		if result := FindConfigFile("/nonexistent/path/config.yaml"); result != "" {
			t.Errorf("expected empty string, got %q", result)
		}
	})

	t.Run("search result is a config file name", func(t *testing.T) {
		t.Parallel()

		// Depends on the machine; only check the shape of a hit.
		result := FindConfigFile("")
		if result != "" && !strings.HasSuffix(result, DefaultConfigFile) && !strings.HasSuffix(result, xdgConfigFile) {
			t.Errorf("unexpected config path %q", result)
		}
	})
}

// TestXDGDirs tests XDG directory functions.
func TestXDGDirs(t *testing.T) {
	t.Parallel()

	for name, dir := range map[string]string{"data": XDGDataDir(), "config": XDGConfigDir()} {
		if filepath.Base(dir) != AppName {
			t.Errorf("expected %s dir to end with %q, got %q", name, AppName, dir)
		}
	}
}
