package pipeline

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nao1215/svgmin/internal/model"
	"github.com/nao1215/svgmin/internal/optimizer"
)

const sampleSVG = `<svg xmlns="http://www.w3.org/2000/svg" id="logo">
  <!-- shape -->
  <circle class="dot" cx="10.00000" cy="10.12345" r="5.0"/>
</svg>
`

// stubOptimizer returns a fixed output.
type stubOptimizer struct {
	name string
	out  []byte
	err  error
}

func (s *stubOptimizer) Optimize([]byte) ([]byte, error) { return s.out, s.err }
func (s *stubOptimizer) Name() string                    { return s.name }

// writeFile creates a file under dir and returns its path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

// TestReadStep tests loading source files.
func TestReadStep(t *testing.T) {
	t.Parallel()

	t.Run("reads file content", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := writeFile(t, dir, "a.svg", sampleSVG)
		doc := model.NewDocument("a.svg", path, "")

		if err := NewReadStep().Do(context.Background(), doc); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(doc.Source) != sampleSVG {
			t.Errorf("unexpected source %q", doc.Source)
		}
	})

	t.Run("missing file fails", func(t *testing.T) {
		t.Parallel()

		doc := model.NewDocument("a.svg", filepath.Join(t.TempDir(), "a.svg"), "")
		err := NewReadStep().Do(context.Background(), doc)
		if !errors.Is(err, os.ErrNotExist) {
			t.Errorf("expected os.ErrNotExist, got %v", err)
		}
	})

	t.Run("rejects files over the size limit", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := writeFile(t, dir, "big.svg", strings.Repeat("x", 32))
		doc := model.NewDocument("big.svg", path, "")

		err := NewReadStep(WithReadMaxSize(16)).Do(context.Background(), doc)
		if !errors.Is(err, ErrFileTooLarge) {
			t.Errorf("expected ErrFileTooLarge, got %v", err)
		}
	})

	t.Run("non-positive limit keeps default", func(t *testing.T) {
		t.Parallel()

		if s := NewReadStep(WithReadMaxSize(0)); s.maxSize != DefaultMaxFileSize {
			t.Errorf("expected %d, got %d", DefaultMaxFileSize, s.maxSize)
		}
	})
}

// TestOptimizeStep tests running the optimizer strategy.
func TestOptimizeStep(t *testing.T) {
	t.Parallel()

	t.Run("stores output and optimizer name", func(t *testing.T) {
		t.Parallel()

		doc := model.NewDocument("a.svg", "", "")
		doc.Source = []byte(sampleSVG)

		step := NewOptimizeStep(optimizer.NewBuiltin(optimizer.Options{Precision: 3}))
		if err := step.Do(context.Background(), doc); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if doc.Optimizer != optimizer.NameBuiltin {
			t.Errorf("expected %q, got %q", optimizer.NameBuiltin, doc.Optimizer)
		}
		if len(doc.Output) >= len(doc.Source) {
			t.Errorf("expected smaller output, got %q", doc.Output)
		}
	})

	t.Run("wraps optimizer errors", func(t *testing.T) {
		t.Parallel()

		doc := model.NewDocument("a.txt", "", "")
		doc.Source = []byte("not svg")

		step := NewOptimizeStep(optimizer.NewBuiltin(optimizer.Options{}))
		err := step.Do(context.Background(), doc)
		if !errors.Is(err, optimizer.ErrNotSVG) {
			t.Errorf("expected ErrNotSVG, got %v", err)
		}
		if !strings.Contains(err.Error(), "a.txt") {
			t.Errorf("expected file name in error, got %v", err)
		}
	})
}

// TestVerifyStep tests attribute loss detection.
func TestVerifyStep(t *testing.T) {
	t.Parallel()

	lossy := []byte(`<svg><circle r="5"/></svg>`)

	t.Run("passes when attributes are kept", func(t *testing.T) {
		t.Parallel()

		doc := model.NewDocument("a.svg", "", "")
		doc.Source = []byte(sampleSVG)
		doc.Output = []byte(`<svg id="logo"><circle class="dot" r="5"/></svg>`)

		if err := NewVerifyStep().Do(context.Background(), doc); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("fails without fallback", func(t *testing.T) {
		t.Parallel()

		doc := model.NewDocument("a.svg", "", "")
		doc.Source = []byte(sampleSVG)
		doc.Output = lossy
		doc.Optimizer = optimizer.NameMinify

		err := NewVerifyStep(WithVerifyLogger(discardLogger())).Do(context.Background(), doc)
		if !errors.Is(err, ErrAttributeLost) {
			t.Fatalf("expected ErrAttributeLost, got %v", err)
		}
		if !strings.Contains(err.Error(), "id=logo") {
			t.Errorf("expected missing attribute in error, got %v", err)
		}
	})

	t.Run("retries with fallback", func(t *testing.T) {
		t.Parallel()

		doc := model.NewDocument("a.svg", "", "")
		doc.Source = []byte(sampleSVG)
		doc.Output = lossy
		doc.Optimizer = optimizer.NameMinify

		step := NewVerifyStep(
			WithVerifyFallback(optimizer.NewBuiltin(optimizer.Options{Precision: 3})),
			WithVerifyLogger(discardLogger()),
		)
		if err := step.Do(context.Background(), doc); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if doc.Optimizer != optimizer.NameBuiltin {
			t.Errorf("expected fallback optimizer, got %q", doc.Optimizer)
		}
		if missing := optimizer.Missing(doc.Source, doc.Output); len(missing) != 0 {
			t.Errorf("expected no missing attributes, got %v", missing)
		}
	})

	t.Run("does not retry the same strategy", func(t *testing.T) {
		t.Parallel()

		doc := model.NewDocument("a.svg", "", "")
		doc.Source = []byte(sampleSVG)
		doc.Output = lossy
		doc.Optimizer = "stub"

		step := NewVerifyStep(
			WithVerifyFallback(&stubOptimizer{name: "stub", out: []byte(sampleSVG)}),
			WithVerifyLogger(discardLogger()),
		)
		if err := step.Do(context.Background(), doc); !errors.Is(err, ErrAttributeLost) {
			t.Errorf("expected ErrAttributeLost, got %v", err)
		}
	})

	t.Run("fails when fallback loses attributes too", func(t *testing.T) {
		t.Parallel()

		doc := model.NewDocument("a.svg", "", "")
		doc.Source = []byte(sampleSVG)
		doc.Output = lossy
		doc.Optimizer = optimizer.NameMinify

		step := NewVerifyStep(
			WithVerifyFallback(&stubOptimizer{name: "stub", out: lossy}),
			WithVerifyLogger(discardLogger()),
		)
		if err := step.Do(context.Background(), doc); !errors.Is(err, ErrAttributeLost) {
			t.Errorf("expected ErrAttributeLost, got %v", err)
		}
		if doc.Optimizer != optimizer.NameMinify {
			t.Errorf("optimizer must not change on failure, got %q", doc.Optimizer)
		}
	})
}

// TestGuardStep tests the size guard.
func TestGuardStep(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		source        string
		output        string
		wantOutput    string
		wantUnchanged bool
	}{
		{name: "smaller output is kept", source: "<svg> </svg>", output: "<svg></svg>", wantOutput: "<svg></svg>"},
		{name: "larger output is replaced", source: "<svg/>", output: "<svg></svg>", wantOutput: "<svg/>", wantUnchanged: true},
		{name: "identical output is unchanged", source: "<svg/>", output: "<svg/>", wantOutput: "<svg/>", wantUnchanged: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			doc := model.NewDocument("a.svg", "", "")
			doc.Source = []byte(tt.source)
			doc.Output = []byte(tt.output)

			if err := NewGuardStep().Do(context.Background(), doc); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(doc.Output) != tt.wantOutput {
				t.Errorf("output = %q, want %q", doc.Output, tt.wantOutput)
			}
			if doc.Unchanged != tt.wantUnchanged {
				t.Errorf("unchanged = %v, want %v", doc.Unchanged, tt.wantUnchanged)
			}
		})
	}
}

// TestWriteStep tests writing output files.
func TestWriteStep(t *testing.T) {
	t.Parallel()

	t.Run("creates directory and writes output", func(t *testing.T) {
		t.Parallel()

		target := filepath.Join(t.TempDir(), "nested", "a.svg")
		doc := model.NewDocument("a.svg", "", target)
		doc.Output = []byte("<svg/>")

		if err := NewWriteStep().Do(context.Background(), doc); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got, err := os.ReadFile(target)
		if err != nil {
			t.Fatalf("failed to read output: %v", err)
		}
		if string(got) != "<svg/>" {
			t.Errorf("unexpected output %q", got)
		}
	})

	t.Run("truncates existing file", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		target := writeFile(t, dir, "a.svg", strings.Repeat("old content ", 20))
		doc := model.NewDocument("a.svg", "", target)
		doc.Output = []byte("<svg/>")

		if err := NewWriteStep().Do(context.Background(), doc); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got, err := os.ReadFile(target)
		if err != nil {
			t.Fatalf("failed to read output: %v", err)
		}
		if string(got) != "<svg/>" {
			t.Errorf("unexpected output %q", got)
		}
	})

	t.Run("dry run writes nothing", func(t *testing.T) {
		t.Parallel()

		target := filepath.Join(t.TempDir(), "a.svg")
		doc := model.NewDocument("a.svg", "", target)
		doc.Output = []byte("<svg/>")

		if err := NewWriteStep(WithWriteDryRun(true)).Do(context.Background(), doc); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := os.Stat(target); !errors.Is(err, os.ErrNotExist) {
			t.Errorf("expected no file, got %v", err)
		}
	})

	t.Run("fails when target is a directory", func(t *testing.T) {
		t.Parallel()

		target := t.TempDir()
		doc := model.NewDocument("a.svg", "", target)
		doc.Output = []byte("<svg/>")

		if err := NewWriteStep().Do(context.Background(), doc); err == nil {
			t.Error("expected error writing to a directory")
		}
	})
}

// TestDefaultPipeline tests the assembled pipeline end to end.
func TestDefaultPipeline(t *testing.T) {
	t.Parallel()

	builtin := optimizer.NewBuiltin(optimizer.Options{Precision: 3})

	t.Run("has steps in order", func(t *testing.T) {
		t.Parallel()

		p := DefaultPipeline(builtin, nil)
		want := []string{"read", "optimize", "verify", "guard", "write"}
		got := p.StepNames()
		if len(got) != len(want) {
			t.Fatalf("expected %v, got %v", want, got)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("step %d: got %q, want %q", i, got[i], want[i])
			}
		}
	})

	t.Run("optimizes file into output directory", func(t *testing.T) {
		t.Parallel()

		in, out := t.TempDir(), t.TempDir()
		src := writeFile(t, in, "a.svg", sampleSVG)
		doc := model.NewDocument("a.svg", src, TargetPath(out, "a.svg"))

		p := DefaultPipeline(builtin, []Option{WithLogger(discardLogger())})
		if err := p.Execute(context.Background(), doc); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		got, err := os.ReadFile(filepath.Join(out, "a.svg"))
		if err != nil {
			t.Fatalf("failed to read output: %v", err)
		}
		if !bytes.Equal(got, doc.Output) {
			t.Errorf("written bytes differ from document output")
		}
		if len(got) > len(sampleSVG) {
			t.Errorf("output larger than input: %d > %d", len(got), len(sampleSVG))
		}
		if r := doc.Result(); r.Status != model.StatusOptimized {
			t.Errorf("expected optimized status, got %q", r.Status)
		}
	})

	t.Run("dry run keeps output directory empty", func(t *testing.T) {
		t.Parallel()

		in, out := t.TempDir(), t.TempDir()
		src := writeFile(t, in, "a.svg", sampleSVG)
		doc := model.NewDocument("a.svg", src, TargetPath(out, "a.svg"))

		p := DefaultPipeline(builtin, []Option{WithLogger(discardLogger())}, WithPipelineDryRun(true))
		if err := p.Execute(context.Background(), doc); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		entries, err := os.ReadDir(out)
		if err != nil {
			t.Fatalf("failed to read output dir: %v", err)
		}
		if len(entries) != 0 {
			t.Errorf("expected empty output dir, got %d entries", len(entries))
		}
		if len(doc.Output) == 0 {
			t.Error("expected output to be computed")
		}
	})

	t.Run("disabled fallback fails lossy optimizer", func(t *testing.T) {
		t.Parallel()

		in, out := t.TempDir(), t.TempDir()
		src := writeFile(t, in, "a.svg", sampleSVG)
		doc := model.NewDocument("a.svg", src, TargetPath(out, "a.svg"))

		lossy := &stubOptimizer{name: "lossy", out: []byte("<svg/>")}
		p := DefaultPipeline(lossy, []Option{WithLogger(discardLogger())}, WithPipelineFallback(nil))
		if err := p.Execute(context.Background(), doc); !errors.Is(err, ErrAttributeLost) {
			t.Fatalf("expected ErrAttributeLost, got %v", err)
		}
		if _, err := os.Stat(filepath.Join(out, "a.svg")); !errors.Is(err, os.ErrNotExist) {
			t.Error("failed document must not be written")
		}
	})
}
