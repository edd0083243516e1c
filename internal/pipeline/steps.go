package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/nao1215/svgmin/internal/model"
	"github.com/nao1215/svgmin/internal/optimizer"
)

const (
	// DefaultMaxFileSize is the largest input file read, in bytes.
	DefaultMaxFileSize int64 = 64 << 20

	// dirPerm is used when the output directory has to be created.
	dirPerm os.FileMode = 0o750

	// filePerm is used for written output files.
	filePerm os.FileMode = 0o644
)

var (
	// ErrFileTooLarge is returned when an input file exceeds the size limit.
	ErrFileTooLarge = errors.New("file exceeds size limit")

	// ErrAttributeLost is returned when the optimized output lost an id,
	// class, data-* or aria-* attribute of the input.
	ErrAttributeLost = errors.New("optimized output lost attributes")
)

// ReadStep loads the source file into the document.
type ReadStep struct {
	maxSize int64
}

// ReadStepOption configures a ReadStep.
type ReadStepOption func(*ReadStep)

// WithReadMaxSize sets the largest file size accepted by the read step.
func WithReadMaxSize(size int64) ReadStepOption {
	return func(s *ReadStep) {
		if size > 0 {
			s.maxSize = size
		}
	}
}

// NewReadStep creates a new read step.
func NewReadStep(opts ...ReadStepOption) *ReadStep {
	s := &ReadStep{maxSize: DefaultMaxFileSize}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *ReadStep) Name() string {
	return "read"
}

// Do reads doc.SourcePath into doc.Source.
func (s *ReadStep) Do(_ context.Context, doc *model.Document) error {
	f, err := os.Open(doc.SourcePath)
	if err != nil {
		return fmt.Errorf("read %s: %w", doc.Name, err)
	}
	defer f.Close() //nolint:errcheck // read-only handle

	data, err := io.ReadAll(io.LimitReader(f, s.maxSize+1))
	if err != nil {
		return fmt.Errorf("read %s: %w", doc.Name, err)
	}
	if int64(len(data)) > s.maxSize {
		return fmt.Errorf("read %s: %w (%d bytes)", doc.Name, ErrFileTooLarge, s.maxSize)
	}

	doc.Source = data
	return nil
}

// OptimizeStep runs an optimizer strategy over the document source.
type OptimizeStep struct {
	opt optimizer.Optimizer
}

// NewOptimizeStep creates a new optimize step using opt.
func NewOptimizeStep(opt optimizer.Optimizer) *OptimizeStep {
	return &OptimizeStep{opt: opt}
}

// Name returns the step name.
func (s *OptimizeStep) Name() string {
	return "optimize"
}

// Do stores the optimized bytes in doc.Output.
func (s *OptimizeStep) Do(_ context.Context, doc *model.Document) error {
	out, err := s.opt.Optimize(doc.Source)
	if err != nil {
		return fmt.Errorf("optimize %s with %s: %w", doc.Name, s.opt.Name(), err)
	}
	doc.Output = out
	doc.Optimizer = s.opt.Name()
	return nil
}

// VerifyStep checks that no preserved attribute was dropped. When the
// output lost attributes and a fallback strategy is configured, the source
// is optimized again with the fallback before the document is failed.
type VerifyStep struct {
	fallback optimizer.Optimizer
	logger   *slog.Logger
}

// VerifyStepOption configures a VerifyStep.
type VerifyStepOption func(*VerifyStep)

// WithVerifyFallback sets the strategy retried after attribute loss.
func WithVerifyFallback(opt optimizer.Optimizer) VerifyStepOption {
	return func(s *VerifyStep) {
		s.fallback = opt
	}
}

// WithVerifyLogger sets a custom logger for the verify step.
func WithVerifyLogger(logger *slog.Logger) VerifyStepOption {
	return func(s *VerifyStep) {
		s.logger = logger
	}
}

// NewVerifyStep creates a new verify step.
func NewVerifyStep(opts ...VerifyStepOption) *VerifyStep {
	s := &VerifyStep{logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *VerifyStep) Name() string {
	return "verify"
}

// Do compares the preserved attributes of doc.Source and doc.Output.
func (s *VerifyStep) Do(_ context.Context, doc *model.Document) error {
	missing := optimizer.Missing(doc.Source, doc.Output)
	if len(missing) == 0 {
		return nil
	}

	if s.fallback != nil && s.fallback.Name() != doc.Optimizer {
		s.logger.Info("retrying with fallback optimizer",
			"file", doc.Name,
			"optimizer", doc.Optimizer,
			"fallback", s.fallback.Name(),
			"missing", missing,
		)
		out, err := s.fallback.Optimize(doc.Source)
		if err == nil && len(optimizer.Missing(doc.Source, out)) == 0 {
			doc.Output = out
			doc.Optimizer = s.fallback.Name()
			return nil
		}
	}

	return fmt.Errorf("%w: %s", ErrAttributeLost, strings.Join(missing, ", "))
}

// GuardStep keeps the original bytes when optimization did not make the
// document smaller, so output is never larger than input.
type GuardStep struct{}

// NewGuardStep creates a new guard step.
func NewGuardStep() *GuardStep {
	return &GuardStep{}
}

// Name returns the step name.
func (s *GuardStep) Name() string {
	return "guard"
}

// Do replaces doc.Output with doc.Source when it is not an improvement.
func (s *GuardStep) Do(_ context.Context, doc *model.Document) error {
	if len(doc.Output) > len(doc.Source) || bytes.Equal(doc.Output, doc.Source) {
		doc.Output = doc.Source
		doc.Unchanged = true
	}
	return nil
}

// WriteStep writes doc.Output to doc.TargetPath.
type WriteStep struct {
	dryRun bool
}

// WriteStepOption configures a WriteStep.
type WriteStepOption func(*WriteStep)

// WithWriteDryRun makes the write step a no-op.
func WithWriteDryRun(dryRun bool) WriteStepOption {
	return func(s *WriteStep) {
		s.dryRun = dryRun
	}
}

// NewWriteStep creates a new write step.
func NewWriteStep(opts ...WriteStepOption) *WriteStep {
	s := &WriteStep{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *WriteStep) Name() string {
	return "write"
}

// Do creates or truncates the target file and writes the output.
func (s *WriteStep) Do(_ context.Context, doc *model.Document) error {
	if s.dryRun {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(doc.TargetPath), dirPerm); err != nil {
		return fmt.Errorf("write %s: %w", doc.Name, err)
	}

	f, err := os.OpenFile(doc.TargetPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, filePerm) //nolint:gosec // path comes from the configured output directory
	if err != nil {
		return fmt.Errorf("write %s: %w", doc.Name, err)
	}
	if _, err := f.Write(doc.Output); err != nil {
		_ = f.Close() //nolint:errcheck // write error takes precedence
		return fmt.Errorf("write %s: %w", doc.Name, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("write %s: %w", doc.Name, err)
	}
	return nil
}

// DefaultPipelineConfig holds configuration for the default pipeline.
type DefaultPipelineConfig struct {
	// Fallback is retried when the chosen optimizer loses attributes.
	// Nil disables the retry.
	Fallback optimizer.Optimizer

	// DryRun disables writing output files.
	DryRun bool

	// MaxFileSize is the largest input file read, in bytes.
	MaxFileSize int64
}

// DefaultPipelineOption configures a DefaultPipelineConfig.
type DefaultPipelineOption func(*DefaultPipelineConfig)

// WithPipelineFallback sets the fallback optimizer of the verify step.
func WithPipelineFallback(opt optimizer.Optimizer) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Fallback = opt
	}
}

// WithPipelineDryRun disables writing output files.
func WithPipelineDryRun(dryRun bool) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.DryRun = dryRun
	}
}

// WithPipelineMaxFileSize sets the largest input file read.
func WithPipelineMaxFileSize(size int64) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.MaxFileSize = size
	}
}

// DefaultPipeline creates the read, optimize, verify, guard and write
// pipeline for opt. The built-in strategy with default precision is the
// verify fallback unless WithPipelineFallback overrides it.
func DefaultPipeline(opt optimizer.Optimizer, pipelineOpts []Option, configOpts ...DefaultPipelineOption) *Pipeline {
	p := New(pipelineOpts...)

	cfg := &DefaultPipelineConfig{
		Fallback:    optimizer.NewBuiltin(optimizer.Options{Precision: optimizer.DefaultPrecision}),
		MaxFileSize: DefaultMaxFileSize,
	}
	for _, o := range configOpts {
		o(cfg)
	}

	verifyOpts := []VerifyStepOption{WithVerifyLogger(p.logger)}
	if cfg.Fallback != nil {
		verifyOpts = append(verifyOpts, WithVerifyFallback(cfg.Fallback))
	}

	p.AddSteps(
		NewReadStep(WithReadMaxSize(cfg.MaxFileSize)),
		NewOptimizeStep(opt),
		NewVerifyStep(verifyOpts...),
		NewGuardStep(),
		NewWriteStep(WithWriteDryRun(cfg.DryRun)),
	)

	return p
}
