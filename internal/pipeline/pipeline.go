package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/nao1215/svgmin/internal/model"
)

// Step defines the interface that all pipeline steps must implement.
// Steps are executed in sequence, each receiving the document as left by
// the previous step.
type Step interface {
	// Do executes the pipeline step.
	// A returned error marks the document as failed.
	Do(ctx context.Context, doc *model.Document) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// Pipeline orchestrates the execution of multiple steps.
type Pipeline struct {
	// steps contains the ordered list of steps to execute.
	steps []Step

	// logger is used for structured logging during execution.
	logger *slog.Logger

	// continueOnError determines whether to continue executing steps
	// after one fails. If false, the pipeline stops on first error.
	continueOnError bool
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithContinueOnError configures the pipeline to continue execution
// even when a step fails. Only the first error is kept on the document.
func WithContinueOnError(continueOnError bool) Option {
	return func(p *Pipeline) {
		p.continueOnError = continueOnError
	}
}

// New creates a new Pipeline with the given options.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps: make([]Step, 0),
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p
}

// AddStep appends a step to the pipeline.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs all pipeline steps in sequence on doc.
// Skipped documents are returned untouched. Cancellation is checked
// before each step; a running step is never interrupted. A cancelled
// document is marked skipped with CancelledReason.
//
// Returns the first error encountered if continueOnError is false.
// The error is also stored in doc.Error.
func (p *Pipeline) Execute(ctx context.Context, doc *model.Document) error {
	if doc.Skipped() {
		p.logger.Debug("document skipped", "file", doc.Name, "reason", doc.SkipReason)
		return nil
	}

	doc.StartedAt = time.Now()
	defer func() {
		doc.Elapsed = time.Since(doc.StartedAt)
	}()

	for _, step := range p.steps {
		select {
		case <-ctx.Done():
			p.logger.Warn("pipeline cancelled",
				"step", step.Name(),
				"file", doc.Name,
				"reason", ctx.Err(),
			)
			doc.Skip(CancelledReason)
			return ctx.Err()
		default:
		}

		p.logger.Debug("executing step",
			"step", step.Name(),
			"file", doc.Name,
		)

		if err := step.Do(ctx, doc); err != nil {
			if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
				p.logger.Warn("pipeline cancelled",
					"step", step.Name(),
					"file", doc.Name,
				)
				doc.Skip(CancelledReason)
				return err
			}

			p.logger.Warn("step failed",
				"step", step.Name(),
				"file", doc.Name,
				"error", err,
			)

			if doc.Error == nil {
				doc.Error = err
			}
			if !p.continueOnError {
				return err
			}
			continue
		}

		doc.PerformedSteps = append(doc.PerformedSteps, step.Name())
	}

	p.logger.Debug("document processed",
		"file", doc.Name,
		"optimizer", doc.Optimizer,
		"original", len(doc.Source),
		"minified", len(doc.Output),
	)

	return nil
}

// StepCount returns the number of steps in the pipeline.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
