package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/nao1215/svgmin/internal/model"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of documents processed at once unless
// WithConcurrency says otherwise. One worker keeps processing sequential.
const DefaultConcurrency = 1

// CancelledReason is the skip reason of documents that were not started
// because the batch was cancelled.
const CancelledReason = "cancelled"

// BatchProcessor runs a fresh pipeline for every document of a batch.
// Documents are processed in slice order when concurrency is 1; with more
// workers they complete in any order but stay at their index.
type BatchProcessor struct {
	// pipelineFactory creates the pipeline for one document. Receiving the
	// document lets callers pick per-file optimizers from config rules.
	pipelineFactory func(doc *model.Document) *Pipeline

	// concurrency is the maximum number of documents processed at once.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent documents.
// Non-positive values keep the default.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor.
func NewBatchProcessor(pipelineFactory func(doc *model.Document) *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		concurrency:     DefaultConcurrency,
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// ProcessBatch runs the pipeline on every document.
// Per-document failures are stored in the documents and never stop the
// batch. The returned error is non-nil only when ctx was cancelled; the
// documents that were not started are then marked skipped.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, docs []*model.Document) error {
	return bp.ProcessBatchWithCallback(ctx, docs, nil)
}

// ProcessBatchWithCallback runs the pipeline on every document and calls
// callback as each one completes. Calls are serialized, so the callback
// may write to a shared writer without further locking.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	docs []*model.Document,
	callback func(doc *model.Document, index int),
) error {
	bp.logger.Debug("starting batch processing",
		"total_files", len(docs),
		"concurrency", bp.concurrency,
	)

	startTime := time.Now()

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, doc := range docs {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				doc.Skip(CancelledReason)
				return ctx.Err()
			default:
			}

			pipeline := bp.pipelineFactory(doc)
			_ = pipeline.Execute(ctx, doc) //nolint:errcheck // Error is stored in doc

			if callback != nil {
				mu.Lock()
				callback(doc, i)
				mu.Unlock()
			}
			return nil
		})
	}

	err := g.Wait()

	bp.logger.Debug("batch processing complete",
		"total_files", len(docs),
		"elapsed", time.Since(startTime),
	)

	return err
}
