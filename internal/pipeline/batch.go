package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/davidvvliet/PixelPolish-sub000/internal/model"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of snapshots analyzed at once when no
// limit is configured.
const DefaultConcurrency = 4

// BatchProcessor analyzes multiple snapshot files concurrently.
// Each file gets a fresh pipeline from the factory so that step state never
// leaks between runs.
type BatchProcessor struct {
	pipelineFactory func() *Pipeline
	concurrency     int
	logger          *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent runs.
// Non-positive values keep the default.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor.
func NewBatchProcessor(pipelineFactory func() *Pipeline, opts ...BatchOption) *BatchProcessor {
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

// Concurrency returns the configured concurrency limit.
func (bp *BatchProcessor) Concurrency() int {
	return bp.concurrency
}

// ProcessBatch analyzes every source and returns one run per source, in
// input order. A failed run carries its error in AnalysisRun.Error and does
// not stop the others. When the context is cancelled before every run has
// started, the error is returned and the runs that never started are nil.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, sources []string) ([]*model.AnalysisRun, error) {
	runs := make([]*model.AnalysisRun, len(sources))
	err := bp.ProcessBatchWithCallback(ctx, sources, func(run *model.AnalysisRun, index int) {
		runs[index] = run
	})
	return runs, err
}

// ProcessBatchWithCallback analyzes every source and calls callback for
// each completed run with the run's index in sources. The callback runs on
// the worker goroutine; it must be safe for concurrent use unless it only
// touches its own index.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	sources []string,
	callback func(run *model.AnalysisRun, index int),
) error {
	bp.logger.Info("starting batch analysis",
		"total_sources", len(sources),
		"concurrency", bp.concurrency,
	)
	startTime := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, source := range sources {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			run := model.NewAnalysisRun(source)
			if err := bp.pipelineFactory().Execute(ctx, run); err != nil {
				// Recorded on the run; other sources keep going.
				bp.logger.Warn("analysis failed",
					"source", source,
					"error", err,
				)
			}
			callback(run, i)
			return nil
		})
	}

	err := g.Wait()

	bp.logger.Info("batch analysis complete",
		"total_sources", len(sources),
		"elapsed", time.Since(startTime),
	)
	return err
}
