package pipeline

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/surf-prediction-service/internal/domain"
	"github.com/couchcryptid/surf-prediction-service/internal/observability"
)

const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

// BatchExtractor reads up to batchSize raw reading messages from the source.
type BatchExtractor interface {
	ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawEvent, error)
}

// Transformer parses a raw message into a keyed reading.
type Transformer interface {
	Transform(ctx context.Context, raw domain.RawEvent) (domain.ReadingRecord, error)
}

// BatchLoader persists readings. Implementations must ignore readings whose
// key is already stored.
type BatchLoader interface {
	LoadBatch(ctx context.Context, records []domain.ReadingRecord) error
}

// Pipeline moves environmental readings from the source topic into the
// store that predictions are computed from.
type Pipeline struct {
	extractor   BatchExtractor
	transformer Transformer
	loader      BatchLoader
	logger      *slog.Logger
	metrics     *observability.Metrics
	ready       atomic.Bool
	batchSize   int
}

// New creates a Pipeline with the given stages and observability.
func New(e BatchExtractor, t Transformer, l BatchLoader, logger *slog.Logger, metrics *observability.Metrics, batchSize int) *Pipeline {
	return &Pipeline{
		extractor:   e,
		transformer: t,
		loader:      l,
		logger:      logger,
		metrics:     metrics,
		batchSize:   batchSize,
	}
}

// Run consumes readings until the context is cancelled.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("ingestion started", "batch_size", p.batchSize)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	backoff := initialBackoff
	for {
		if ctx.Err() != nil {
			p.logger.Info("ingestion stopping", "reason", ctx.Err())
			return nil
		}
		if !p.processBatch(ctx, &backoff) {
			return nil
		}
	}
}

// processBatch runs one extract-parse-store cycle. Returns false if the pipeline should stop.
func (p *Pipeline) processBatch(ctx context.Context, backoff *time.Duration) bool {
	start := time.Now()

	rawBatch, err := p.extractor.ExtractBatch(ctx, p.batchSize)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		p.logger.Error("extract batch failed", "error", err)
		return p.backoffOrStop(ctx, backoff)
	}
	if len(rawBatch) == 0 {
		return ctx.Err() == nil
	}

	p.metrics.MessagesConsumed.Add(float64(len(rawBatch)))
	p.metrics.BatchSize.Observe(float64(len(rawBatch)))
	*backoff = initialBackoff

	stored, ok := p.parseAndStore(ctx, rawBatch, backoff)
	if !ok {
		return false
	}
	if stored > 0 {
		p.metrics.BatchProcessingDuration.Observe(time.Since(start).Seconds())
		if p.ready.CompareAndSwap(false, true) {
			p.logger.Info("first readings stored, ingestion ready", "readings", stored)
			p.metrics.IngestionReady.Set(1)
		}
	}
	return true
}

// parseAndStore parses each message, stores the valid readings and commits
// offsets. Unparseable messages are committed immediately so they are never
// redelivered. A failed store is retried with backoff until it succeeds or
// the context ends; offsets of valid readings are committed only afterwards.
func (p *Pipeline) parseAndStore(ctx context.Context, rawBatch []domain.RawEvent, backoff *time.Duration) (int, bool) {
	records := make([]domain.ReadingRecord, 0, len(rawBatch))
	parsed := make([]domain.RawEvent, 0, len(rawBatch))

	for _, raw := range rawBatch {
		rec, err := p.transformer.Transform(ctx, raw)
		if err != nil {
			p.logger.Warn("invalid reading, skipping message",
				"error", err,
				"topic", raw.Topic,
				"partition", raw.Partition,
				"offset", raw.Offset,
			)
			p.metrics.TransformErrors.Inc()
			p.commitOffset(ctx, raw)
			continue
		}
		records = append(records, rec)
		parsed = append(parsed, raw)
	}

	if len(records) == 0 {
		return 0, true
	}

	for {
		err := p.loader.LoadBatch(ctx, records)
		if err == nil {
			break
		}
		p.logger.Error("store readings failed", "error", err, "batch_size", len(records), "retry_in", *backoff)
		if !p.backoffOrStop(ctx, backoff) {
			return 0, false
		}
	}
	p.metrics.ReadingsStored.Add(float64(len(records)))

	for _, raw := range parsed {
		p.commitOffset(ctx, raw)
	}
	return len(records), true
}

// backoffOrStop sleeps for the current backoff and doubles it. Returns false
// if the context ended first.
func (p *Pipeline) backoffOrStop(ctx context.Context, backoff *time.Duration) bool {
	if ctx.Err() != nil || !sleepWithContext(ctx, *backoff) {
		return false
	}
	*backoff = nextBackoff(*backoff, maxBackoff)
	return true
}

func (p *Pipeline) commitOffset(ctx context.Context, raw domain.RawEvent) {
	if raw.Commit == nil {
		return
	}
	if err := raw.Commit(ctx); err != nil {
		p.logger.Warn("commit offset failed", "error", err,
			"topic", raw.Topic, "partition", raw.Partition, "offset", raw.Offset)
	}
}

func nextBackoff(current, limit time.Duration) time.Duration {
	next := current * 2
	if next > limit {
		return limit
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
