package pipeline_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/surf-prediction-service/internal/domain"
	"github.com/couchcryptid/surf-prediction-service/internal/observability"
	"github.com/couchcryptid/surf-prediction-service/internal/pipeline"
	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockExtractor struct {
	batches [][]domain.RawEvent
	errs    []error
	calls   int
}

func (m *mockExtractor) ExtractBatch(ctx context.Context, _ int) ([]domain.RawEvent, error) {
	i := m.calls
	m.calls++
	if i < len(m.errs) && m.errs[i] != nil {
		return nil, m.errs[i]
	}
	if i >= len(m.batches) {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return m.batches[i], nil
}

type mockLoader struct {
	failures int
	calls    int
	loaded   []domain.ReadingRecord
}

func (m *mockLoader) LoadBatch(_ context.Context, records []domain.ReadingRecord) error {
	m.calls++
	if m.calls <= m.failures {
		return errors.New("database is locked")
	}
	m.loaded = append(m.loaded, records...)
	return nil
}

type commitLog struct {
	offsets []int64
}

func (c *commitLog) raw(t *testing.T, offset int64, value string) domain.RawEvent {
	t.Helper()
	return domain.RawEvent{
		Topic:  "surf-readings",
		Offset: offset,
		Value:  []byte(value),
		Commit: func(context.Context) error {
			c.offsets = append(c.offsets, offset)
			return nil
		},
	}
}

func readingJSON(t *testing.T, breakID, slot string, swell float64) string {
	t.Helper()
	data, err := json.Marshal(map[string]any{
		"break_id":       breakID,
		"forecast_date":  "2025-01-18",
		"forecast_time":  slot,
		"swell_height":   swell,
		"swell_period":   12,
		"wind_speed":     10,
		"wind_direction": "ne",
	})
	require.NoError(t, err)
	return string(data)
}

func runFor(t *testing.T, p *pipeline.Pipeline, d time.Duration) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()
	require.NoError(t, p.Run(ctx))
}

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, g.Write(&m))
	return m.GetGauge().GetValue()
}

// --- tests ---

func TestPipeline_Run_StoresReadings(t *testing.T) {
	var commits commitLog
	ext := &mockExtractor{batches: [][]domain.RawEvent{{
		commits.raw(t, 1, readingJSON(t, "brk-1", "8am", 6)),
		commits.raw(t, 2, readingJSON(t, "brk-2", "10am", 3)),
	}}}
	ldr := &mockLoader{}

	metrics := observability.NewMetricsForTesting()
	p := pipeline.New(ext, pipeline.NewTransformer(), ldr, slog.Default(), metrics, 10)
	runFor(t, p, 300*time.Millisecond)

	require.Len(t, ldr.loaded, 2)
	assert.Equal(t, "brk-1", ldr.loaded[0].BreakID)
	assert.Equal(t, domain.Slot8am, ldr.loaded[0].TimeSlot)
	assert.Equal(t, "NE", ldr.loaded[0].Reading.WindDirection)
	assert.Equal(t, []int64{1, 2}, commits.offsets)
	assert.Equal(t, 1.0, gaugeValue(t, metrics.IngestionReady))
}

func TestPipeline_Run_SkipsPoisonMessages(t *testing.T) {
	var commits commitLog
	ext := &mockExtractor{batches: [][]domain.RawEvent{{
		commits.raw(t, 1, `{not json`),
		commits.raw(t, 2, readingJSON(t, "brk-1", "morning", 6)),
		commits.raw(t, 3, readingJSON(t, "brk-1", "2pm", 6)),
	}}}
	ldr := &mockLoader{}

	p := pipeline.New(ext, pipeline.NewTransformer(), ldr, slog.Default(), observability.NewMetricsForTesting(), 10)
	runFor(t, p, 300*time.Millisecond)

	require.Len(t, ldr.loaded, 1)
	assert.Equal(t, domain.Slot2pm, ldr.loaded[0].TimeSlot)
	// poison messages commit straight away, valid ones after the store
	if diff := cmp.Diff([]int64{1, 2, 3}, commits.offsets); diff != "" {
		t.Fatalf("commit order mismatch (-want +got):\n%s", diff)
	}
}

func TestPipeline_Run_AllInvalidNotReady(t *testing.T) {
	var commits commitLog
	ext := &mockExtractor{batches: [][]domain.RawEvent{{
		commits.raw(t, 7, `{"forecast_date":"2025-01-18","forecast_time":"8am"}`),
	}}}
	ldr := &mockLoader{}

	metrics := observability.NewMetricsForTesting()
	p := pipeline.New(ext, pipeline.NewTransformer(), ldr, slog.Default(), metrics, 10)
	runFor(t, p, 300*time.Millisecond)

	assert.Empty(t, ldr.loaded)
	assert.Zero(t, ldr.calls)
	assert.Equal(t, []int64{7}, commits.offsets)
	assert.Equal(t, 0.0, gaugeValue(t, metrics.IngestionReady))
}

func TestPipeline_Run_RetriesStoreBeforeCommit(t *testing.T) {
	var commits commitLog
	ext := &mockExtractor{batches: [][]domain.RawEvent{{
		commits.raw(t, 4, readingJSON(t, "brk-1", "8am", 6)),
	}}}
	ldr := &mockLoader{failures: 1}

	p := pipeline.New(ext, pipeline.NewTransformer(), ldr, slog.Default(), observability.NewMetricsForTesting(), 10)
	runFor(t, p, time.Second)

	assert.Equal(t, 2, ldr.calls)
	assert.Len(t, ldr.loaded, 1)
	assert.Equal(t, []int64{4}, commits.offsets)
}

func TestPipeline_Run_StoreFailureUntilShutdown(t *testing.T) {
	var commits commitLog
	ext := &mockExtractor{batches: [][]domain.RawEvent{{
		commits.raw(t, 4, readingJSON(t, "brk-1", "8am", 6)),
	}}}
	ldr := &mockLoader{failures: 1000}

	metrics := observability.NewMetricsForTesting()
	p := pipeline.New(ext, pipeline.NewTransformer(), ldr, slog.Default(), metrics, 10)
	runFor(t, p, 500*time.Millisecond)

	assert.Empty(t, ldr.loaded)
	assert.Empty(t, commits.offsets)
	assert.Equal(t, 0.0, gaugeValue(t, metrics.IngestionReady))
}

func TestPipeline_Run_RecoversFromExtractError(t *testing.T) {
	var commits commitLog
	ext := &mockExtractor{
		errs: []error{errors.New("broker unavailable")},
		batches: [][]domain.RawEvent{
			nil,
			{commits.raw(t, 9, readingJSON(t, "brk-1", "4pm", 2))},
		},
	}
	ldr := &mockLoader{}

	p := pipeline.New(ext, pipeline.NewTransformer(), ldr, slog.Default(), observability.NewMetricsForTesting(), 10)
	runFor(t, p, time.Second)

	assert.Len(t, ldr.loaded, 1)
	assert.Equal(t, []int64{9}, commits.offsets)
}

func TestPipeline_Run_ContextCancellation(t *testing.T) {
	ext := &mockExtractor{}
	ldr := &mockLoader{}

	p := pipeline.New(ext, pipeline.NewTransformer(), ldr, slog.Default(), observability.NewMetricsForTesting(), 10)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, p.Run(ctx))
	assert.Zero(t, ext.calls)
	assert.Empty(t, ldr.loaded)
}

func TestReadingTransformer_Transform(t *testing.T) {
	tfm := pipeline.NewTransformer()

	rec, err := tfm.Transform(context.Background(), domain.RawEvent{Value: []byte(readingJSON(t, "brk-3", "12pm", 4.5))})
	require.NoError(t, err)
	assert.Equal(t, "brk-3", rec.BreakID)
	assert.Equal(t, "2025-01-18", rec.Date)
	assert.Equal(t, domain.Slot12pm, rec.TimeSlot)
	assert.Equal(t, 4.5, *rec.Reading.SwellHeightFeet)

	_, err = tfm.Transform(context.Background(), domain.RawEvent{Value: []byte("not json")})
	assert.Error(t, err)
}
