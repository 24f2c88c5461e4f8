package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "surf_predictor"

// Metrics holds the Prometheus counters, histograms, and gauges for reading
// ingestion and prediction.
type Metrics struct {
	MessagesConsumed prometheus.Counter
	ReadingsStored   prometheus.Counter
	TransformErrors  prometheus.Counter
	PipelineRunning  prometheus.Gauge
	IngestionReady   prometheus.Gauge

	// Batch processing metrics.
	BatchSize               prometheus.Histogram
	BatchProcessingDuration prometheus.Histogram

	// Prediction metrics.
	Predictions          *prometheus.CounterVec // labels: rating={amazing,fun,bad,unknown}
	PredictionFailures   prometheus.Counter
	PredictionDuration   prometheus.Histogram
	SimilarityScore      prometheus.Histogram
	ReadingCache         *prometheus.CounterVec // labels: result={hit,miss}
	PredictionsPublished prometheus.Counter
	SchedulerRunning     prometheus.Gauge
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		MessagesConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_consumed_total",
			Help:      "Total messages read from the readings topic.",
		}),
		ReadingsStored: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "readings_stored_total",
			Help:      "Total readings handed to the store.",
		}),
		TransformErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transform_errors_total",
			Help:      "Total readings rejected during parsing.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 when the ingestion pipeline is active, 0 when shut down.",
		}),
		IngestionReady: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ingestion_ready",
			Help:      "1 once the pipeline has stored its first readings.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_size",
			Help:      "Number of messages per batch extracted from Kafka.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_processing_duration_seconds",
			Help:      "Duration of a complete batch extract-parse-store cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		Predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "predictions_total",
			Help:      "Predictions produced, by predicted rating.",
		}, []string{"rating"}),
		PredictionFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "prediction_failures_total",
			Help:      "Breaks omitted from a prediction run because a collaborator failed.",
		}),
		PredictionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "prediction_duration_seconds",
			Help:      "Duration of a prediction run for one user.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}),
		SimilarityScore: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "similarity_score",
			Help:      "Similarity between current and historical readings.",
			Buckets:   []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1},
		}),
		ReadingCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reading_cache_total",
			Help:      "Reading cache lookups by result.",
		}, []string{"result"}),
		PredictionsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "predictions_published_total",
			Help:      "Total predictions written to the predictions topic.",
		}),
		SchedulerRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "scheduler_running",
			Help:      "1 when the prediction scheduler is active, 0 otherwise.",
		}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.MessagesConsumed,
		m.ReadingsStored,
		m.TransformErrors,
		m.PipelineRunning,
		m.IngestionReady,
		m.BatchSize,
		m.BatchProcessingDuration,
		m.Predictions,
		m.PredictionFailures,
		m.PredictionDuration,
		m.SimilarityScore,
		m.ReadingCache,
		m.PredictionsPublished,
		m.SchedulerRunning,
	}
}
