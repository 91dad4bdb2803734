// Package metrics provides Prometheus metrics for the sentiment service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "finvani"

var (
	// IngestionRuns counts ingestion runs by outcome (ok, skipped, failed).
	IngestionRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingestion_runs_total",
			Help:      "Total number of ingestion runs",
		},
		[]string{"status"},
	)

	// IngestionDuration measures ingestion run duration.
	IngestionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ingestion_duration_seconds",
			Help:      "Duration of ingestion runs in seconds",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
		},
	)

	// ArticlesIngested counts new articles written, by language.
	ArticlesIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "articles_ingested_total",
			Help:      "Total number of new articles appended to the daily file",
		},
		[]string{"language"},
	)

	// FeedErrors counts failed feed fetches, by language.
	FeedErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feed_errors_total",
			Help:      "Total number of failed (query, language) feed fetches",
		},
		[]string{"language"},
	)

	// Predictions counts analyzer predictions by label.
	Predictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "predictions_total",
			Help:      "Total number of sentiment predictions",
		},
		[]string{"label"},
	)

	// PredictionDuration measures single prediction latency.
	PredictionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "prediction_duration_seconds",
			Help:      "Duration of sentiment predictions in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		},
	)

	// PredictionCacheHits counts prediction cache lookups by result (hit, miss, error).
	PredictionCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "prediction_cache_total",
			Help:      "Prediction cache lookups",
		},
		[]string{"result"},
	)

	// DataFiles is the number of daily files in the data directory.
	DataFiles = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "data_files",
			Help:      "Number of daily JSONL files on disk",
		},
	)

	// MirroredArticles is the number of articles in the database mirror, by language.
	MirroredArticles = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "mirrored_articles",
			Help:      "Articles stored in the database mirror",
		},
		[]string{"language"},
	)

	// ModelLoaded is 1 when an analyzer is available.
	ModelLoaded = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "model_loaded",
			Help:      "Sentiment model status (1 = loaded, 0 = unavailable)",
		},
	)
)

// RecordIngestion records a finished ingestion run.
func RecordIngestion(status string, seconds float64, newByLanguage map[string]int, failedByLanguage map[string]int) {
	IngestionRuns.WithLabelValues(status).Inc()
	IngestionDuration.Observe(seconds)
	for lang, n := range newByLanguage {
		ArticlesIngested.WithLabelValues(lang).Add(float64(n))
	}
	for lang, n := range failedByLanguage {
		FeedErrors.WithLabelValues(lang).Add(float64(n))
	}
}

// RecordPrediction records one analyzer prediction.
func RecordPrediction(label string, seconds float64) {
	Predictions.WithLabelValues(label).Inc()
	PredictionDuration.Observe(seconds)
}

// RecordCacheLookup records a prediction cache lookup result.
func RecordCacheLookup(result string) {
	PredictionCacheHits.WithLabelValues(result).Inc()
}

// SetStoreStats publishes data directory and mirror sizes. A nil mirror map
// leaves the mirror gauges untouched.
func SetStoreStats(files int, mirrored map[string]int) {
	DataFiles.Set(float64(files))
	for lang, n := range mirrored {
		MirroredArticles.WithLabelValues(lang).Set(float64(n))
	}
}

// SetModelLoaded sets the model status gauge.
func SetModelLoaded(loaded bool) {
	if loaded {
		ModelLoaded.Set(1)
		return
	}
	ModelLoaded.Set(0)
}
