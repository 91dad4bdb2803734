package sentiment

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/selivandex/finvani-sentiment/internal/metrics"
	"github.com/selivandex/finvani-sentiment/pkg/logger"
	"github.com/selivandex/finvani-sentiment/pkg/models"
)

// PredictionCache stores predictions by input text
type PredictionCache interface {
	Get(ctx context.Context, text string) (models.Prediction, bool, error)
	Set(ctx context.Context, text string, p models.Prediction) error
}

// Service serves predictions for the API, consulting an optional cache
type Service struct {
	analyzer *Analyzer
	cache    PredictionCache
}

// NewService creates a prediction service. cache may be nil.
func NewService(analyzer *Analyzer, cache PredictionCache) *Service {
	return &Service{analyzer: analyzer, cache: cache}
}

// Predict classifies text. Cache failures are logged and fall through
// to the model.
func (s *Service) Predict(ctx context.Context, text string) (models.Prediction, error) {
	if s.cache != nil {
		p, ok, err := s.cache.Get(ctx, text)
		switch {
		case err != nil:
			metrics.RecordCacheLookup("error")
			logger.Warn("prediction cache read failed", zap.Error(err))
		case ok:
			metrics.RecordCacheLookup("hit")
			return p, nil
		default:
			metrics.RecordCacheLookup("miss")
		}
	}

	start := time.Now()
	p, err := s.analyzer.Predict(text)
	if err != nil {
		return p, err
	}
	metrics.RecordPrediction(p.Label, time.Since(start).Seconds())

	if s.cache != nil {
		if err := s.cache.Set(ctx, text, p); err != nil {
			logger.Warn("prediction cache write failed", zap.Error(err))
		}
	}

	return p, nil
}
