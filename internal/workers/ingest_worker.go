package workers

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/selivandex/finvani-sentiment/internal/ingestion"
	"github.com/selivandex/finvani-sentiment/pkg/logger"
)

// Runner runs one ingestion pass
type Runner interface {
	Run(ctx context.Context) (*ingestion.RunReport, error)
}

// IngestWorker runs news ingestion on the periodic runner
type IngestWorker struct {
	runner Runner
}

// NewIngestWorker creates new ingest worker
func NewIngestWorker(runner Runner) *IngestWorker {
	return &IngestWorker{runner: runner}
}

// Name returns worker name
func (w *IngestWorker) Name() string {
	return "news_ingest"
}

// Run executes one ingestion pass. A pass skipped because another one holds
// the lock is not an error.
func (w *IngestWorker) Run(ctx context.Context) error {
	report, err := w.runner.Run(ctx)
	if errors.Is(err, ingestion.ErrRunInProgress) {
		logger.Debug("ingestion already running, tick skipped")
		return nil
	}
	if err != nil {
		return err
	}

	logger.Info("scheduled ingestion finished",
		zap.Int("fetched", report.Fetched),
		zap.Int("new", report.New),
		zap.Int("failed_pairs", len(report.FailedPairs)),
		zap.Duration("duration", report.Duration),
	)
	return nil
}
