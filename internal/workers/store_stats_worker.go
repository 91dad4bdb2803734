package workers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/selivandex/finvani-sentiment/internal/metrics"
	"github.com/selivandex/finvani-sentiment/pkg/logger"
	"github.com/selivandex/finvani-sentiment/pkg/models"
)

// FileLister lists the daily data files
type FileLister interface {
	Exists() bool
	ListFiles() ([]models.DataFile, error)
}

// MirrorCounter counts mirrored articles per language
type MirrorCounter interface {
	CountByLanguage(ctx context.Context) (map[string]int, error)
}

// StoreStatsWorker publishes storage sizes as gauges
type StoreStatsWorker struct {
	files  FileLister
	mirror MirrorCounter
}

// NewStoreStatsWorker creates new store stats worker. mirror may be nil when
// the database mirror is disabled.
func NewStoreStatsWorker(files FileLister, mirror MirrorCounter) *StoreStatsWorker {
	return &StoreStatsWorker{files: files, mirror: mirror}
}

// Name returns worker name
func (w *StoreStatsWorker) Name() string {
	return "store_stats"
}

// Run executes one iteration
func (w *StoreStatsWorker) Run(ctx context.Context) error {
	count := 0
	if w.files.Exists() {
		files, err := w.files.ListFiles()
		if err != nil {
			return fmt.Errorf("failed to list data files: %w", err)
		}
		count = len(files)
	}

	var mirrored map[string]int
	if w.mirror != nil {
		var err error
		mirrored, err = w.mirror.CountByLanguage(ctx)
		if err != nil {
			// file stats are still worth publishing
			logger.Warn("failed to count mirrored articles", zap.Error(err))
		}
	}

	metrics.SetStoreStats(count, mirrored)

	logger.Debug("store stats updated",
		zap.Int("files", count),
		zap.Int("languages_mirrored", len(mirrored)),
	)
	return nil
}
