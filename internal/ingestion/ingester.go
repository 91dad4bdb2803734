package ingestion

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/selivandex/finvani-sentiment/internal/adapters/news"
	"github.com/selivandex/finvani-sentiment/internal/adapters/redis"
	"github.com/selivandex/finvani-sentiment/internal/adapters/storage"
	"github.com/selivandex/finvani-sentiment/internal/metrics"
	"github.com/selivandex/finvani-sentiment/pkg/logger"
	"github.com/selivandex/finvani-sentiment/pkg/models"
)

// Run outcomes
const (
	StatusOK      = "ok"
	StatusSkipped = "skipped"
	StatusFailed  = "failed"
)

// ErrRunInProgress is returned when another run holds the ingestion lock
var ErrRunInProgress = errors.New("ingestion already running")

// ArticleSink receives the new articles of each run in addition to the daily file
type ArticleSink interface {
	SaveArticles(ctx context.Context, articles []models.Article) (int, error)
}

// Options configures an Ingester
type Options struct {
	Queries           []string
	Languages         []string
	Concurrency       int
	RequestsPerSecond float64
}

// FailedPair identifies a (query, language) fetch that produced nothing
type FailedPair struct {
	Query    string `json:"query"`
	Language string `json:"language"`
	Error    string `json:"error"`
}

// RunReport summarizes one ingestion run
type RunReport struct {
	Path        string        `json:"path"`
	Pairs       int           `json:"pairs"`
	Fetched     int           `json:"fetched"`
	New         int           `json:"new"`
	Mirrored    int           `json:"mirrored"`
	FailedPairs []FailedPair  `json:"failed_pairs,omitempty"`
	StartedAt   time.Time     `json:"started_at"`
	Duration    time.Duration `json:"duration"`
	Status      string        `json:"status"`
}

// Ingester fetches every (query, language) feed and appends unseen
// articles to today's file
type Ingester struct {
	provider news.FeedProvider
	store    *storage.DailyStore
	sink     ArticleSink
	lock     redis.RunLock
	limiter  *rate.Limiter
	opts     Options

	runMu   sync.Mutex
	running atomic.Bool

	mu      sync.Mutex
	lastRun *RunReport
}

// New creates an ingester. sink and lock may be nil.
func New(provider news.FeedProvider, store *storage.DailyStore, opts Options, sink ArticleSink, lock redis.RunLock) *Ingester {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}
	if lock == nil {
		lock = redis.NoopLock{}
	}

	return &Ingester{
		provider: provider,
		store:    store,
		sink:     sink,
		lock:     lock,
		limiter:  rate.NewLimiter(limit, opts.Concurrency),
		opts:     opts,
	}
}

// Running reports whether a run is in progress in this process
func (in *Ingester) Running() bool {
	return in.running.Load()
}

// LastRun returns the report of the most recent finished run, if any
func (in *Ingester) LastRun() (RunReport, bool) {
	in.mu.Lock()
	defer in.mu.Unlock()

	if in.lastRun == nil {
		return RunReport{}, false
	}
	return *in.lastRun, true
}

// Run performs one ingestion pass. Runs in the same process are serialized;
// runs across processes are serialized by the lock and a held lock skips
// the run with ErrRunInProgress.
func (in *Ingester) Run(ctx context.Context) (*RunReport, error) {
	in.runMu.Lock()
	defer in.runMu.Unlock()

	in.running.Store(true)
	defer in.running.Store(false)

	report := &RunReport{
		StartedAt: time.Now(),
		Pairs:     len(in.opts.Queries) * len(in.opts.Languages),
	}

	acquired, err := in.lock.TryAcquire(ctx)
	if err != nil {
		return in.finish(report, StatusFailed, nil), fmt.Errorf("failed to acquire ingestion lock: %w", err)
	}
	if !acquired {
		logger.Info("ingestion skipped, another run holds the lock")
		return in.finish(report, StatusSkipped, nil), ErrRunInProgress
	}
	defer func() {
		if err := in.lock.Release(context.Background()); err != nil {
			logger.Warn("failed to release ingestion lock", zap.Error(err))
		}
	}()

	report.Path = in.store.TodayPath()
	seen, err := in.store.LoadIDs(report.Path)
	if err != nil {
		return in.finish(report, StatusFailed, nil), fmt.Errorf("failed to load existing ids: %w", err)
	}

	logger.Info("starting ingestion",
		zap.Int("queries", len(in.opts.Queries)),
		zap.Int("languages", len(in.opts.Languages)),
		zap.Int("known_ids", len(seen)),
		zap.String("path", report.Path),
	)

	results := in.fetchAll(ctx, report)

	var fresh []models.Article
	newByLang := make(map[string]int)
	for _, batch := range results {
		report.Fetched += len(batch)
		for _, a := range batch {
			if _, dup := seen[a.ID]; dup {
				continue
			}
			seen[a.ID] = struct{}{}
			fresh = append(fresh, a)
			newByLang[a.Language]++
		}
	}

	if err := in.store.AppendTo(report.Path, fresh); err != nil {
		return in.finish(report, StatusFailed, nil), fmt.Errorf("failed to append articles: %w", err)
	}
	report.New = len(fresh)

	if in.sink != nil && len(fresh) > 0 {
		mirrored, err := in.sink.SaveArticles(ctx, fresh)
		if err != nil {
			logger.Error("failed to mirror articles", zap.Error(err))
		}
		report.Mirrored = mirrored
	}

	in.finish(report, StatusOK, newByLang)

	logger.Info("ingestion finished",
		zap.Int("fetched", report.Fetched),
		zap.Int("new", report.New),
		zap.Int("failed_pairs", len(report.FailedPairs)),
		zap.Duration("duration", report.Duration),
		zap.String("path", report.Path),
	)

	return report, nil
}

// fetchAll fetches every pair concurrently. The returned batches keep
// query-major, language-minor order regardless of completion order, so
// duplicate resolution is deterministic.
func (in *Ingester) fetchAll(ctx context.Context, report *RunReport) [][]models.Article {
	pairs := len(in.opts.Queries) * len(in.opts.Languages)
	results := make([][]models.Article, pairs)
	failures := make([]error, pairs)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(in.opts.Concurrency)

	for qi, query := range in.opts.Queries {
		for li, lang := range in.opts.Languages {
			idx := qi*len(in.opts.Languages) + li
			query, lang := query, lang
			g.Go(func() error {
				if err := in.limiter.Wait(gctx); err != nil {
					failures[idx] = err
					return nil
				}

				articles, err := in.provider.FetchFeed(gctx, query, lang)
				if err != nil {
					logger.Warn("feed fetch failed",
						zap.String("query", query),
						zap.String("lang", lang),
						zap.Error(err),
					)
					failures[idx] = err
					return nil
				}

				logger.Debug("feed fetched",
					zap.String("query", query),
					zap.String("lang", lang),
					zap.Int("entries", len(articles)),
				)
				results[idx] = articles
				return nil
			})
		}
	}
	_ = g.Wait()

	for idx, err := range failures {
		if err == nil {
			continue
		}
		report.FailedPairs = append(report.FailedPairs, FailedPair{
			Query:    in.opts.Queries[idx/len(in.opts.Languages)],
			Language: in.opts.Languages[idx%len(in.opts.Languages)],
			Error:    err.Error(),
		})
	}

	return results
}

func (in *Ingester) finish(report *RunReport, status string, newByLang map[string]int) *RunReport {
	report.Status = status
	report.Duration = time.Since(report.StartedAt)

	failedByLang := make(map[string]int)
	for _, f := range report.FailedPairs {
		failedByLang[f.Language]++
	}
	metrics.RecordIngestion(status, report.Duration.Seconds(), newByLang, failedByLang)

	if status != StatusSkipped {
		snapshot := *report
		in.mu.Lock()
		in.lastRun = &snapshot
		in.mu.Unlock()
	}
	return report
}
