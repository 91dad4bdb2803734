package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/selivandex/finvani-sentiment/internal/adapters/config"
	"github.com/selivandex/finvani-sentiment/internal/adapters/database"
	"github.com/selivandex/finvani-sentiment/internal/adapters/news"
	redisAdapter "github.com/selivandex/finvani-sentiment/internal/adapters/redis"
	"github.com/selivandex/finvani-sentiment/internal/adapters/storage"
	"github.com/selivandex/finvani-sentiment/internal/api"
	"github.com/selivandex/finvani-sentiment/internal/ingestion"
	"github.com/selivandex/finvani-sentiment/internal/metrics"
	"github.com/selivandex/finvani-sentiment/internal/sentiment"
	"github.com/selivandex/finvani-sentiment/internal/workers"
	"github.com/selivandex/finvani-sentiment/pkg/logger"
	"github.com/selivandex/finvani-sentiment/pkg/worker"
)

const ingestionLockTTL = 2 * time.Minute

func main() {
	// Setup signal handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nReceived interrupt signal, shutting down...")
		cancel()
	}()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := initConfig()
	if err != nil {
		return err
	}
	defer logger.Sync()

	logger.Info("finvani sentiment service starting...",
		zap.String("port", cfg.Server.Port),
		zap.String("data_dir", cfg.News.DataDir),
		zap.String("model_path", cfg.Model.Path),
	)

	// Optional infrastructure; the service runs on local files alone
	db := initDatabase(ctx, cfg)
	redisClient := initRedis(ctx, cfg)

	predictor, predictorErr := initPredictor(cfg, redisClient)

	store := storage.NewDailyStore(cfg.News.DataDir)
	ingester, repo := initIngester(cfg, store, db, redisClient)

	deps := api.Deps{
		Store:        store,
		Ingester:     ingester,
		PredictorErr: predictorErr,
		Checks:       make(map[string]api.HealthCheck),
	}
	if predictor != nil {
		deps.Predictor = predictor
	}
	if db != nil {
		deps.Checks["database"] = db.Health
	}
	if redisClient != nil {
		deps.Checks["redis"] = redisClient.Health
	}

	server := api.NewServer(ctx, deps, cfg.Server.Origins())

	if cfg.News.IngestOnStartup {
		logger.Info("scheduling startup ingestion")
		server.RunIngestion("startup")
	}

	group := startBackgroundWorkers(ctx, cfg, ingester, store, repo)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start(net.JoinHostPort("", cfg.Server.Port))
	}()

	select {
	case <-ctx.Done():
	case err := <-serverErr:
		if err != nil {
			logger.Error("api server failed", zap.Error(err))
		}
	}

	return performGracefulShutdown(cfg, server, group, db, redisClient)
}

// initConfig loads configuration and initializes logger
func initConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.File); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return cfg, nil
}

// initDatabase connects the Postgres article mirror and migrates it.
// Returns nil when disabled or unreachable.
func initDatabase(ctx context.Context, cfg *config.Config) *database.DB {
	if !cfg.Database.Enabled {
		return nil
	}

	db, err := database.New(ctx, &cfg.Database)
	if err != nil {
		logger.Warn("database not available, article mirror disabled", zap.Error(err))
		return nil
	}

	if err := database.RunMigrations(db.Conn(), cfg.Database.MigrationsPath); err != nil {
		logger.Warn("failed to run migrations, article mirror disabled", zap.Error(err))
		db.Close()
		return nil
	}

	logger.Info("article mirror enabled", zap.String("database", cfg.Database.Name))
	return db
}

// initRedis connects the prediction cache and ingestion lock backend.
// Returns nil when disabled or unreachable.
func initRedis(ctx context.Context, cfg *config.Config) *redisAdapter.Client {
	if !cfg.Redis.Enabled {
		return nil
	}

	client, err := redisAdapter.New(ctx, &cfg.Redis)
	if err != nil {
		logger.Warn("redis not available, prediction cache and ingestion lock disabled", zap.Error(err))
		return nil
	}

	logger.Info("redis connected", zap.String("addr", cfg.Redis.Addr()))
	return client
}

// initPredictor loads the analyzer. A failure leaves the service up with
// /analyze answering 503.
func initPredictor(cfg *config.Config, redisClient *redisAdapter.Client) (*sentiment.Service, error) {
	analyzer, err := sentiment.LoadAnalyzer(cfg.Model.Path, sentiment.Options{MaxLength: cfg.Model.MaxLength})
	if err != nil {
		logger.Error("failed to load sentiment model", zap.Error(err))
		metrics.SetModelLoaded(false)
		return nil, err
	}
	metrics.SetModelLoaded(true)

	var cache sentiment.PredictionCache
	if redisClient != nil {
		cache = redisClient.PredictionCache(cfg.Redis.CacheTTL, analyzer.ModelID())
	}

	logger.Info("sentiment analyzer ready",
		zap.String("source", analyzer.Source()),
		zap.String("model_id", analyzer.ModelID()),
		zap.Bool("cache", cache != nil),
	)
	return sentiment.NewService(analyzer, cache), nil
}

// initIngester wires the feed provider, daily store, mirror and lock
func initIngester(cfg *config.Config, store *storage.DailyStore, db *database.DB, redisClient *redisAdapter.Client) (*ingestion.Ingester, *news.Repository) {
	provider := news.NewGoogleNewsProvider("", cfg.News.FetchTimeout)

	var (
		sink ingestion.ArticleSink
		repo *news.Repository
	)
	if db != nil {
		repo = news.NewRepository(db.DB())
		sink = repo
	}

	var lock redisAdapter.RunLock
	if redisClient != nil {
		lock = redisClient.IngestionLock(ingestionLockTTL)
	}

	ingester := ingestion.New(provider, store, ingestion.Options{
		Queries:           cfg.News.Queries,
		Languages:         cfg.News.Languages,
		Concurrency:       cfg.News.FetchConcurrency,
		RequestsPerSecond: cfg.News.RequestsPerSecond,
	}, sink, lock)

	logger.Info("news ingester ready",
		zap.Strings("queries", cfg.News.Queries),
		zap.Int("languages", len(cfg.News.Languages)),
		zap.Bool("mirror", sink != nil),
		zap.Bool("distributed_lock", lock != nil),
	)
	return ingester, repo
}

// startBackgroundWorkers starts periodic ingestion and store stats
func startBackgroundWorkers(
	ctx context.Context,
	cfg *config.Config,
	ingester *ingestion.Ingester,
	store *storage.DailyStore,
	repo *news.Repository,
) *worker.WorkerGroup {
	group := worker.NewWorkerGroup(ctx)

	if cfg.News.IngestInterval > 0 {
		group.Add(workers.NewIngestWorker(ingester), cfg.News.IngestInterval)
	}

	if cfg.News.StatsInterval > 0 {
		var mirror workers.MirrorCounter
		if repo != nil {
			mirror = repo
		}
		group.Add(workers.NewStoreStatsWorker(store, mirror), cfg.News.StatsInterval, worker.WithImmediateRun())
	}

	group.Start()
	return group
}

// performGracefulShutdown stops the HTTP server, background work and connections
func performGracefulShutdown(
	cfg *config.Config,
	server *api.Server,
	group *worker.WorkerGroup,
	db *database.DB,
	redisClient *redisAdapter.Client,
) error {
	logger.Info("starting graceful shutdown...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("api server shutdown error", zap.Error(err))
	}

	group.Stop(5 * time.Second)

	if db != nil {
		logger.Info("closing database connection...")
		if err := db.Close(); err != nil {
			logger.Error("database close error", zap.Error(err))
		}
	}

	if redisClient != nil {
		logger.Info("closing redis connection...")
		if err := redisClient.Close(); err != nil {
			logger.Error("redis close error", zap.Error(err))
		}
	}

	select {
	case <-shutdownCtx.Done():
		logger.Warn("shutdown timeout exceeded")
		return fmt.Errorf("graceful shutdown timeout")
	default:
		logger.Info("shutdown completed successfully")
	}

	return nil
}
