package api

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/selivandex/finvani-sentiment/internal/adapters/storage"
	"github.com/selivandex/finvani-sentiment/internal/ingestion"
	"github.com/selivandex/finvani-sentiment/pkg/logger"
	"github.com/selivandex/finvani-sentiment/pkg/models"
)

// Predictor classifies headline sentiment
type Predictor interface {
	Predict(ctx context.Context, text string) (models.Prediction, error)
}

// Ingester runs news ingestion
type Ingester interface {
	Run(ctx context.Context) (*ingestion.RunReport, error)
	Running() bool
	LastRun() (ingestion.RunReport, bool)
}

// HealthCheck reports the health of an optional dependency
type HealthCheck func(ctx context.Context) error

// Deps are the services behind the HTTP API
type Deps struct {
	// Predictor is nil when the model failed to initialize
	Predictor Predictor
	// PredictorErr is the initialization failure reported by /ready
	PredictorErr error
	Store        *storage.DailyStore
	Ingester     Ingester
	Checks       map[string]HealthCheck
}

// Server is the HTTP API
type Server struct {
	echo *echo.Echo
	deps Deps

	bgCtx    context.Context
	bgCancel context.CancelFunc
	bg       sync.WaitGroup

	shuffleMu sync.Mutex
	rng       *rand.Rand
	startTime time.Time
}

// NewServer builds the router. origins is the CORS allow-list.
func NewServer(ctx context.Context, deps Deps, origins []string) *Server {
	bgCtx, cancel := context.WithCancel(ctx)

	s := &Server{
		echo:      echo.New(),
		deps:      deps,
		bgCtx:     bgCtx,
		bgCancel:  cancel,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		startTime: time.Now(),
	}

	e := s.echo
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler

	e.Use(middleware.Recover())
	e.Use(requestLogger())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     origins,
		AllowMethods:     []string{echo.GET, echo.POST, echo.PUT, echo.PATCH, echo.DELETE, echo.OPTIONS, echo.HEAD},
		AllowCredentials: true,
	}))

	e.GET("/health", s.handleHealth)
	e.GET("/ready", s.handleReady)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	e.POST("/analyze", s.handleAnalyze)
	e.POST("/analyze/", s.handleAnalyze)

	news := e.Group("/news")
	news.GET("/latest", s.handleLatestNews)
	news.GET("/status", s.handleNewsStatus)
	news.POST("/refresh", s.handleRefresh)

	return s
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start serves on addr until Shutdown
func (s *Server) Start(addr string) error {
	logger.Info("api server starting", zap.String("addr", addr))

	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests, cancels background ingestion and waits
// for it until ctx expires
func (s *Server) Shutdown(ctx context.Context) error {
	logger.Info("stopping api server...")
	err := s.echo.Shutdown(ctx)

	s.bgCancel()
	done := make(chan struct{})
	go func() {
		s.bg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		logger.Warn("background ingestion did not stop before shutdown timeout")
	}

	return err
}

// errorHandler renders every error as {"detail": message}
func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	var detail any = http.StatusText(code)

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		detail = he.Message
		if he.Internal != nil {
			logger.Debug("request error", zap.Error(he.Internal))
		}
	} else {
		logger.Error("unhandled request error", zap.Error(err))
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, map[string]any{"detail": detail})
	}
	if err != nil {
		logger.Error("failed to write error response", zap.Error(err))
	}
}

func requestLogger() echo.MiddlewareFunc {
	log := logger.Named("http")

	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		Skipper: func(c echo.Context) bool {
			path := c.Request().URL.Path
			return path == "/health" || path == "/metrics"
		},
		LogStatus:   true,
		LogURI:      true,
		LogError:    true,
		LogMethod:   true,
		LogLatency:  true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
			}
			if v.Error != nil {
				log.Warn("request failed", append(fields, zap.Error(v.Error))...)
				return nil
			}
			log.Debug("request completed", fields...)
			return nil
		},
	})
}
