package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/selivandex/finvani-sentiment/internal/adapters/storage"
	"github.com/selivandex/finvani-sentiment/internal/ingestion"
	"github.com/selivandex/finvani-sentiment/pkg/logger"
	"github.com/selivandex/finvani-sentiment/pkg/models"
)

const (
	// latestLimit caps /news/latest responses
	latestLimit = 50
	// shufflePool is how many matching records are read before shuffling
	shufflePool = 200
)

// StatusResponse is the body of GET /news/status
type StatusResponse struct {
	Status    string               `json:"status"`
	Message   string               `json:"message,omitempty"`
	Count     *int                 `json:"count,omitempty"`
	Files     []models.DataFile    `json:"files"`
	Path      string               `json:"path,omitempty"`
	Ingesting bool                 `json:"ingesting"`
	LastRun   *ingestion.RunReport `json:"last_run,omitempty"`
}

// RefreshResponse is the body of POST /news/refresh
type RefreshResponse struct {
	Message string `json:"message"`
	RunID   string `json:"run_id"`
}

func (s *Server) handleLatestNews(c echo.Context) error {
	lang := c.QueryParam("lang")
	randomize, err := parseBool(c.QueryParam("randomize"))
	if err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "randomize must be a boolean")
	}

	latest, err := s.deps.Store.LatestFile()
	if errors.Is(err, storage.ErrNoData) {
		return c.JSON(http.StatusOK, []models.PlaceholderArticle{models.NoDataPlaceholder()})
	}
	if err != nil {
		logger.Error("failed to locate data file", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Error processing news data")
	}

	articles := make([]map[string]any, 0, latestLimit)
	err = s.deps.Store.ReadArticles(latest, func(record map[string]any) bool {
		if lang != "" {
			if l, _ := record["language"].(string); l != lang {
				return true
			}
		}
		articles = append(articles, record)

		if randomize {
			return len(articles) < shufflePool
		}
		return len(articles) < latestLimit
	})
	if err != nil {
		logger.Error("error reading data file", zap.String("path", latest), zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Error processing news data")
	}

	if randomize {
		s.shuffleMu.Lock()
		s.rng.Shuffle(len(articles), func(i, j int) { articles[i], articles[j] = articles[j], articles[i] })
		s.shuffleMu.Unlock()
	}

	if len(articles) > latestLimit {
		articles = articles[:latestLimit]
	}
	return c.JSON(http.StatusOK, articles)
}

func (s *Server) handleNewsStatus(c echo.Context) error {
	store := s.deps.Store
	if !store.Exists() {
		return c.JSON(http.StatusOK, StatusResponse{
			Status:  "error",
			Message: "Data directory does not exist",
			Files:   []models.DataFile{},
		})
	}

	files, err := store.ListFiles()
	if err != nil {
		logger.Error("failed to list data files", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Error listing data files")
	}

	count := len(files)
	resp := StatusResponse{
		Status: "ok",
		Count:  &count,
		Files:  files,
		Path:   store.AbsDir(),
	}
	if s.deps.Ingester != nil {
		resp.Ingesting = s.deps.Ingester.Running()
		if last, ok := s.deps.Ingester.LastRun(); ok {
			resp.LastRun = &last
		}
	}

	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleRefresh(c echo.Context) error {
	if s.deps.Ingester == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Ingestion is not configured.")
	}

	runID := uuid.NewString()
	s.RunIngestion(runID)

	return c.JSON(http.StatusOK, RefreshResponse{
		Message: "Ingestion started in background. Please wait a few moments and refresh.",
		RunID:   runID,
	})
}

// RunIngestion starts an ingestion run in the background. Failures are
// logged only.
func (s *Server) RunIngestion(runID string) {
	s.bg.Add(1)
	go func() {
		defer s.bg.Done()
		runBackgroundIngestion(s.bgCtx, s.deps.Ingester, runID)
	}()
}

func runBackgroundIngestion(ctx context.Context, in Ingester, runID string) {
	logger.Info("starting background ingestion task", zap.String("run_id", runID))

	report, err := in.Run(ctx)
	switch {
	case errors.Is(err, ingestion.ErrRunInProgress):
		logger.Info("background ingestion skipped", zap.String("run_id", runID))
	case err != nil:
		logger.Error("background ingestion failed", zap.String("run_id", runID), zap.Error(err))
	default:
		logger.Info("background ingestion task completed",
			zap.String("run_id", runID),
			zap.Int("new", report.New),
		)
	}
}

// parseBool accepts the boolean spellings common in query strings
func parseBool(v string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "0", "false", "f", "no", "n", "off":
		return false, nil
	case "1", "true", "t", "yes", "y", "on":
		return true, nil
	}
	return false, errors.New("invalid boolean")
}
