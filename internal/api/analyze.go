package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/selivandex/finvani-sentiment/pkg/logger"
	"github.com/selivandex/finvani-sentiment/pkg/models"
)

const maxAnalyzeBody = 1 << 20

func (s *Server) handleAnalyze(c echo.Context) error {
	if s.deps.Predictor == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Sentiment model is not initialized.")
	}

	var req models.AnalysisRequest
	dec := json.NewDecoder(io.LimitReader(c.Request().Body, maxAnalyzeBody))
	if err := dec.Decode(&req); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return echo.NewHTTPError(http.StatusUnprocessableEntity, "text must be a string")
		}
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid JSON body").SetInternal(err)
	}
	if req.Text == nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "text is required")
	}

	p, err := s.deps.Predictor.Predict(c.Request().Context(), *req.Text)
	if err != nil {
		logger.Error("prediction error", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, p)
}
