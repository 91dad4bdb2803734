package api

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// ReadinessStatus is the body of GET /ready
type ReadinessStatus struct {
	Ready     bool              `json:"ready"`
	Timestamp string            `json:"timestamp"`
	Uptime    string            `json:"uptime"`
	Checks    map[string]string `json:"checks"`
}

// handleHealth is the liveness check; 200 while the process is alive
func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady answers 200 only when the analyzer is loaded and every
// optional dependency is healthy
func (s *Server) handleReady(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	ready := true
	checks := make(map[string]string)

	if s.deps.Predictor != nil {
		checks["model"] = "loaded"
	} else {
		ready = false
		checks["model"] = "unavailable"
		if s.deps.PredictorErr != nil {
			checks["model"] = "unavailable: " + s.deps.PredictorErr.Error()
		}
	}

	for name, check := range s.deps.Checks {
		if err := check(ctx); err != nil {
			ready = false
			checks[name] = "unhealthy: " + err.Error()
			continue
		}
		checks[name] = "healthy"
	}

	status := ReadinessStatus{
		Ready:     ready,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Uptime:    time.Since(s.startTime).Round(time.Second).String(),
		Checks:    checks,
	}

	code := http.StatusOK
	if !ready {
		code = http.StatusServiceUnavailable
	}
	return c.JSON(code, status)
}
