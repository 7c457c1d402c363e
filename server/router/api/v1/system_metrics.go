package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HealthResponse represents the liveness report of the server.
type HealthResponse struct {
	Status  string   `json:"status"`
	Version string   `json:"version,omitempty"`
	Mode    string   `json:"mode"`
	Locales []string `json:"locales"`
}

// GetHealth reports liveness and the configured locales.
// GET /healthz
func (s *APIV1Service) GetHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{
		Status:  "ok",
		Version: s.Profile.Version,
		Mode:    s.Profile.Mode,
		Locales: s.TemporalService.Locales(),
	})
}

// GetMetrics exposes the Prometheus collectors.
// GET /metrics
func (s *APIV1Service) GetMetrics(c echo.Context) error {
	promhttp.HandlerFor(s.MetricsGatherer, promhttp.HandlerOpts{}).ServeHTTP(c.Response(), c.Request())
	return nil
}
