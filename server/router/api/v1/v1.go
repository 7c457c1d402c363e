package v1

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hrygo/quand/internal/profile"
	"github.com/hrygo/quand/plugin/ai/metrics"
	"github.com/hrygo/quand/plugin/ai/temporal"
	"github.com/hrygo/quand/server/middleware"
)

// maxRequestBody bounds JSON request bodies.
const maxRequestBody = "64K"

type APIV1Service struct {
	Profile         *profile.Profile
	TemporalService *temporal.Service
	Validator       *temporal.Validator
	MetricsService  metrics.MetricsService
	MetricsGatherer prometheus.Gatherer
	RateLimiter     *middleware.RateLimiter
	Logger          *slog.Logger
}

func NewAPIV1Service(profile *profile.Profile, temporalService *temporal.Service, validator *temporal.Validator) *APIV1Service {
	return &APIV1Service{
		Profile:         profile,
		TemporalService: temporalService,
		Validator:       validator,
		MetricsService:  metrics.Nop{},
		Logger:          slog.Default(),
	}
}

// RegisterRoutes registers the JSON API and the operational endpoints with
// the given Echo instance.
func (s *APIV1Service) RegisterRoutes(echoServer *echo.Echo) {
	echoServer.GET("/healthz", s.GetHealth)
	if s.MetricsGatherer != nil {
		echoServer.GET("/metrics", s.GetMetrics)
	}

	apiGroup := echoServer.Group("/api/v1")
	apiGroup.Use(echomw.BodyLimit(maxRequestBody))
	apiGroup.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
	}))
	if s.RateLimiter != nil {
		apiGroup.Use(s.RateLimiter.Middleware())
	}

	apiGroup.GET("/temporal/locales", s.ListLocales)
	apiGroup.POST("/temporal/parse", s.ParseTemporal)
	apiGroup.POST("/temporal/validate", s.ValidateTemporal)
	apiGroup.DELETE("/temporal/cache", s.ClearTemporalCache)
}
