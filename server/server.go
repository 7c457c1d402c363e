package server

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/hrygo/quand/internal/profile"
	"github.com/hrygo/quand/plugin/ai/cache"
	"github.com/hrygo/quand/plugin/ai/metrics"
	"github.com/hrygo/quand/plugin/ai/temporal"
	"github.com/hrygo/quand/server/internal/observability"
	"github.com/hrygo/quand/server/middleware"
	apiv1 "github.com/hrygo/quand/server/router/api/v1"
	"github.com/hrygo/quand/server/timezone"
)

type Server struct {
	Profile *profile.Profile

	TemporalService *temporal.Service

	echoServer   *echo.Echo
	cacheService *cache.Service[*temporal.ParsedTemporalInput]
	logger       *slog.Logger
}

func NewServer(ctx context.Context, profile *profile.Profile, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}

	loc, err := timezone.ParseTimezone(profile.Timezone)
	if err != nil {
		return nil, errors.Wrap(err, "failed to resolve time zone")
	}
	clock := timezone.Clock(loc)

	registry, err := temporal.LoadRegistry()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load locales")
	}
	defaultLocale, ok := registry.Get(profile.DefaultLocale)
	if !ok {
		return nil, errors.Errorf("default locale %q is not configured", profile.DefaultLocale)
	}
	// Compile the default grammar up front; a failure only degrades results.
	if err := defaultLocale.Grammar.Load(ctx); err != nil {
		logger.Warn("date grammar unavailable at startup", slog.String("locale", defaultLocale.Key), slog.Any("error", err))
	}

	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metricsService := metrics.NewService(promRegistry)

	cacheService := cache.NewService[*temporal.ParsedTemporalInput](cache.ServiceConfig{
		Capacity:        profile.CacheCapacity,
		DefaultTTL:      profile.CacheTTL,
		CleanupInterval: profile.CacheCleanupInterval,
	})
	temporalService := temporal.NewService(registry,
		temporal.WithCache(temporal.NewResultCache(cacheService)),
		temporal.WithMetrics(metricsService),
		temporal.WithLogger(logger),
		temporal.WithClock(clock),
	)

	echoServer := echo.New()
	echoServer.HideBanner = true
	echoServer.HidePort = true
	echoServer.Use(echomw.RecoverWithConfig(echomw.RecoverConfig{
		DisablePrintStack: !profile.IsDev(),
	}))
	echoServer.Use(observability.RequestLogger(logger))

	apiV1Service := apiv1.NewAPIV1Service(profile, temporalService, temporal.NewValidator(clock))
	apiV1Service.MetricsService = metricsService
	apiV1Service.MetricsGatherer = promRegistry
	apiV1Service.Logger = logger
	if profile.RateLimit > 0 {
		apiV1Service.RateLimiter = middleware.NewRateLimiter(profile.RateLimit, profile.RateBurst)
	}
	apiV1Service.RegisterRoutes(echoServer)

	return &Server{
		Profile:         profile,
		TemporalService: temporalService,
		echoServer:      echoServer,
		cacheService:    cacheService,
		logger:          logger,
	}, nil
}

// Handler exposes the HTTP routes without binding a port.
func (s *Server) Handler() http.Handler {
	return s.echoServer
}

// Start binds the listener and serves in the background.
func (s *Server) Start(_ context.Context) error {
	listener, err := net.Listen("tcp", s.Profile.ListenAddr())
	if err != nil {
		return errors.Wrap(err, "failed to listen")
	}
	s.echoServer.Listener = listener

	go func() {
		if err := s.echoServer.Start(s.Profile.ListenAddr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("failed to start echo server", slog.Any("error", err))
		}
	}()
	s.logger.Info("server started", slog.String("addr", listener.Addr().String()), slog.String("profile", s.Profile.String()))
	return nil
}

// Addr returns the bound address once Start has succeeded.
func (s *Server) Addr() net.Addr {
	if s.echoServer.Listener == nil {
		return nil
	}
	return s.echoServer.Listener.Addr()
}

// Shutdown stops serving and releases the cache sweeper.
func (s *Server) Shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := s.echoServer.Shutdown(ctx); err != nil {
		s.logger.Error("failed to shutdown server", slog.Any("error", err))
	}
	s.cacheService.Close()
	s.logger.Info("server stopped properly")
}
