package metrics

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "quand"

// Service implements MetricsService with Prometheus collectors.
type Service struct {
	parses          *prometheus.CounterVec
	parseLatency    *prometheus.HistogramVec
	cacheLookups    *prometheus.CounterVec
	grammarFailures *prometheus.CounterVec
	validations     *prometheus.CounterVec
	findings        *prometheus.CounterVec
}

// NewService registers the interpreter collectors on reg.
func NewService(reg prometheus.Registerer) *Service {
	factory := promauto.With(reg)

	return &Service{
		parses: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "parse_total",
			Help:      "Interpreter calls by locale and request type.",
		}, []string{"locale", "type"}),
		parseLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "parse_duration_seconds",
			Help:      "Interpreter latency.",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05, .1},
		}, []string{"locale"}),
		cacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Result cache lookups by outcome.",
		}, []string{"result"}),
		grammarFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "grammar_failures_total",
			Help:      "Recovered date grammar failures.",
		}, []string{"locale"}),
		validations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validations_total",
			Help:      "Validation passes by outcome.",
		}, []string{"valid"}),
		findings: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validation_findings_total",
			Help:      "Validation errors and warnings.",
		}, []string{"severity"}),
	}
}

// RecordParse records one interpreter call.
func (s *Service) RecordParse(_ context.Context, locale, requestType string, latency time.Duration, cacheHit bool) {
	s.parses.WithLabelValues(locale, requestType).Inc()
	s.parseLatency.WithLabelValues(locale).Observe(latency.Seconds())
	if cacheHit {
		s.cacheLookups.WithLabelValues("hit").Inc()
	} else {
		s.cacheLookups.WithLabelValues("miss").Inc()
	}
}

// RecordGrammarFailure records a recovered grammar failure.
func (s *Service) RecordGrammarFailure(_ context.Context, locale string) {
	s.grammarFailures.WithLabelValues(locale).Inc()
}

// RecordValidation records the outcome of a validation pass.
func (s *Service) RecordValidation(_ context.Context, valid bool, errorCount, warningCount int) {
	s.validations.WithLabelValues(strconv.FormatBool(valid)).Inc()
	s.findings.WithLabelValues("error").Add(float64(errorCount))
	s.findings.WithLabelValues("warning").Add(float64(warningCount))
}

// Ensure Service implements MetricsService
var _ MetricsService = (*Service)(nil)
