package profile

import (
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/hrygo/quand/server/timezone"
)

// Profile is the configuration to start the interpreter server.
type Profile struct {
	// Mode can be "prod" or "dev" or "demo"
	Mode string
	// Addr is the binding address for server
	Addr string
	// Port is the binding port for server
	Port int
	// Version is the current version of server
	Version string

	// DefaultLocale is used when a request names no locale (default: fr)
	DefaultLocale string
	// Timezone decides which calendar day is "today", IANA name or empty for local
	Timezone string

	// Result cache
	CacheCapacity        int           // QUAND_CACHE_CAPACITY (default: 1000)
	CacheTTL             time.Duration // QUAND_CACHE_TTL (default: 5m)
	CacheCleanupInterval time.Duration // QUAND_CACHE_CLEANUP_INTERVAL (default: 1m)

	// Per-client rate limiting of the HTTP API; RateLimit <= 0 disables it
	RateLimit float64 // QUAND_RATE_LIMIT, requests per second (default: 10)
	RateBurst int     // QUAND_RATE_BURST (default: 20)

	// LogLevel is one of debug, info, warn, error
	LogLevel string
}

// Default returns a profile with every default applied.
func Default() *Profile {
	return &Profile{
		Mode:                 "demo",
		Port:                 8081,
		DefaultLocale:        "fr",
		CacheCapacity:        1000,
		CacheTTL:             5 * time.Minute,
		CacheCleanupInterval: time.Minute,
		RateLimit:            10,
		RateBurst:            20,
		LogLevel:             "info",
	}
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// ListenAddr joins Addr and Port.
func (p *Profile) ListenAddr() string {
	return net.JoinHostPort(p.Addr, strconv.Itoa(p.Port))
}

// SlogLevel maps LogLevel to a slog level, defaulting to info.
func (p *Profile) SlogLevel() slog.Level {
	switch strings.ToLower(p.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// Validate normalizes the profile and rejects values the server cannot run with.
func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}
	if p.Port <= 0 || p.Port > 65535 {
		return errors.Errorf("invalid port %d", p.Port)
	}

	p.Timezone = strings.TrimSpace(p.Timezone)
	if !timezone.IsValidTimezone(p.Timezone) {
		return errors.Errorf("invalid time zone %q", p.Timezone)
	}
	p.DefaultLocale = strings.ToLower(strings.TrimSpace(p.DefaultLocale))
	if p.DefaultLocale == "" {
		p.DefaultLocale = "fr"
	}

	if p.CacheCapacity <= 0 {
		return errors.Errorf("cache capacity must be positive, got %d", p.CacheCapacity)
	}
	if p.CacheTTL <= 0 {
		return errors.Errorf("cache ttl must be positive, got %s", p.CacheTTL)
	}
	if p.CacheCleanupInterval <= 0 {
		p.CacheCleanupInterval = time.Minute
	}

	if p.RateLimit > 0 && p.RateBurst <= 0 {
		p.RateBurst = int(p.RateLimit)
		if p.RateBurst < 1 {
			p.RateBurst = 1
		}
	}

	switch strings.ToLower(p.LogLevel) {
	case "", "debug", "info", "warn", "error":
	default:
		slog.Warn("unknown log level, using info", slog.String("level", p.LogLevel))
		p.LogLevel = "info"
	}
	return nil
}

// String summarizes the profile for startup logs.
func (p *Profile) String() string {
	return fmt.Sprintf("mode=%s addr=%s locale=%s cache=%d/%s rate=%.1f/s burst=%d",
		p.Mode, p.ListenAddr(), p.DefaultLocale, p.CacheCapacity, p.CacheTTL, p.RateLimit, p.RateBurst)
}
