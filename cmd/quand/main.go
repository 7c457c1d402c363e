// Package main provides the quand binary: a CLI and HTTP server that turn
// French scheduling phrases into candidate calendar dates.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hrygo/quand/internal/profile"
	"github.com/hrygo/quand/plugin/ai/temporal"
	"github.com/hrygo/quand/server"
	apiv1 "github.com/hrygo/quand/server/router/api/v1"
	"github.com/hrygo/quand/server/timezone"
)

var version = "0.1.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	return newRootCmdWith(viper.New())
}

// newRootCmdWith binds every persistent flag and QUAND_* variable to v.
func newRootCmdWith(v *viper.Viper) *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           "quand",
		Short:         "Interpret French scheduling phrases as calendar dates",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if configPath != "" {
				v.SetConfigFile(configPath)
				if err := v.ReadInConfig(); err != nil {
					return errors.Wrapf(err, "failed to read config %s", configPath)
				}
			}
			level := (&profile.Profile{LogLevel: v.GetString("log-level")}).SlogLevel()
			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
			return nil
		},
	}

	defaults := profile.Default()
	flags := cmd.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", "", "config file (yaml, json or toml)")
	flags.String("mode", defaults.Mode, `mode of server, can be "prod" or "dev" or "demo"`)
	flags.String("addr", defaults.Addr, "address of server")
	flags.Int("port", defaults.Port, "port of server")
	flags.String("locale", defaults.DefaultLocale, "default locale")
	flags.String("timezone", defaults.Timezone, "IANA time zone deciding the current day (default: local)")
	flags.Int("cache-capacity", defaults.CacheCapacity, "maximum cached results")
	flags.Duration("cache-ttl", defaults.CacheTTL, "lifetime of a cached result")
	flags.Duration("cache-cleanup-interval", defaults.CacheCleanupInterval, "sweep interval of expired results")
	flags.Float64("rate-limit", defaults.RateLimit, "API requests per second per client, 0 disables limiting")
	flags.Int("rate-burst", defaults.RateBurst, "API request burst per client")
	flags.String("log-level", defaults.LogLevel, "log level (debug, info, warn, error)")
	if err := v.BindPFlags(flags); err != nil {
		panic(err)
	}
	v.SetEnvPrefix("quand")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd.AddCommand(newParseCmd(v), newServeCmd(v), newVersionCmd())
	return cmd
}

// loadProfile reads the merged flag, env and file configuration.
func loadProfile(v *viper.Viper) (*profile.Profile, error) {
	p := &profile.Profile{
		Mode:                 v.GetString("mode"),
		Addr:                 v.GetString("addr"),
		Port:                 v.GetInt("port"),
		Version:              version,
		DefaultLocale:        v.GetString("locale"),
		Timezone:             v.GetString("timezone"),
		CacheCapacity:        v.GetInt("cache-capacity"),
		CacheTTL:             v.GetDuration("cache-ttl"),
		CacheCleanupInterval: v.GetDuration("cache-cleanup-interval"),
		RateLimit:            v.GetFloat64("rate-limit"),
		RateBurst:            v.GetInt("rate-burst"),
		LogLevel:             v.GetString("log-level"),
	}
	if err := p.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return p, nil
}

func newParseCmd(v *viper.Viper) *cobra.Command {
	var (
		validate    bool
		autoCorrect bool
		today       string
	)

	cmd := &cobra.Command{
		Use:   "parse <text>",
		Short: "Interpret a phrase and print the result as JSON",
		Example: `  quand parse "réunion équipe semaine prochaine"
  quand parse "samedi 23 ou dimanche 24" --today 2026-10-21 --timezone Europe/Paris --validate`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProfile(v)
			if err != nil {
				return err
			}
			clock, err := referenceClock(today, p.Timezone)
			if err != nil {
				return err
			}

			registry, err := temporal.LoadRegistry()
			if err != nil {
				return errors.Wrap(err, "failed to load locales")
			}
			svc := temporal.NewService(registry,
				temporal.WithClock(clock),
				temporal.WithLogger(slog.Default()),
			)
			validator := temporal.NewValidator(clock)

			result, err := svc.Parse(cmd.Context(), strings.Join(args, " "), p.DefaultLocale)
			if err != nil {
				return err
			}
			if autoCorrect {
				result = validator.AutoCorrect(result)
			}
			resp := apiv1.TemporalResponse{Result: result}
			if validate {
				vr := validator.Validate(result)
				resp.Validation = &vr
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			enc.SetEscapeHTML(false)
			return enc.Encode(resp)
		},
	}

	cmd.Flags().BoolVar(&validate, "validate", false, "include a validation report")
	cmd.Flags().BoolVar(&autoCorrect, "autocorrect", false, "auto-correct the allowed dates")
	cmd.Flags().StringVar(&today, "today", "", "reference date as YYYY-MM-DD (default: now)")
	return cmd
}

// referenceClock returns the clock the interpreter reads "today" from,
// pinned to a day when one is given.
func referenceClock(today, tz string) (func() time.Time, error) {
	loc, err := timezone.ParseTimezone(tz)
	if err != nil {
		return nil, err
	}
	if today == "" {
		return timezone.Clock(loc), nil
	}
	clock, err := timezone.PinnedClock(today, loc)
	if err != nil {
		return nil, errors.Wrap(err, "invalid --today")
	}
	return clock, nil
}

func newServeCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the interpreter over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := loadProfile(v)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			s, err := server.NewServer(ctx, p, slog.Default())
			if err != nil {
				return errors.Wrap(err, "failed to create server")
			}
			if err := s.Start(ctx); err != nil {
				return errors.Wrap(err, "failed to start server")
			}

			<-ctx.Done()
			s.Shutdown(context.Background())
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "quand version %s\n", version)
		},
	}
}
