package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/yubin-park/quizpin-server/internal/config"
)

func main() {
	cfg := config.Default()
	cobra.CheckErr(newCmd(cfg).Execute())
}

func newCmd(cfg *config.Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("QUIZPIN")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "quizpin-server",
		Short:         "Coordinates live multi-party quiz sessions: PIN rooms, score intake, leaderboards.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.Bind, "bind", "b", cfg.Bind, "address to bind to (env: QUIZPIN_BIND)")
	fs.IntVarP(&cfg.Port, "port", "p", cfg.Port, "port to listen on (env: QUIZPIN_PORT)")
	fs.StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "directory for leaderboard records (env: QUIZPIN_DATA_DIR)")
	fs.StringVar(&cfg.PublicURL, "public-url", cfg.PublicURL, "base URL encoded in join QR codes; derived from the request when empty (env: QUIZPIN_PUBLIC_URL)")
	fs.DurationVar(&cfg.RoomTTL, "room-ttl", cfg.RoomTTL, "time before idle rooms are evicted, 0 disables (env: QUIZPIN_ROOM_TTL)")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn, error (env: QUIZPIN_LOG_LEVEL)")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format: text or json (env: QUIZPIN_LOG_FORMAT)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})

	return cmd
}

func setupLogger(cfg *config.Config) {
	var h slog.Handler
	opts := &slog.HandlerOptions{}

	switch cfg.LogLevel {
	case "debug":
		opts.Level = slog.LevelDebug
	case "warn":
		opts.Level = slog.LevelWarn
	case "error":
		opts.Level = slog.LevelError
	default:
		opts.Level = slog.LevelInfo
	}

	switch cfg.LogFormat {
	case "json":
		h = slog.NewJSONHandler(os.Stdout, opts)
	default:
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(h))
}

func run(ctx context.Context, cfg *config.Config) error {
	setupLogger(cfg)
	return serve(ctx, cfg)
}
