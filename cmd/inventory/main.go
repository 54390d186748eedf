package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"inventory/internal/app"
	"inventory/internal/config"

	"github.com/blang/semver"
	"github.com/rhysd/go-github-selfupdate/selfupdate"
)

const shutdownTimeout = 10 * time.Second

var (
	version = "0.0.0"
	commit  = "none"
	date    = "unknown"
)

func main() {
	fmt.Printf("Version: %s\nCommit: %s\nBuild date: %s\n", version, commit, date)
	cfg := config.MustLoad()

	log := setupLogger(cfg.Env)

	if cfg.Update.Enabled {
		checkUpdate(log, cfg.Update.Repo)
	}

	log.Info("starting app",
		slog.String("env", cfg.Env),
		slog.String("addr", cfg.HTTP.Address),
		slog.Bool("persistent_storage", cfg.Storage.DatabaseURL != ""))

	application := app.New(log, cfg)

	go application.HTTPServer.MustRun()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	application.Stop(ctx)
	log.Info("app stopped")
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case config.EnvLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}),
		)
	}

	return log
}

func checkUpdate(log *slog.Logger, repo string) {
	v, err := semver.Parse(version)
	if err != nil {
		log.Warn("self-update skipped", slog.String("error", err.Error()))
		return
	}
	latest, err := selfupdate.UpdateSelf(v, repo)
	if err != nil {
		log.Warn("self-update failed", slog.String("error", err.Error()))
		return
	}
	if latest.Version.Equals(v) {
		log.Info("running the latest version", slog.String("version", v.String()))
	} else {
		log.Info("updated binary, restart to apply", slog.String("version", latest.Version.String()))
	}
}
