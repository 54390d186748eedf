package app

import (
	"context"
	"log/slog"

	httpapp "inventory/internal/app/http"
	"inventory/internal/config"
	"inventory/internal/controllers"
	"inventory/internal/services"
	"inventory/internal/storage"
	"inventory/internal/storage/memory"
	"inventory/internal/storage/relational"
)

type App struct {
	HTTPServer *httpapp.App
	log        *slog.Logger
	storage    storage.AppStore
}

// New wires every component. Configuration problems panic: the process
// must not start without its secrets or with an unreachable database.
func New(log *slog.Logger, cfg *config.Config) *App {
	store := newStorage(log, cfg)

	authS, err := services.NewAuthService(log, cfg.Auth.Username, cfg.Auth.Password, cfg.Auth.BcryptCost)
	if err != nil {
		panic(err)
	}
	if cfg.Session.Secret == "" {
		panic("session secret is empty")
	}
	sessions := services.NewSessionManager(log, cfg.Session.Secret, cfg.Session.TTL)
	appS := services.NewAppService(log, store)

	appC := controllers.NewAppController(appS)
	authC := controllers.NewAuthController(log, authS, sessions, controllers.CookieConfig{
		Name:   cfg.Session.CookieName,
		Secure: cfg.SecureCookies(),
	})

	httpApp := httpapp.New(log, cfg.HTTP, cfg.Session, appC, authC, sessions)
	return &App{
		HTTPServer: httpApp,
		log:        log,
		storage:    store,
	}
}

// Stop shuts the server down, then releases the store.
func (a *App) Stop(ctx context.Context) {
	a.HTTPServer.Stop(ctx)

	if err := a.storage.Close(); err != nil {
		a.log.Error("failed to close storage", slog.String("error", err.Error()))
	}
}

func newStorage(log *slog.Logger, cfg *config.Config) storage.AppStore {
	if cfg.Storage.DatabaseURL == "" {
		if cfg.Storage.RequireDatabase {
			panic("DATABASE_URL is required when require_database is set")
		}
		log.Warn("DATABASE_URL not set, using in-memory storage; data will be lost on restart")
		return memory.New()
	}

	st, err := relational.New(cfg.Storage.DatabaseURL, cfg.Env == config.EnvLocal)
	if err != nil {
		panic(err)
	}

	if !cfg.Storage.SkipMigrations {
		if err := st.Migrate(); err != nil {
			panic(err)
		}
	}

	log.Info("using relational storage", slog.String("dialect", st.DB.Dialector.Name()))
	return st
}
