package httpapp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"inventory/internal/config"
	"inventory/internal/controllers"
	"inventory/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type App struct {
	log           *slog.Logger
	server        *http.Server
	sessions      *services.SessionManager
	sweepInterval time.Duration
	sweepCtx      context.Context
	stopSweeper   context.CancelFunc
}

func New(
	log *slog.Logger,
	cfg config.HTTPConfig,
	sessionCfg config.SessionConfig,
	appC *controllers.AppController,
	authC *controllers.AuthController,
	sessions *services.SessionManager,
) *App {
	router := NewRouter(log, cfg.StaticDir, sessionCfg.CookieName, appC, authC, sessions)
	sweepCtx, stopSweeper := context.WithCancel(context.Background())

	return &App{
		log:      log,
		sessions: sessions,
		server: &http.Server{
			Addr:         cfg.Address,
			Handler:      router,
			ReadTimeout:  cfg.Timeout,
			WriteTimeout: cfg.Timeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
		sweepInterval: sessionCfg.SweepInterval,
		sweepCtx:      sweepCtx,
		stopSweeper:   stopSweeper,
	}
}

func NewRouter(
	log *slog.Logger,
	staticDir string,
	cookieName string,
	appC *controllers.AppController,
	authC *controllers.AuthController,
	sessions *services.SessionManager,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(controllers.RequestLogger(log))
	r.Use(middleware.Recoverer)
	r.Use(controllers.SessionGate(sessions, cookieName))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/login", authC.Login)
		r.Post("/logout", authC.Logout)
		r.With(controllers.NoStore).Get("/auth/check", authC.Check)

		r.Route("/apps", func(r chi.Router) {
			r.Use(controllers.RequireAuth)

			r.Get("/", appC.List)
			r.Post("/", appC.Create)
			r.Get("/{id}", appC.Get)
			r.Put("/{id}", appC.Update)
			r.Delete("/{id}", appC.Delete)
		})
	})

	if staticDir != "" {
		r.Handle("/*", controllers.StaticHandler(staticDir))
	}

	return r
}

func (a *App) MustRun() {
	if err := a.Run(); err != nil {
		panic(err)
	}
}

func (a *App) Run() error {
	const op = "httpapp.Run"

	go a.sessions.RunSweeper(a.sweepCtx, a.sweepInterval)

	a.log.Info("http server started", slog.String("addr", a.server.Addr))

	if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (a *App) Stop(ctx context.Context) {
	const op = "httpapp.Stop"

	a.log.With(slog.String("op", op)).Info("stopping http server", slog.String("addr", a.server.Addr))

	a.stopSweeper()

	if err := a.server.Shutdown(ctx); err != nil {
		a.log.Error("http server shutdown", slog.String("op", op), slog.String("error", err.Error()))
	}
}
