package services

import (
	"context"
	"log/slog"
	"strings"

	"inventory/internal/models"
	"inventory/internal/storage"
	serr "inventory/lib/serr"
)

var ErrAppNotFound = storage.ErrAppNotFound

type AppService struct {
	log   *slog.Logger
	store storage.AppStore
}

func NewAppService(
	log *slog.Logger,
	store storage.AppStore,
) *AppService {
	return &AppService{
		log:   log,
		store: store,
	}
}

// AppFilter narrows ListApps. Zero fields match everything.
type AppFilter struct {
	Query    string
	Status   string
	Category string
	Platform string
}

func (f AppFilter) Match(app models.App) bool {
	if f.Status != "" && app.Status != f.Status {
		return false
	}
	if f.Category != "" && app.Category != f.Category {
		return false
	}
	if f.Platform != "" && app.Platform != f.Platform {
		return false
	}
	if f.Query == "" {
		return true
	}

	q := strings.ToLower(f.Query)
	if strings.Contains(strings.ToLower(app.Name), q) ||
		strings.Contains(strings.ToLower(app.Platform), q) {
		return true
	}
	return app.Notes != nil && strings.Contains(strings.ToLower(*app.Notes), q)
}

func (s *AppService) GetApp(ctx context.Context, id string) (models.App, error) {
	const op = "services.GetApp"

	app, err := s.store.App(ctx, id)
	ok, err := serr.Gerr(op, "app not found", "failed to get app", s.log, err)
	if !ok {
		return models.App{}, err
	}

	return app, nil
}

func (s *AppService) ListApps(ctx context.Context, filter AppFilter) ([]models.App, error) {
	const op = "services.ListApps"

	apps, err := s.store.Apps(ctx)
	ok, err := serr.Gerr(op, "apps not found", "failed to get apps", s.log, err)
	if !ok {
		return nil, err
	}

	if filter == (AppFilter{}) {
		return apps, nil
	}

	matched := make([]models.App, 0, len(apps))
	for _, app := range apps {
		if filter.Match(app) {
			matched = append(matched, app)
		}
	}

	return matched, nil
}

func (s *AppService) CreateApp(ctx context.Context, newApp models.NewApp) (models.App, error) {
	const op = "services.CreateApp"

	app, err := s.store.SaveApp(ctx, newApp)
	ok, err := serr.Gerr(op, "app not found", "failed to create app", s.log, err)
	if !ok {
		return models.App{}, err
	}

	s.log.Info("app created", slog.String("op", op), slog.String("id", app.ID))
	return app, nil
}

func (s *AppService) UpdateApp(ctx context.Context, id string, patch models.AppPatch) (models.App, error) {
	const op = "services.UpdateApp"

	app, err := s.store.UpdateApp(ctx, id, patch)
	ok, err := serr.Gerr(op, "app not found", "failed to update app", s.log, err)
	if !ok {
		return models.App{}, err
	}

	s.log.Info("app updated", slog.String("op", op), slog.String("id", id))
	return app, nil
}

// DeleteApp reports whether a record existed and was removed.
func (s *AppService) DeleteApp(ctx context.Context, id string) (bool, error) {
	const op = "services.DeleteApp"

	deleted, err := s.store.DeleteApp(ctx, id)
	ok, err := serr.Gerr(op, "app not found", "failed to delete app", s.log, err)
	if !ok {
		return false, err
	}

	if deleted {
		s.log.Info("app deleted", slog.String("op", op), slog.String("id", id))
	}
	return deleted, nil
}
