// Package memory implements the volatile record store. Its contents are lost
// when the process exits.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"inventory/internal/models"
	"inventory/internal/storage"
)

type Storage struct {
	mu    sync.RWMutex
	apps  map[string]models.App
	order []string
	opts  storage.Options
}

func New(opts ...storage.Option) *Storage {
	return &Storage{
		apps: make(map[string]models.App),
		opts: storage.BuildOptions(opts...),
	}
}

func (s *Storage) App(_ context.Context, id string) (models.App, error) {
	const op = "storage.memory.App"

	s.mu.RLock()
	defer s.mu.RUnlock()

	app, ok := s.apps[id]
	if !ok {
		return models.App{}, fmt.Errorf("%s: %w", op, storage.ErrAppNotFound)
	}

	return app, nil
}

// Apps returns records in insertion order.
func (s *Storage) Apps(_ context.Context) ([]models.App, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	apps := make([]models.App, 0, len(s.order))
	for _, id := range s.order {
		apps = append(apps, s.apps[id])
	}

	return apps, nil
}

func (s *Storage) SaveApp(_ context.Context, newApp models.NewApp) (models.App, error) {
	const op = "storage.memory.SaveApp"

	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.opts.NewID()
	if _, exists := s.apps[id]; exists {
		return models.App{}, fmt.Errorf("%s: duplicate id %q", op, id)
	}

	app := newApp.Build(id, s.opts.Now())
	s.apps[id] = app
	s.order = append(s.order, id)

	return app, nil
}

func (s *Storage) UpdateApp(_ context.Context, id string, patch models.AppPatch) (models.App, error) {
	const op = "storage.memory.UpdateApp"

	s.mu.Lock()
	defer s.mu.Unlock()

	app, ok := s.apps[id]
	if !ok {
		return models.App{}, fmt.Errorf("%s: %w", op, storage.ErrAppNotFound)
	}

	patch.Apply(&app)
	app.UpdatedAt = s.opts.Now()
	s.apps[id] = app

	return app, nil
}

func (s *Storage) DeleteApp(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.apps[id]; !ok {
		return false, nil
	}

	delete(s.apps, id)
	s.order = slices.DeleteFunc(s.order, func(v string) bool { return v == id })

	return true, nil
}

func (s *Storage) Close() error {
	return nil
}
