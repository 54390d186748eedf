package storage

import (
	"context"
	"errors"
	"time"

	"inventory/internal/models"

	"github.com/google/uuid"
)

var ErrAppNotFound = errors.New("app not found")

// AppStore is implemented by every record store backend. Backends must
// behave identically: the same field defaulting, the same not-found
// results and the same timestamp handling.
type AppStore interface {
	App(ctx context.Context, id string) (models.App, error)
	Apps(ctx context.Context) ([]models.App, error)
	SaveApp(ctx context.Context, app models.NewApp) (models.App, error)
	UpdateApp(ctx context.Context, id string, patch models.AppPatch) (models.App, error)
	DeleteApp(ctx context.Context, id string) (bool, error)
	Close() error
}

type Options struct {
	Now   func() time.Time
	NewID func() string
}

type Option func(*Options)

// WithClock overrides the clock used for updatedAt.
func WithClock(now func() time.Time) Option {
	return func(o *Options) { o.Now = now }
}

// WithIDGenerator overrides the identifier generator.
func WithIDGenerator(newID func() string) Option {
	return func(o *Options) { o.NewID = newID }
}

func BuildOptions(opts ...Option) Options {
	o := Options{
		Now:   Now,
		NewID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Now is the default store clock. Timestamps are UTC with millisecond
// precision so every backend can hold them without loss.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
