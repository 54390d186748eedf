// Package storagetest holds the behaviour every storage.AppStore backend
// must share. Backends call Run from their own tests.
package storagetest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"inventory/internal/models"
	"inventory/internal/storage"
	"inventory/lib/opt"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory returns a fresh, empty store built with opts.
type Factory func(t *testing.T, opts ...storage.Option) storage.AppStore

// Clock hands out strictly increasing millisecond timestamps.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock() *Clock {
	return &Clock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

func RandomNewApp() models.NewApp {
	return models.NewApp{
		Name:     gofakeit.AppName(),
		Platform: gofakeit.RandomString(models.Platforms),
		Status:   gofakeit.RandomString(models.Statuses),
		Category: gofakeit.RandomString(models.Categories),
	}
}

// Run exercises the full AppStore contract against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Run("SaveApp defaults optional fields", func(t *testing.T) {
		st := newStore(t)
		ctx := context.Background()

		app, err := st.SaveApp(ctx, RandomNewApp())
		require.NoError(t, err)

		assert.NotEmpty(t, app.ID)
		assert.False(t, app.UpdatedAt.IsZero())
		assert.Nil(t, app.Icon)
		assert.Nil(t, app.LiveURL)
		assert.Nil(t, app.RepositoryURL)
		assert.Nil(t, app.Notes)
	})

	t.Run("SaveApp keeps optional values", func(t *testing.T) {
		st := newStore(t)
		ctx := context.Background()

		in := RandomNewApp()
		in.Icon = opt.Of("🛠")
		in.LiveURL = opt.Of(gofakeit.URL())
		in.RepositoryURL = opt.Of(gofakeit.URL())
		in.Notes = opt.Of("")

		app, err := st.SaveApp(ctx, in)
		require.NoError(t, err)

		require.NotNil(t, app.Icon)
		assert.Equal(t, "🛠", *app.Icon)
		require.NotNil(t, app.LiveURL)
		require.NotNil(t, app.RepositoryURL)
		assert.Nil(t, app.Notes)
	})

	t.Run("SaveApp generates unique ids", func(t *testing.T) {
		st := newStore(t)
		ctx := context.Background()

		seen := make(map[string]struct{})
		for range 20 {
			app, err := st.SaveApp(ctx, RandomNewApp())
			require.NoError(t, err)
			_, dup := seen[app.ID]
			require.False(t, dup, "duplicate id %s", app.ID)
			seen[app.ID] = struct{}{}
		}
	})

	t.Run("App round trip", func(t *testing.T) {
		st := newStore(t)
		ctx := context.Background()

		in := RandomNewApp()
		in.Notes = opt.Of(gofakeit.Sentence(8))
		created, err := st.SaveApp(ctx, in)
		require.NoError(t, err)

		got, err := st.App(ctx, created.ID)
		require.NoError(t, err)
		AssertSameApp(t, created, got)
	})

	t.Run("App unknown id", func(t *testing.T) {
		st := newStore(t)

		_, err := st.App(context.Background(), "missing")
		require.Error(t, err)
		assert.True(t, errors.Is(err, storage.ErrAppNotFound))
	})

	t.Run("Apps empty store", func(t *testing.T) {
		st := newStore(t)

		apps, err := st.Apps(context.Background())
		require.NoError(t, err)
		assert.Empty(t, apps)
	})

	t.Run("Apps lists every record", func(t *testing.T) {
		st := newStore(t)
		ctx := context.Background()

		want := make(map[string]models.App)
		for range 3 {
			app, err := st.SaveApp(ctx, RandomNewApp())
			require.NoError(t, err)
			want[app.ID] = app
		}

		apps, err := st.Apps(ctx)
		require.NoError(t, err)
		require.Len(t, apps, len(want))
		for _, app := range apps {
			AssertSameApp(t, want[app.ID], app)
		}
	})

	t.Run("UpdateApp empty patch only refreshes updatedAt", func(t *testing.T) {
		clock := NewClock()
		st := newStore(t, storage.WithClock(clock.Now))
		ctx := context.Background()

		in := RandomNewApp()
		in.Icon = opt.Of("📦")
		created, err := st.SaveApp(ctx, in)
		require.NoError(t, err)

		updated, err := st.UpdateApp(ctx, created.ID, models.AppPatch{})
		require.NoError(t, err)

		assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))
		updated.UpdatedAt = created.UpdatedAt
		AssertSameApp(t, created, updated)
	})

	t.Run("UpdateApp changes only supplied fields", func(t *testing.T) {
		clock := NewClock()
		st := newStore(t, storage.WithClock(clock.Now))
		ctx := context.Background()

		in := RandomNewApp()
		in.Status = models.StatusActive
		in.Notes = opt.Of("first")
		created, err := st.SaveApp(ctx, in)
		require.NoError(t, err)

		updated, err := st.UpdateApp(ctx, created.ID, models.AppPatch{
			Status:  opt.Of(models.StatusArchived),
			LiveURL: opt.Of("https://example.com"),
			Notes:   opt.Null(),
		})
		require.NoError(t, err)

		assert.Equal(t, created.ID, updated.ID)
		assert.Equal(t, created.Name, updated.Name)
		assert.Equal(t, created.Platform, updated.Platform)
		assert.Equal(t, created.Category, updated.Category)
		assert.Equal(t, models.StatusArchived, updated.Status)
		require.NotNil(t, updated.LiveURL)
		assert.Equal(t, "https://example.com", *updated.LiveURL)
		assert.Nil(t, updated.Notes)
		assert.True(t, updated.UpdatedAt.After(created.UpdatedAt))

		got, err := st.App(ctx, created.ID)
		require.NoError(t, err)
		AssertSameApp(t, updated, got)
	})

	t.Run("UpdateApp unknown id does not create", func(t *testing.T) {
		st := newStore(t)
		ctx := context.Background()

		_, err := st.UpdateApp(ctx, "missing", models.AppPatch{Name: opt.Of("ghost")})
		require.Error(t, err)
		assert.True(t, errors.Is(err, storage.ErrAppNotFound))

		apps, err := st.Apps(ctx)
		require.NoError(t, err)
		assert.Empty(t, apps)
	})

	t.Run("DeleteApp twice", func(t *testing.T) {
		st := newStore(t)
		ctx := context.Background()

		app, err := st.SaveApp(ctx, RandomNewApp())
		require.NoError(t, err)

		deleted, err := st.DeleteApp(ctx, app.ID)
		require.NoError(t, err)
		assert.True(t, deleted)

		deleted, err = st.DeleteApp(ctx, app.ID)
		require.NoError(t, err)
		assert.False(t, deleted)

		_, err = st.App(ctx, app.ID)
		assert.True(t, errors.Is(err, storage.ErrAppNotFound))
	})
}

// AssertSameApp compares apps field by field, timestamps by instant.
func AssertSameApp(t *testing.T, want, got models.App) {
	t.Helper()

	assert.True(t, want.UpdatedAt.Equal(got.UpdatedAt), "updatedAt: want %s, got %s", want.UpdatedAt, got.UpdatedAt)
	want.UpdatedAt, got.UpdatedAt = time.Time{}, time.Time{}
	assert.Equal(t, want, got)
}
