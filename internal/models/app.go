package models

import (
	"time"

	"inventory/lib/opt"
)

const (
	StatusActive        = "Active"
	StatusInDevelopment = "In Development"
	StatusPaused        = "Paused"
	StatusArchived      = "Archived"
)

const (
	CategoryWork     = "Work"
	CategoryPersonal = "Personal"
)

var (
	Statuses   = []string{StatusActive, StatusInDevelopment, StatusPaused, StatusArchived}
	Categories = []string{CategoryWork, CategoryPersonal}

	// Platforms are suggestions for the UI; any non-empty platform is accepted.
	Platforms = []string{"Replit", "Railway", "Vercel", "Netlify", "Heroku", "Other"}
)

// App is a tracked software project. Optional fields are nil when they hold
// no value and serialize as null.
type App struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Platform      string    `json:"platform"`
	Status        string    `json:"status"`
	Category      string    `json:"category"`
	Icon          *string   `json:"icon"`
	LiveURL       *string   `json:"liveUrl"`
	RepositoryURL *string   `json:"repositoryUrl"`
	Notes         *string   `json:"notes"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// NewApp is a validated create payload.
type NewApp struct {
	Name          string
	Platform      string
	Status        string
	Category      string
	Icon          opt.String
	LiveURL       opt.String
	RepositoryURL opt.String
	Notes         opt.String
}

// Build assembles the stored record. Empty or missing optional fields
// become nil.
func (n NewApp) Build(id string, updatedAt time.Time) App {
	return App{
		ID:            id,
		Name:          n.Name,
		Platform:      n.Platform,
		Status:        n.Status,
		Category:      n.Category,
		Icon:          n.Icon.NullIfEmpty().Ptr(),
		LiveURL:       n.LiveURL.NullIfEmpty().Ptr(),
		RepositoryURL: n.RepositoryURL.NullIfEmpty().Ptr(),
		Notes:         n.Notes.NullIfEmpty().Ptr(),
		UpdatedAt:     updatedAt,
	}
}

// AppPatch is a partial create/update payload. Unset fields are left
// unchanged by Apply.
type AppPatch struct {
	Name          opt.String
	Platform      opt.String
	Status        opt.String
	Category      opt.String
	Icon          opt.String
	LiveURL       opt.String
	RepositoryURL opt.String
	Notes         opt.String
}

// NewApp converts a patch that already passed create validation.
func (p AppPatch) NewApp() NewApp {
	name, _ := p.Name.Get()
	platform, _ := p.Platform.Get()
	status, _ := p.Status.Get()
	category, _ := p.Category.Get()

	return NewApp{
		Name:          name,
		Platform:      platform,
		Status:        status,
		Category:      category,
		Icon:          p.Icon,
		LiveURL:       p.LiveURL,
		RepositoryURL: p.RepositoryURL,
		Notes:         p.Notes,
	}
}

// Apply merges the supplied fields into app. It does not touch ID or
// UpdatedAt.
func (p AppPatch) Apply(app *App) {
	if v, ok := p.Name.Get(); ok {
		app.Name = v
	}
	if v, ok := p.Platform.Get(); ok {
		app.Platform = v
	}
	if v, ok := p.Status.Get(); ok {
		app.Status = v
	}
	if v, ok := p.Category.Get(); ok {
		app.Category = v
	}

	applyOptional(&app.Icon, p.Icon)
	applyOptional(&app.LiveURL, p.LiveURL)
	applyOptional(&app.RepositoryURL, p.RepositoryURL)
	applyOptional(&app.Notes, p.Notes)
}

func applyOptional(dst **string, v opt.String) {
	if !v.IsSet() {
		return
	}
	*dst = v.NullIfEmpty().Ptr()
}
