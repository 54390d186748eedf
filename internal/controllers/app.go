package controllers

import (
	"errors"
	"net/http"

	"inventory/internal/services"

	"github.com/go-chi/chi/v5"
)

const appNotFoundMsg = "App not found"

type AppController struct {
	AppS     *services.AppService
	validate *AppValidator
}

func NewAppController(appS *services.AppService) *AppController {
	return &AppController{AppS: appS, validate: NewAppValidator()}
}

// List serves GET /api/apps. Optional query parameters q, status, category
// and platform narrow the result.
func (c *AppController) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	apps, err := c.AppS.ListApps(r.Context(), services.AppFilter{
		Query:    q.Get("q"),
		Status:   q.Get("status"),
		Category: q.Get("category"),
		Platform: q.Get("platform"),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch apps")
		return
	}

	writeJSON(w, http.StatusOK, apps)
}

func (c *AppController) Get(w http.ResponseWriter, r *http.Request) {
	app, err := c.AppS.GetApp(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		c.fail(w, err, "Failed to fetch app")
		return
	}

	writeJSON(w, http.StatusOK, app)
}

func (c *AppController) Create(w http.ResponseWriter, r *http.Request) {
	patch, errs := decodeAppPatch(r.Body)
	if len(errs) == 0 {
		errs = c.validate.ValidateCreate(patch)
	}
	if len(errs) > 0 {
		writeInvalid(w, errs)
		return
	}

	app, err := c.AppS.CreateApp(r.Context(), patch.NewApp())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create app")
		return
	}

	writeJSON(w, http.StatusCreated, app)
}

func (c *AppController) Update(w http.ResponseWriter, r *http.Request) {
	patch, errs := decodeAppPatch(r.Body)
	if len(errs) == 0 {
		errs = c.validate.ValidateUpdate(patch)
	}
	if len(errs) > 0 {
		writeInvalid(w, errs)
		return
	}

	app, err := c.AppS.UpdateApp(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		c.fail(w, err, "Failed to update app")
		return
	}

	writeJSON(w, http.StatusOK, app)
}

func (c *AppController) Delete(w http.ResponseWriter, r *http.Request) {
	deleted, err := c.AppS.DeleteApp(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete app")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, appNotFoundMsg)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// fail maps a service error to 404 or a generic 500. Services have already
// logged the cause.
func (c *AppController) fail(w http.ResponseWriter, err error, msg string) {
	if errors.Is(err, services.ErrAppNotFound) {
		writeError(w, http.StatusNotFound, appNotFoundMsg)
		return
	}
	writeError(w, http.StatusInternalServerError, msg)
}
