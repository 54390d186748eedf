package controllers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"inventory/internal/models"
	"inventory/internal/services"
)

const invalidCredentialsMsg = "Invalid username or password"

type CookieConfig struct {
	Name   string
	Secure bool
}

type AuthController struct {
	log      *slog.Logger
	AuthS    *services.AuthService
	Sessions *services.SessionManager
	cookie   CookieConfig
}

func NewAuthController(
	log *slog.Logger,
	authS *services.AuthService,
	sessions *services.SessionManager,
	cookie CookieConfig,
) *AuthController {
	return &AuthController{log: log, AuthS: authS, Sessions: sessions, cookie: cookie}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Success bool             `json:"success"`
	User    models.Principal `json:"user"`
}

type checkResponse struct {
	Authenticated bool              `json:"authenticated"`
	User          *models.Principal `json:"user,omitempty"`
}

func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	const op = "controllers.Login"

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalid(w, []FieldError{{Field: "body", Message: "Malformed JSON object"}})
		return
	}

	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusUnauthorized, invalidCredentialsMsg)
		return
	}

	p, err := c.AuthS.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, invalidCredentialsMsg)
			return
		}
		c.log.Error("login failed", slog.String("op", op), slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "Login failed")
		return
	}

	// A fresh session replaces whatever the client was carrying.
	if cookie, err := r.Cookie(c.cookie.Name); err == nil {
		_ = c.Sessions.Destroy(r.Context(), cookie.Value)
	}

	token, expiresAt, err := c.Sessions.Create(r.Context(), p)
	if err != nil {
		c.log.Error("failed to create session", slog.String("op", op), slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "Login failed")
		return
	}

	http.SetCookie(w, c.sessionCookie(token, expiresAt))
	writeJSON(w, http.StatusOK, loginResponse{Success: true, User: p})
}

func (c *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	const op = "controllers.Logout"

	if cookie, err := r.Cookie(c.cookie.Name); err == nil {
		if err := c.Sessions.Destroy(r.Context(), cookie.Value); err != nil {
			c.log.Error("failed to destroy session", slog.String("op", op), slog.String("error", err.Error()))
			writeError(w, http.StatusInternalServerError, "Session destruction failed")
			return
		}
	}

	http.SetCookie(w, c.clearedCookie())
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Check reports whether the request carries a live session.
func (c *AuthController) Check(w http.ResponseWriter, r *http.Request) {
	p, ok := PrincipalFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusOK, checkResponse{Authenticated: false})
		return
	}

	writeJSON(w, http.StatusOK, checkResponse{Authenticated: true, User: &p})
}

func (c *AuthController) sessionCookie(token string, expiresAt time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     c.cookie.Name,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		MaxAge:   int(c.Sessions.TTL().Seconds()),
		HttpOnly: true,
		Secure:   c.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (c *AuthController) clearedCookie() *http.Cookie {
	return &http.Cookie{
		Name:     c.cookie.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}
