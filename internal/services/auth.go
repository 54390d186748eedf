package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"

	"inventory/internal/models"
	serr "inventory/lib/serr"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrMissingPassword    = errors.New("auth password is not configured")
)

// principalID is the id of the only identity the service knows.
const principalID = "1"

// AuthService verifies the single configured identity. The password is
// hashed once at construction and never kept in plain text.
type AuthService struct {
	log       *slog.Logger
	username  string
	passHash  []byte
	principal models.Principal
}

func NewAuthService(
	log *slog.Logger,
	username string,
	password string,
	cost int,
) (*AuthService, error) {
	const op = "services.NewAuthService"

	if password == "" {
		return nil, serr.Ferr(op, ErrMissingPassword.Error())
	}
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	ok, err := serr.LogFerr(err, op, "failed to generate password hash", log)
	if !ok {
		return nil, err
	}

	return &AuthService{
		log:       log,
		username:  username,
		passHash:  passHash,
		principal: models.Principal{ID: principalID, Username: username},
	}, nil
}

// Login returns ErrInvalidCredentials for a wrong username and for a wrong
// password alike. The hash is compared in both cases.
func (a *AuthService) Login(
	_ context.Context,
	username string,
	password string,
) (models.Principal, error) {
	const op = "services.Login"
	log := a.log.With(slog.String("op", op))

	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) == 1
	passErr := bcrypt.CompareHashAndPassword(a.passHash, []byte(password))

	if !userOK || passErr != nil {
		log.Warn("login rejected")
		return models.Principal{}, ErrInvalidCredentials
	}

	log.Info("user logged in", slog.String("username", username))
	return a.principal, nil
}
