package jwt

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid session token")

const tokenType = "session"

// NewSessionToken signs a cookie value naming sessionID.
func NewSessionToken(
	sessionID string,
	secret []byte,
	expiresAt time.Time,
) (string, error) {
	token := jwt.New(jwt.SigningMethodHS256)

	claims := token.Claims.(jwt.MapClaims)
	claims["sid"] = sessionID
	claims["exp"] = expiresAt.Unix()
	claims["iat"] = time.Now().Unix()
	claims["type"] = tokenType

	tokenString, err := token.SignedString(secret)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseSessionToken verifies the signature and expiry of tokenStr and
// returns the session id it carries.
func ParseSessionToken(tokenStr string, secret []byte) (string, error) {
	token, err := jwt.Parse(
		tokenStr,
		func(t *jwt.Token) (interface{}, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["type"] != tokenType {
		return "", ErrInvalidToken
	}

	sid, ok := claims["sid"].(string)
	if !ok || sid == "" {
		return "", ErrInvalidToken
	}

	return sid, nil
}

func NewSessionID() (string, error) {
	const idLength = 32
	bytes := make([]byte, idLength)

	_, err := rand.Read(bytes)
	if err != nil {
		return "", fmt.Errorf("failed to generate session id: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(bytes), nil
}
