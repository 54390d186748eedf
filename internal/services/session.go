package services

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"inventory/internal/models"
	jwt_inv "inventory/lib/jwt"
	serr "inventory/lib/serr"
)

var ErrSessionNotFound = errors.New("session not found")

const DefaultSessionTTL = 24 * time.Hour

type session struct {
	principal models.Principal
	createdAt time.Time
	expiresAt time.Time
}

// SessionManager keeps sessions in process memory. Cookies carry a signed
// token naming a session id; the session itself never leaves the server.
type SessionManager struct {
	log    *slog.Logger
	secret []byte
	ttl    time.Duration
	now    func() time.Time

	mu       sync.RWMutex
	sessions map[string]session
}

func NewSessionManager(
	log *slog.Logger,
	secret string,
	ttl time.Duration,
) *SessionManager {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}

	return &SessionManager{
		log:      log,
		secret:   []byte(secret),
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]session),
	}
}

func (m *SessionManager) TTL() time.Duration { return m.ttl }

// Create starts a session for p and returns the signed cookie token.
func (m *SessionManager) Create(
	_ context.Context,
	p models.Principal,
) (token string, expiresAt time.Time, err error) {
	const op = "services.CreateSession"

	sid, err := jwt_inv.NewSessionID()
	ok, err := serr.LogFerr(err, op, "failed to generate session id", m.log)
	if !ok {
		return "", time.Time{}, err
	}

	now := m.now()
	expiresAt = now.Add(m.ttl)

	token, err = jwt_inv.NewSessionToken(sid, m.secret, expiresAt)
	ok, err = serr.LogFerr(err, op, "failed to sign session token", m.log)
	if !ok {
		return "", time.Time{}, err
	}

	m.mu.Lock()
	m.sessions[sid] = session{principal: p, createdAt: now, expiresAt: expiresAt}
	m.mu.Unlock()

	return token, expiresAt, nil
}

// Lookup resolves a cookie token to its principal. Bad signatures, unknown
// sessions and expired sessions all yield ErrSessionNotFound.
func (m *SessionManager) Lookup(_ context.Context, token string) (models.Principal, error) {
	sid, err := jwt_inv.ParseSessionToken(token, m.secret)
	if err != nil {
		return models.Principal{}, ErrSessionNotFound
	}

	m.mu.RLock()
	s, ok := m.sessions[sid]
	m.mu.RUnlock()
	if !ok {
		return models.Principal{}, ErrSessionNotFound
	}

	if !m.now().Before(s.expiresAt) {
		m.mu.Lock()
		delete(m.sessions, sid)
		m.mu.Unlock()
		return models.Principal{}, ErrSessionNotFound
	}

	return s.principal, nil
}

// Destroy ends the session named by token. Tokens that name no session are
// ignored.
func (m *SessionManager) Destroy(_ context.Context, token string) error {
	sid, err := jwt_inv.ParseSessionToken(token, m.secret)
	if err != nil {
		return nil
	}

	m.mu.Lock()
	delete(m.sessions, sid)
	m.mu.Unlock()

	return nil
}

// PurgeExpired drops expired sessions and returns how many were removed.
func (m *SessionManager) PurgeExpired(_ context.Context) int {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for sid, s := range m.sessions {
		if !now.Before(s.expiresAt) {
			delete(m.sessions, sid)
			n++
		}
	}
	return n
}

// RunSweeper purges expired sessions every interval until ctx is done.
func (m *SessionManager) RunSweeper(ctx context.Context, interval time.Duration) {
	const op = "services.RunSweeper"

	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.PurgeExpired(ctx); n > 0 {
				m.log.Debug("expired sessions purged", slog.String("op", op), slog.Int("count", n))
			}
		}
	}
}
