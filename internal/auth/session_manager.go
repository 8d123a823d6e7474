package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/cloudyskybd/portfolio/internal/telemetry/tracing"
	"github.com/cloudyskybd/portfolio/pkg"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

const (
	SessionTTL       = 24 * time.Hour
	sessionTokenSize = 32
)

type SessionManager struct {
	credentials *CredentialStore
	sessions    SessionStore
	ttl         time.Duration

	// injectable for unit and dev testing
	RandStringFunc func(s int) (string, error)
	NowFunc        func() time.Time
}

func NewSessionManager(credentials *CredentialStore, sessions SessionStore) *SessionManager {
	return &SessionManager{
		credentials:    credentials,
		sessions:       sessions,
		ttl:            SessionTTL,
		RandStringFunc: pkg.GenerateRandomString,
		NowFunc:        time.Now,
	}
}

// Login verifies the given pair against the stored credentials and opens a new session.
// Every kind of mismatch is reported as ErrInvalidCredentials.
func (m *SessionManager) Login(ctx context.Context, username, password string) (string, Session, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "sessionManager.login")
	defer span.End()

	creds, err := m.credentials.Get(ctx)
	if errors.Is(err, ErrNotBootstrapped) {
		log.Warnln("login attempt, but admin credentials are not bootstrapped")
		return "", Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return "", Session{}, fmt.Errorf("get credentials: %w", err)
	}

	usernameOk := subtle.ConstantTimeCompare([]byte(username), []byte(creds.Username)) == 1
	if !usernameOk || !pkg.CheckPasswordHash(password, creds.PasswordHash) {
		span.SetAttributes(attribute.Bool("login.ok", false))
		return "", Session{}, ErrInvalidCredentials
	}

	if pkg.IsLegacyPasswordHash(creds.PasswordHash) {
		if _, err := m.credentials.Update(ctx, CredentialsUpdate{Password: &password}); err != nil {
			log.Errorf("upgrade legacy password digest: %s", err)
		} else {
			log.Infoln("legacy password digest upgraded")
		}
	}

	token, err := m.RandStringFunc(sessionTokenSize)
	if err != nil {
		return "", Session{}, fmt.Errorf("generate session token: %w", err)
	}

	session := Session{
		Authenticated: true,
		Expiry:        m.NowFunc().Add(m.ttl).UnixMilli(),
	}
	if err := m.sessions.Put(ctx, token, session, m.ttl); err != nil {
		return "", Session{}, err
	}

	span.SetAttributes(attribute.Bool("login.ok", true))
	return token, session, nil
}

func (m *SessionManager) Logout(ctx context.Context, token string) error {
	ctx, span := tracing.GlobalTracer.Start(ctx, "sessionManager.logout")
	defer span.End()

	if token == "" {
		return nil
	}
	return m.sessions.Delete(ctx, token)
}

// Lookup returns the live session for the token, or nil. Expired markers are removed.
func (m *SessionManager) Lookup(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, nil
	}

	session, err := m.sessions.Get(ctx, token)
	if errors.Is(err, ErrSessionNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if !session.ValidAt(m.NowFunc()) {
		if err := m.sessions.Delete(ctx, token); err != nil {
			log.Errorf("delete expired session: %s", err)
		}
		return nil, nil
	}

	return session, nil
}

func (m *SessionManager) IsLogged(ctx context.Context, token string) (bool, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "sessionManager.isLogged")
	defer span.End()

	session, err := m.Lookup(ctx, token)
	if err != nil {
		return false, err
	}
	return session != nil, nil
}

// ScanAndClean will run through all indexed sessions and drop the expired or vanished ones
func (m *SessionManager) ScanAndClean(ctx context.Context) {
	tokens, err := m.sessions.Tokens(ctx)
	if err != nil {
		log.Errorf("!!! session manager, scan and clean, get sessions: %s", err)
		return
	}

	if len(tokens) == 0 {
		log.Debugln("=> session manager, scan and clean abort, no sessions")
		return
	}

	log.Debugf("=> session manager, scan and clean [%d sessions] start ...", len(tokens))
	now := m.NowFunc()
	removed := 0
	for _, token := range tokens {
		session, err := m.sessions.Get(ctx, token)
		if err != nil && !errors.Is(err, ErrSessionNotFound) {
			log.Errorf("=> session manager, scan and clean: %s", err)
			continue
		}
		if session != nil && session.ValidAt(now) {
			continue
		}

		if err := m.sessions.Delete(ctx, token); err != nil {
			log.Errorf("=> session manager, clean session: %s", err)
			continue
		}
		removed++
	}

	log.Debugf("=> session manager, scan and clean done, removed %d sessions", removed)
}
