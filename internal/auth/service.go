package auth

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/cloudyskybd/portfolio/internal/mailer"
)

var _ Checker = (*Service)(nil)
var _ Checker = (*SessionManager)(nil)

type Profile struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

type ProfileUpdate struct {
	Username *string `json:"username,omitempty"`
	Email    *string `json:"email,omitempty"`
}

// Service is the single capability surface the admin HTTP layer talks to.
type Service struct {
	Credentials *CredentialStore
	Sessions    *SessionManager
	Reset       *ResetFlow
}

type NewServiceParams struct {
	CredentialsRepo CredentialsRepo
	SessionStore    SessionStore
	Mailer          mailer.Sender
	SiteOrigin      string
}

func NewService(params NewServiceParams) *Service {
	credentials := NewCredentialStore(params.CredentialsRepo)
	return &Service{
		Credentials: credentials,
		Sessions:    NewSessionManager(credentials, params.SessionStore),
		Reset:       NewResetFlow(credentials, params.Mailer, params.SiteOrigin),
	}
}

func (s *Service) Login(ctx context.Context, username, password string) (string, Session, error) {
	return s.Sessions.Login(ctx, username, password)
}

func (s *Service) Logout(ctx context.Context, token string) error {
	return s.Sessions.Logout(ctx, token)
}

func (s *Service) IsLogged(ctx context.Context, token string) (bool, error) {
	return s.Sessions.IsLogged(ctx, token)
}

func (s *Service) Session(ctx context.Context, token string) (*Session, error) {
	return s.Sessions.Lookup(ctx, token)
}

func (s *Service) Profile(ctx context.Context) (Profile, error) {
	creds, err := s.Credentials.Get(ctx)
	if err != nil {
		return Profile{}, err
	}
	return Profile{Username: creds.Username, Email: creds.Email}, nil
}

func (s *Service) UpdateProfile(ctx context.Context, update ProfileUpdate) (Profile, error) {
	credsUpdate := CredentialsUpdate{}
	if update.Username != nil {
		username := strings.TrimSpace(*update.Username)
		if username == "" {
			return Profile{}, fmt.Errorf("%w: empty username", ErrInvalidProfile)
		}
		credsUpdate.Username = &username
	}
	if update.Email != nil {
		email := strings.TrimSpace(*update.Email)
		if _, err := mail.ParseAddress(email); err != nil {
			return Profile{}, fmt.Errorf("%w: bad email address", ErrInvalidProfile)
		}
		credsUpdate.Email = &email
	}

	creds, err := s.Credentials.Update(ctx, credsUpdate)
	if err != nil {
		return Profile{}, err
	}
	return Profile{Username: creds.Username, Email: creds.Email}, nil
}

func (s *Service) ChangePassword(ctx context.Context, currentPassword, newPassword string) (bool, error) {
	return s.Reset.ChangePassword(ctx, currentPassword, newPassword)
}

func (s *Service) RequestReset(ctx context.Context, email string) (bool, error) {
	return s.Reset.RequestReset(ctx, email)
}

func (s *Service) RedeemReset(ctx context.Context, token, newPassword string) (bool, error) {
	return s.Reset.RedeemReset(ctx, token, newPassword)
}

func (s *Service) Bootstrap(ctx context.Context, username, password, email string) error {
	return s.Credentials.Bootstrap(ctx, username, password, email)
}

func (s *Service) ScanAndClean(ctx context.Context) {
	s.Sessions.ScanAndClean(ctx)
}
