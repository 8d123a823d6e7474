package mailer

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

type PasswordResetEmail struct {
	To        string
	Username  string
	ResetLink string
	ExpiresAt time.Time
}

type Sender interface {
	SendPasswordReset(ctx context.Context, email PasswordResetEmail) error
}

var _ Sender = (*EmailJSSender)(nil)
var _ Sender = (*LogSender)(nil)

// LogSender only logs that a mail would have been sent. Meant for local development,
// the reset link itself is not logged.
type LogSender struct{}

func (LogSender) SendPasswordReset(_ context.Context, email PasswordResetEmail) error {
	log.Infof("password reset email for [%s] suppressed, expires at %s", email.To, email.ExpiresAt.UTC().Format(time.RFC3339))
	return nil
}
