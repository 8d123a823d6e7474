package auth

import (
	"context"
	"crypto/subtle"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/cloudyskybd/portfolio/internal/mailer"
	"github.com/cloudyskybd/portfolio/internal/telemetry/tracing"
	"github.com/cloudyskybd/portfolio/pkg"

	log "github.com/sirupsen/logrus"
)

const (
	ResetTokenTTL  = time.Hour
	resetTokenSize = 32
)

type ResetFlow struct {
	credentials *CredentialStore
	sender      mailer.Sender
	siteOrigin  string
	ttl         time.Duration

	RandStringFunc func(s int) (string, error)
	NowFunc        func() time.Time
}

func NewResetFlow(credentials *CredentialStore, sender mailer.Sender, siteOrigin string) *ResetFlow {
	return &ResetFlow{
		credentials:    credentials,
		sender:         sender,
		siteOrigin:     strings.TrimSuffix(siteOrigin, "/"),
		ttl:            ResetTokenTTL,
		RandStringFunc: pkg.GenerateRandomString,
		NowFunc:        time.Now,
	}
}

func (f *ResetFlow) ResetLink(token string) string {
	return fmt.Sprintf("%s/auth?reset=%s", f.siteOrigin, url.QueryEscape(token))
}

// RequestReset issues a reset token and mails the link, but only when email is exactly the
// stored recovery address. Otherwise it reports false and leaves the store untouched.
func (f *ResetFlow) RequestReset(ctx context.Context, email string) (bool, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "resetFlow.requestReset")
	defer span.End()

	creds, err := f.credentials.Get(ctx)
	if err != nil {
		return false, err
	}
	if email == "" || creds.Email != email {
		return false, nil
	}

	token, err := f.RandStringFunc(resetTokenSize)
	if err != nil {
		return false, fmt.Errorf("generate reset token: %w", err)
	}
	expiresAt := f.NowFunc().Add(f.ttl)
	expiry := expiresAt.UnixMilli()

	if _, err := f.credentials.Update(ctx, CredentialsUpdate{
		ResetToken:       &token,
		ResetTokenExpiry: &expiry,
	}); err != nil {
		return false, fmt.Errorf("store reset token: %w", err)
	}

	if err := f.sender.SendPasswordReset(ctx, mailer.PasswordResetEmail{
		To:        creds.Email,
		Username:  creds.Username,
		ResetLink: f.ResetLink(token),
		ExpiresAt: expiresAt,
	}); err != nil {
		return false, fmt.Errorf("send reset email: %w", err)
	}

	log.Infoln("password reset requested, email sent")
	return true, nil
}

// RedeemReset sets a new password if token matches the pending, unexpired reset token.
// A mismatch leaves the pending token in place.
func (f *ResetFlow) RedeemReset(ctx context.Context, token, newPassword string) (bool, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "resetFlow.redeemReset")
	defer span.End()

	if len(newPassword) < MinPasswordLength {
		return false, ErrWeakPassword
	}

	creds, err := f.credentials.Get(ctx)
	if err != nil {
		return false, err
	}

	if !creds.HasPendingReset() || token == "" {
		return false, nil
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(creds.ResetToken)) != 1 {
		return false, nil
	}
	if f.NowFunc().UnixMilli() >= creds.ResetTokenExpiry {
		return false, nil
	}

	update := clearResetUpdate()
	update.Password = &newPassword
	if _, err := f.credentials.Update(ctx, update); err != nil {
		return false, fmt.Errorf("update password: %w", err)
	}

	log.Infoln("password reset redeemed")
	return true, nil
}

func (f *ResetFlow) ChangePassword(ctx context.Context, currentPassword, newPassword string) (bool, error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "resetFlow.changePassword")
	defer span.End()

	if len(newPassword) < MinPasswordLength {
		return false, ErrWeakPassword
	}

	creds, err := f.credentials.Get(ctx)
	if err != nil {
		return false, err
	}
	if !pkg.CheckPasswordHash(currentPassword, creds.PasswordHash) {
		return false, nil
	}

	if _, err := f.credentials.Update(ctx, CredentialsUpdate{Password: &newPassword}); err != nil {
		return false, fmt.Errorf("update password: %w", err)
	}

	log.Infoln("admin password changed")
	return true, nil
}
