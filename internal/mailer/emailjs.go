package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cloudyskybd/portfolio/internal/telemetry/tracing"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const emailJSSendPath = "/api/v1.0/email/send"

type EmailJSConfig struct {
	BaseURL    string
	ServiceID  string
	TemplateID string
	PublicKey  string
	PrivateKey string
}

// EmailJSSender sends the reset link through the EmailJS REST API using the same template
// the site used to trigger from the browser.
type EmailJSSender struct {
	cfg        EmailJSConfig
	httpClient *http.Client
}

func NewEmailJSSender(cfg EmailJSConfig) *EmailJSSender {
	return &EmailJSSender{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout:   10 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

type emailJSRequest struct {
	ServiceID      string            `json:"service_id"`
	TemplateID     string            `json:"template_id"`
	UserID         string            `json:"user_id"`
	AccessToken    string            `json:"accessToken,omitempty"`
	TemplateParams map[string]string `json:"template_params"`
}

func (s *EmailJSSender) SendPasswordReset(ctx context.Context, email PasswordResetEmail) error {
	ctx, span := tracing.GlobalTracer.Start(ctx, "emailjs.sendPasswordReset")
	defer span.End()

	payload, err := json.Marshal(emailJSRequest{
		ServiceID:   s.cfg.ServiceID,
		TemplateID:  s.cfg.TemplateID,
		UserID:      s.cfg.PublicKey,
		AccessToken: s.cfg.PrivateKey,
		TemplateParams: map[string]string{
			"to_email":   email.To,
			"to_name":    email.Username,
			"reset_link": email.ResetLink,
			"expires_at": email.ExpiresAt.UTC().Format(time.RFC1123),
		},
	})
	if err != nil {
		return fmt.Errorf("marshal emailjs request: %w", err)
	}

	url := strings.TrimSuffix(s.cfg.BaseURL, "/") + emailJSSendPath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create emailjs request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send emailjs request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("emailjs responded with %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return nil
}
