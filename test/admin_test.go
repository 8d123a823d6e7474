//go:build integration_test || all_tests

package test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudyskybd/portfolio/internal/admin"
)

func (s *IntegrationTestSuite) TestAdminSession() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	status, _ := s.do(ctx, http.MethodPost, "/a/login", "", map[string]string{
		"username": testUsername,
		"password": "bad-password",
	})
	assert.Equal(t, http.StatusUnauthorized, status)

	token := s.login(ctx, testPassword)

	status, body := s.do(ctx, http.MethodGet, "/a/session", token, nil)
	require.Equal(t, http.StatusOK, status)
	var session admin.SessionResponse
	require.NoError(t, json.Unmarshal(body, &session))
	assert.True(t, session.Authenticated)
	assert.Greater(t, session.Expiry, int64(0))

	status, _ = s.do(ctx, http.MethodGet, "/a/session", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = s.do(ctx, http.MethodPost, "/a/logout", token, nil)
	assert.Equal(t, http.StatusOK, status)

	status, _ = s.do(ctx, http.MethodGet, "/a/session", token, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func (s *IntegrationTestSuite) TestPasswordReset() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// unknown address still answers ok
	status, body := s.do(ctx, http.MethodPost, "/a/reset/request", "", map[string]string{"email": "someone@else.test"})
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"ok":true}`, string(body))

	status, _ = s.do(ctx, http.MethodPost, "/a/reset/request", "", map[string]string{"email": testEmail})
	require.Equal(t, http.StatusOK, status)

	mail, ok := s.mails.Last()
	require.True(t, ok)
	assert.Equal(t, testEmail, mail.To)

	link, err := url.Parse(mail.ResetLink)
	require.NoError(t, err)
	resetToken := link.Query().Get("reset")
	require.NotEmpty(t, resetToken)

	status, _ = s.do(ctx, http.MethodPost, "/a/reset/redeem", "", map[string]string{
		"token":       "wrong-token",
		"newPassword": "another-pass",
	})
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = s.do(ctx, http.MethodPost, "/a/reset/redeem", "", map[string]string{
		"token":       resetToken,
		"newPassword": "reset-pass",
	})
	require.Equal(t, http.StatusOK, status, string(body))

	token := s.login(ctx, "reset-pass")

	// restore the suite password for the other tests
	status, body = s.do(ctx, http.MethodPost, "/a/password", token, map[string]string{
		"currentPassword": "reset-pass",
		"newPassword":     testPassword,
	})
	require.Equal(t, http.StatusOK, status, string(body))
	s.login(ctx, testPassword)
}
