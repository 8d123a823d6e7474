//go:build integration_test || all_tests

package test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/stretchr/testify/require"

	"github.com/cloudyskybd/portfolio/internal/admin"
	"github.com/cloudyskybd/portfolio/internal/auth"
)

// do sends body as JSON (when not nil) and returns the status and the read response body.
func (s *IntegrationTestSuite) do(ctx context.Context, method, path, token string, body any) (int, []byte) {
	t := s.T()

	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, serverEndpoint+path, reqBody)
	require.NoError(t, err)
	req.Header.Set("User-Agent", "test-agent")
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set(auth.SessionHeader, token)
	}

	resp, err := s.httpClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, respBytes
}

func (s *IntegrationTestSuite) login(ctx context.Context, password string) string {
	t := s.T()

	status, body := s.do(ctx, http.MethodPost, "/a/login", "", map[string]string{
		"username": testUsername,
		"password": password,
	})
	require.Equal(t, http.StatusOK, status, string(body))

	var loginResp admin.LoginResponse
	require.NoError(t, json.Unmarshal(body, &loginResp))
	require.NotEmpty(t, loginResp.Token)

	return loginResp.Token
}
