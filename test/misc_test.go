//go:build integration_test || all_tests

package test

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudyskybd/portfolio/internal/upload"
)

func (s *IntegrationTestSuite) TestHealthAndVersion() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	status, body := s.do(ctx, http.MethodGet, "/version", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "test-version-info", string(body))

	status, body = s.do(ctx, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, status, string(body))
	assert.JSONEq(t, `{"status":"ok","dependencies":{"postgres":"up","redis":"up"}}`, string(body))
}

func (s *IntegrationTestSuite) TestSignedUploadURL() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	status, _ := s.do(ctx, http.MethodPost, "/functions/create-signed-upload-url", "", map[string]string{
		"postId":   "post-1",
		"filename": "cover.png",
	})
	assert.Equal(t, http.StatusUnauthorized, status)

	token := s.login(ctx, testPassword)
	status, body := s.do(ctx, http.MethodPost, "/functions/create-signed-upload-url", token, map[string]string{
		"postId":   "post-1",
		"filename": "cover.png",
	})
	require.Equal(t, http.StatusOK, status, string(body))

	var resp upload.SignedURLResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	assert.Equal(t, "posts/post-1/cover.png", resp.Path)
	assert.Contains(t, resp.SignedURL, "X-Amz-Signature")
	assert.True(t, strings.HasPrefix(resp.PublicURL, "http://localhost:9010/blog-thumbnails/posts/post-1/"))
}
