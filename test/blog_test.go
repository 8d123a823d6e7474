//go:build integration_test || all_tests

package test

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudyskybd/portfolio/internal/blog"
)

func (s *IntegrationTestSuite) TestBlogPosts() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	token := s.login(ctx, testPassword)
	slug := strings.ToLower(gofakeit.LetterN(12))

	status, _ := s.do(ctx, http.MethodPost, "/functions/create-blog-post", "", map[string]any{"title": "x", "slug": slug})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, body := s.do(ctx, http.MethodPost, "/functions/create-blog-post", token, map[string]any{
		"title":   gofakeit.Sentence(4),
		"slug":    slug,
		"content": gofakeit.Paragraph(2, 3, 10, " "),
		"tags":    []string{"go", "testing"},
	})
	require.Equal(t, http.StatusCreated, status, string(body))

	var created blog.PostResponse
	require.NoError(t, json.Unmarshal(body, &created))
	assert.Equal(t, blog.StatusDraft, created.Post.Status)
	assert.Equal(t, blog.DefaultAuthorID, created.Post.AuthorID)
	assert.Nil(t, created.Post.PublishedAt)
	postID := created.Post.ID

	status, _ = s.do(ctx, http.MethodPost, "/functions/create-blog-post", token, map[string]any{
		"title": "Duplicate",
		"slug":  slug,
	})
	assert.Equal(t, http.StatusConflict, status)

	// drafts are not public
	status, _ = s.do(ctx, http.MethodGet, "/blog/posts/"+slug, "", nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, body = s.do(ctx, http.MethodPut, "/functions/manage-blog-post/"+postID, token, map[string]any{
		"status":       blog.StatusPublished,
		"published_at": "2026-01-02T03:04:05Z",
		"excerpt":      nil,
	})
	require.Equal(t, http.StatusOK, status, string(body))

	var updated blog.PostResponse
	require.NoError(t, json.Unmarshal(body, &updated))
	assert.Equal(t, blog.StatusPublished, updated.Post.Status)
	require.NotNil(t, updated.Post.PublishedAt)
	assert.Nil(t, updated.Post.Excerpt)
	assert.True(t, updated.Post.UpdatedAt.After(created.Post.UpdatedAt) || updated.Post.UpdatedAt.Equal(created.Post.UpdatedAt))

	status, _ = s.do(ctx, http.MethodPut, "/functions/manage-blog-post/"+postID, token, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = s.do(ctx, http.MethodGet, "/blog/posts/"+slug, "", nil)
	require.Equal(t, http.StatusOK, status)
	var public blog.PostResponse
	require.NoError(t, json.Unmarshal(body, &public))
	assert.Equal(t, postID, public.Post.ID)

	status, body = s.do(ctx, http.MethodGet, "/blog/posts/page/1/size/100", "", nil)
	require.Equal(t, http.StatusOK, status)
	var list blog.PostsResponse
	require.NoError(t, json.Unmarshal(body, &list))
	assert.GreaterOrEqual(t, list.Total, 1)
	found := false
	for _, p := range list.Posts {
		found = found || p.ID == postID
	}
	assert.True(t, found)

	status, _ = s.do(ctx, http.MethodPatch, "/functions/manage-blog-post/"+postID, token, nil)
	assert.Equal(t, http.StatusMethodNotAllowed, status)

	status, body = s.do(ctx, http.MethodDelete, "/functions/manage-blog-post", token, map[string]string{"postId": postID})
	require.Equal(t, http.StatusOK, status, string(body))
	assert.JSONEq(t, `{"ok":true,"message":"Blog post deleted successfully"}`, string(body))

	status, _ = s.do(ctx, http.MethodDelete, "/functions/manage-blog-post/"+postID, token, nil)
	assert.Equal(t, http.StatusNotFound, status)

	var count int
	require.NoError(t, s.DB.QueryRowContext(ctx, "SELECT count(*) FROM blog_posts WHERE id = $1", postID).Scan(&count))
	assert.Zero(t, count)
}
