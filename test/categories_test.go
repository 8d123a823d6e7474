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

	"github.com/cloudyskybd/portfolio/internal/category"
)

func (s *IntegrationTestSuite) listPublicCategories(ctx context.Context) []*category.Category {
	status, body := s.do(ctx, http.MethodGet, "/categories", "", nil)
	require.Equal(s.T(), http.StatusOK, status)

	var list category.ListResponse
	require.NoError(s.T(), json.Unmarshal(body, &list))
	return list.Categories
}

func (s *IntegrationTestSuite) TestCategories() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	token := s.login(ctx, testPassword)
	before := s.listPublicCategories(ctx)

	name := gofakeit.Word() + " " + gofakeit.LetterN(6)
	slug := strings.ToLower(strings.ReplaceAll(name, " ", "-"))

	status, body := s.do(ctx, http.MethodPost, "/functions/manage-categories", token, map[string]any{
		"action":   "create",
		"category": map[string]any{"name": name, "slug": slug},
	})
	require.Equal(t, http.StatusOK, status, string(body))
	var created category.CategoryResponse
	require.NoError(t, json.Unmarshal(body, &created))
	assert.Nil(t, created.Category.Description)

	// public list is refreshed after a mutation
	assert.Len(t, s.listPublicCategories(ctx), len(before)+1)

	status, _ = s.do(ctx, http.MethodPost, "/functions/manage-categories", token, map[string]any{
		"action":   "create",
		"category": map[string]any{"name": "dup", "slug": slug},
	})
	assert.Equal(t, http.StatusConflict, status)

	status, body = s.do(ctx, http.MethodPost, "/functions/manage-categories", token, map[string]any{
		"action":  "update",
		"id":      created.Category.ID,
		"updates": map[string]any{"description": "about things"},
	})
	require.Equal(t, http.StatusOK, status, string(body))
	var updated category.CategoryResponse
	require.NoError(t, json.Unmarshal(body, &updated))
	require.NotNil(t, updated.Category.Description)
	assert.Equal(t, "about things", *updated.Category.Description)
	assert.Equal(t, name, updated.Category.Name)

	status, _ = s.do(ctx, http.MethodPost, "/functions/manage-categories", token, map[string]any{"action": "rename"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = s.do(ctx, http.MethodPost, "/functions/manage-categories", token, map[string]any{
		"action": "delete",
		"ids":    []string{created.Category.ID},
	})
	require.Equal(t, http.StatusOK, status, string(body))
	assert.JSONEq(t, `{"ok":true}`, string(body))

	assert.Len(t, s.listPublicCategories(ctx), len(before))
}

func (s *IntegrationTestSuite) TestCategories_DeleteMany() {
	t := s.T()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	token := s.login(ctx, testPassword)
	before := s.listPublicCategories(ctx)

	prefix := strings.ToLower(gofakeit.LetterN(8))
	ids := make([]string, 0, 4)
	for i := 0; i < 4; i++ {
		status, body := s.do(ctx, http.MethodPost, "/functions/manage-categories", token, map[string]any{
			"action": "create",
			"category": map[string]any{
				"name": prefix + " " + gofakeit.Word(),
				"slug": prefix + "-" + strings.ToLower(gofakeit.LetterN(10)),
			},
		})
		require.Equal(t, http.StatusOK, status, string(body))
		var created category.CategoryResponse
		require.NoError(t, json.Unmarshal(body, &created))
		ids = append(ids, created.Category.ID)
	}
	require.Len(t, s.listPublicCategories(ctx), len(before)+4)

	status, body := s.do(ctx, http.MethodPost, "/functions/manage-categories", token, map[string]any{
		"action": "delete",
		"ids":    ids[:3],
	})
	require.Equal(t, http.StatusOK, status, string(body))

	after := s.listPublicCategories(ctx)
	assert.Len(t, after, len(before)+1)
	var survivors []string
	for _, c := range after {
		for _, id := range ids {
			if c.ID == id {
				survivors = append(survivors, c.ID)
			}
		}
	}
	assert.Equal(t, []string{ids[3]}, survivors)
}
