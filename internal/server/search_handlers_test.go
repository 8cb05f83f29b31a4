package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"plume/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type searchResponse struct {
	Success      bool           `json:"success"`
	Posts        []*models.Post `json:"posts"`
	TotalResults int            `json:"totalResults"`
	CurrentPage  int            `json:"currentPage"`
	TotalPages   int            `json:"totalPages"`
	Query        string         `json:"query"`
}

func TestSearchPosts(t *testing.T) {
	now := time.Now()
	posts := &postRepoStub{
		textSearchFn: func(_ context.Context, query string, limit, offset int, orderByRank bool, _ uint) ([]*models.Post, error) {
			return []*models.Post{
				{ID: 1, Title: "React Hooks Guide", Content: "Learn React hooks", CreatedAt: now},
				{ID: 2, Title: "Intro to React", Content: "Components and state", CreatedAt: now},
			}, nil
		},
		fuzzySearchFn: func(_ context.Context, tokens []string, limit int, _ uint) ([]*models.Post, error) {
			return []*models.Post{
				{ID: 2, Title: "Intro to React", Content: "Components and state", CreatedAt: now},
				{ID: 3, Title: "Go Concurrency", Content: "react quickly to channel sends", CreatedAt: now},
			}, nil
		},
	}
	_, app := newTestServer(t, testDeps{posts: posts})

	req := httptest.NewRequest(http.MethodGet, "/api/posts/search?query=react", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body searchResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.Success)
	assert.Equal(t, "react", body.Query)
	assert.Equal(t, 3, body.TotalResults)
	assert.Equal(t, 1, body.CurrentPage)
	assert.Len(t, body.Posts, 3)

	// No duplicates across the two retrievals.
	seen := map[uint]bool{}
	for _, p := range body.Posts {
		assert.False(t, seen[p.ID], "post %d returned twice", p.ID)
		seen[p.ID] = true
	}
}

func TestSearchPosts_BlankQuery(t *testing.T) {
	posts := &postRepoStub{
		textSearchFn: func(context.Context, string, int, int, bool, uint) ([]*models.Post, error) {
			t.Fatal("store should not be queried for a blank search")
			return nil, nil
		},
	}
	_, app := newTestServer(t, testDeps{posts: posts})

	req := httptest.NewRequest(http.MethodGet, "/api/posts/search", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetSuggestions(t *testing.T) {
	posts := &postRepoStub{
		suggestScatterFn: func(_ context.Context, pattern string, limit int) ([]string, error) {
			assert.Equal(t, 5, limit)
			return []string{"React Hooks Guide", "Remote Work"}, nil
		},
		suggestSubstringFn: func(_ context.Context, query string, limit int) ([]string, error) {
			assert.Equal(t, 5, limit)
			return []string{"Remote Work", "Why I like React"}, nil
		},
	}
	_, app := newTestServer(t, testDeps{posts: posts})

	req := httptest.NewRequest(http.MethodGet, "/api/posts/suggestions?query=re", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Success     bool     `json:"success"`
		Suggestions []string `json:"suggestions"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, []string{"React Hooks Guide", "Remote Work", "Why I like React"}, body.Suggestions)
}

func TestGetSuggestions_ShortQuery(t *testing.T) {
	_, app := newTestServer(t, testDeps{})

	req := httptest.NewRequest(http.MethodGet, "/api/posts/suggestions?query=a", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Suggestions []string `json:"suggestions"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Empty(t, body.Suggestions)
}
