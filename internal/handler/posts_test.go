package handler

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/itchan-dev/studyboard/internal/api"
	"github.com/itchan-dev/studyboard/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createPost(t *testing.T, env *testEnv, username, body string) api.PostResponse {
	t.Helper()
	rr := do(t, env.router, "POST", "/v1/posts", username, body)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return decode[api.PostResponse](t, rr)
}

func TestCreatePostHandler(t *testing.T) {
	env := newTestEnv(t)

	t.Run("successful request", func(t *testing.T) {
		p := createPost(t, env, "alice", `{"content": "How do **pointers** work?", "thread": "Homework"}`)
		assert.Equal(t, "alice", p.Author)
		assert.Equal(t, "Homework", p.Thread)
		assert.Contains(t, p.Html, "<strong>pointers</strong>")
		assert.Equal(t, domain.ModerationNormal, p.Moderation)
		assert.Nil(t, p.EditedAt)
	})

	t.Run("unknown thread falls back", func(t *testing.T) {
		p := createPost(t, env, "alice", `{"content": "hello", "thread": "Nope"}`)
		assert.Equal(t, "General", p.Thread)
	})

	tests := []struct {
		name     string
		username string
		body     string
		expected int
	}{
		{"invalid json", "alice", `{ivalid json::}`, http.StatusBadRequest},
		{"missing content", "alice", `{"thread": "General"}`, http.StatusBadRequest},
		{"blank content", "alice", `{"content": "   "}`, http.StatusBadRequest},
		{"too long", "alice", fmt.Sprintf(`{"content": %q}`, strings.Repeat("a", 4097)), http.StatusBadRequest},
		{"no user in context", "", `{"content": "hello"}`, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, env.router, "POST", "/v1/posts", tt.username, tt.body)
			assert.Equal(t, tt.expected, rr.Code)
		})
	}
}

func TestGetPostHandler(t *testing.T) {
	env := newTestEnv(t)
	p := createPost(t, env, "alice", `{"content": "hello"}`)

	rr := do(t, env.router, "GET", fmt.Sprintf("/v1/posts/%d", p.Id), "bob", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, p.Id, decode[api.PostResponse](t, rr).Id)

	assert.Equal(t, http.StatusNotFound, do(t, env.router, "GET", "/v1/posts/999", "bob", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, env.router, "GET", "/v1/posts/abc", "bob", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, env.router, "GET", "/v1/posts/-1", "bob", "").Code)
}

func TestListPostsHandler(t *testing.T) {
	env := newTestEnv(t)
	createPost(t, env, "alice", `{"content": "recursion help", "thread": "Homework"}`)
	second := createPost(t, env, "bob", `{"content": "recursion meme"}`)
	createPost(t, env, "carol", `{"content": "project team?", "thread": "Projects"}`)

	list := func(query string) []api.PostResponse {
		rr := do(t, env.router, "GET", "/v1/posts"+query, "alice", "")
		require.Equal(t, http.StatusOK, rr.Code)
		return decode[api.PostsResponse](t, rr).Posts
	}

	assert.Len(t, list(""), 3)
	assert.Len(t, list("?q=recursion"), 2)
	assert.Len(t, list("?q=recursion&thread=homework"), 1)
	assert.Len(t, list("?others=true"), 2)

	newest := list("")
	assert.Equal(t, "carol", newest[0].Author, "newest first")

	env.board.HidePost(second.Id)
	assert.Len(t, list("?q=recursion"), 1, "hidden posts are not listed for other students")
	assert.Equal(t, http.StatusNotFound, do(t, env.router, "GET", fmt.Sprintf("/v1/posts/%d", second.Id), "alice", "").Code)
	assert.Equal(t, http.StatusOK, do(t, env.router, "GET", fmt.Sprintf("/v1/posts/%d", second.Id), "bob", "").Code)
	assert.Equal(t, http.StatusOK, do(t, env.router, "GET", fmt.Sprintf("/v1/posts/%d", second.Id), "prof", "").Code)

	rr := do(t, env.router, "GET", "/v1/posts?q=nothing-matches", "alice", "")
	assert.JSONEq(t, `{"posts": []}`, rr.Body.String())
}

func TestUpdatePostHandler(t *testing.T) {
	env := newTestEnv(t)
	p := createPost(t, env, "alice", `{"content": "first draft"}`)
	path := fmt.Sprintf("/v1/posts/%d", p.Id)

	rr := do(t, env.router, "PUT", path, "bob", `{"content": "hijacked"}`)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = do(t, env.router, "PUT", path, "alice", `{"content": "second draft"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	updated := decode[api.PostResponse](t, rr)
	assert.Equal(t, "second draft", updated.Content)
	assert.NotNil(t, updated.EditedAt)

	assert.Equal(t, http.StatusBadRequest, do(t, env.router, "PUT", path, "alice", `{}`).Code)
	assert.Equal(t, http.StatusNotFound, do(t, env.router, "PUT", "/v1/posts/999", "alice", `{"content": "x"}`).Code)

	require.Equal(t, http.StatusNoContent, do(t, env.router, "DELETE", path, "alice", "").Code)
	assert.Equal(t, http.StatusConflict, do(t, env.router, "PUT", path, "alice", `{"content": "revive"}`).Code)
}

func TestDeletePostHandler(t *testing.T) {
	env := newTestEnv(t)
	own := createPost(t, env, "alice", `{"content": "mine"}`)
	other := createPost(t, env, "bob", `{"content": "not mine"}`)

	assert.Equal(t, http.StatusForbidden, do(t, env.router, "DELETE", fmt.Sprintf("/v1/posts/%d", other.Id), "alice", "").Code)
	assert.Equal(t, http.StatusNoContent, do(t, env.router, "DELETE", fmt.Sprintf("/v1/posts/%d", own.Id), "alice", "").Code)
	assert.Equal(t, http.StatusNoContent, do(t, env.router, "DELETE", fmt.Sprintf("/v1/posts/%d", other.Id), "prof", "").Code)

	rr := do(t, env.router, "GET", fmt.Sprintf("/v1/posts/%d", own.Id), "alice", "")
	require.Equal(t, http.StatusOK, rr.Code)
	got := decode[api.PostResponse](t, rr)
	assert.True(t, got.Deleted)
	assert.Equal(t, domain.Tombstone, got.Content)
}

func TestReadStateHandlers(t *testing.T) {
	env := newTestEnv(t)
	p1 := createPost(t, env, "alice", `{"content": "one"}`)
	p2 := createPost(t, env, "alice", `{"content": "two"}`)

	unread := func() []api.PostResponse {
		rr := do(t, env.router, "GET", "/v1/posts/unread", "bob", "")
		require.Equal(t, http.StatusOK, rr.Code)
		return decode[api.PostsResponse](t, rr).Posts
	}
	assert.Len(t, unread(), 2)

	assert.Equal(t, http.StatusNoContent, do(t, env.router, "POST", fmt.Sprintf("/v1/posts/%d/read", p1.Id), "bob", "").Code)
	remaining := unread()
	require.Len(t, remaining, 1)
	assert.Equal(t, p2.Id, remaining[0].Id)

	assert.Equal(t, http.StatusNotFound, do(t, env.router, "POST", "/v1/posts/999/read", "bob", "").Code)
}

func TestModerationHandlers(t *testing.T) {
	env := newTestEnv(t)
	p := createPost(t, env, "alice", `{"content": "buy essays"}`)
	flagPath := fmt.Sprintf("/v1/posts/%d/flag", p.Id)

	assert.Equal(t, http.StatusForbidden, do(t, env.router, "POST", flagPath, "bob", `{"reason": "spam"}`).Code)
	assert.Equal(t, http.StatusForbidden, do(t, env.router, "GET", "/v1/flagged", "bob", "").Code)

	require.Equal(t, http.StatusNoContent, do(t, env.router, "POST", flagPath, "prof", `{"reason": "spam"}`).Code)
	rr := do(t, env.router, "GET", "/v1/flagged", "prof", "")
	require.Equal(t, http.StatusOK, rr.Code)
	flagged := decode[api.PostsResponse](t, rr).Posts
	require.Len(t, flagged, 1)
	assert.Equal(t, "spam", flagged[0].FlagReason)
	assert.Equal(t, domain.ModerationFlagged, flagged[0].Moderation)

	require.Equal(t, http.StatusNoContent, do(t, env.router, "DELETE", flagPath, "prof", "").Code)
	rr = do(t, env.router, "GET", "/v1/flagged", "prof", "")
	assert.JSONEq(t, `{"posts": []}`, rr.Body.String())

	assert.Equal(t, http.StatusNoContent, do(t, env.router, "POST", flagPath, "prof", "").Code, "reason is optional")
	assert.Equal(t, http.StatusNoContent, do(t, env.router, "POST", fmt.Sprintf("/v1/posts/%d/hide", p.Id), "prof", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, env.router, "POST", "/v1/posts/999/hide", "prof", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, env.router, "DELETE", "/v1/posts/999/flag", "prof", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, env.router, "POST", "/v1/posts/999/flag", "prof", "").Code)
}
