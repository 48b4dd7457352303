package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/itchan-dev/studyboard/internal/config"
	"github.com/itchan-dev/studyboard/internal/setup"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) (http.Handler, *setup.Dependencies) {
	t.Helper()
	cfg := config.New(config.Public{
		CorsOrigins: []string{"http://localhost:8081"},
		Graders:     []string{"prof"},
		RateLimit:   config.RateLimit{PostsPerSecond: 0.001, RepliesPerSecond: 0.001, Burst: 2},
	}, "router_test_key")
	deps, err := setup.SetupDependencies(cfg)
	require.NoError(t, err)
	t.Cleanup(deps.Close)
	return New(deps), deps
}

func request(t *testing.T, r http.Handler, deps *setup.Dependencies, method, path, username, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if username != "" {
		token, err := deps.Jwt.NewToken(username)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestPublicRoutes(t *testing.T) {
	r, deps := newTestRouter(t)

	rr := request(t, r, deps, "GET", "/health", "", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "DENY", rr.Header().Get("X-Frame-Options"))
	assert.NotEmpty(t, rr.Header().Get("X-Request-Id"))

	rr = request(t, r, deps, "GET", "/metrics", "", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "studyboard_http_requests_total")

	assert.Equal(t, http.StatusNotFound, request(t, r, deps, "GET", "/nope", "", "").Code)
}

func TestAuthRequired(t *testing.T) {
	r, deps := newTestRouter(t)

	assert.Equal(t, http.StatusUnauthorized, request(t, r, deps, "GET", "/v1/threads", "", "").Code)
	assert.Equal(t, http.StatusOK, request(t, r, deps, "GET", "/v1/threads", "alice", "").Code)

	rr := request(t, r, deps, "GET", "/v1/me", "prof", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"username": "prof", "role": "GRADER"}`, rr.Body.String())
}

func TestCreationIsRateLimited(t *testing.T) {
	r, deps := newTestRouter(t)

	for i := 0; i < 2; i++ {
		rr := request(t, r, deps, "POST", "/v1/posts", "alice", `{"content": "hello"}`)
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	}
	assert.Equal(t, http.StatusTooManyRequests, request(t, r, deps, "POST", "/v1/posts", "alice", `{"content": "hello"}`).Code)
	assert.Equal(t, http.StatusCreated, request(t, r, deps, "POST", "/v1/posts", "bob", `{"content": "hello"}`).Code)
	assert.Equal(t, http.StatusOK, request(t, r, deps, "GET", "/v1/posts", "alice", "").Code, "reads are not limited")
}

func TestCorsPreflight(t *testing.T) {
	r, _ := newTestRouter(t)

	req := httptest.NewRequest("OPTIONS", "/v1/posts", nil)
	req.Header.Set("Origin", "http://localhost:8081")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, "http://localhost:8081", rr.Header().Get("Access-Control-Allow-Origin"))
}
