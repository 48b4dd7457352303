package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/itchan-dev/studyboard/internal/config"
	"github.com/itchan-dev/studyboard/internal/domain"
	internal_errors "github.com/itchan-dev/studyboard/internal/errors"
	"github.com/itchan-dev/studyboard/internal/markdown"
	mw "github.com/itchan-dev/studyboard/internal/middleware"
	"github.com/itchan-dev/studyboard/internal/service"
	"github.com/itchan-dev/studyboard/internal/storage/memory"
	"github.com/itchan-dev/studyboard/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testUserHeader = "X-Test-User"

type testEnv struct {
	h      *Handler
	router *chi.Mux
	board  *service.Board
	review *service.Review
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	board := service.NewBoard(memory.New(nil), service.NewThreadRegistry(), &utils.ThreadNameValidator{}, &utils.ReplyValidator{}, nil)
	board.SetUserRole("prof", domain.RoleGrader)
	review := service.NewReview(nil)
	h := New(board, review, markdown.New(), config.New(config.Public{}, "key"))
	return &testEnv{h: h, router: setupTestRouter(h), board: board, review: review}
}

func setupTestRouter(h *Handler) *chi.Mux {
	router := chi.NewRouter()

	// Add mock user to context using the same key as auth middleware
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if username := r.Header.Get(testUserHeader); username != "" {
				r = mw.WithUsername(r, username)
			}
			next.ServeHTTP(w, r)
		})
	})

	router.Route("/v1", func(r chi.Router) {
		r.Get("/me", h.Me)

		r.Get("/threads", h.ListThreads)
		r.Post("/threads", h.CreateThread)
		r.Put("/threads/{name}", h.RenameThread)
		r.Delete("/threads/{name}", h.DeleteThread)

		r.Get("/posts", h.ListPosts)
		r.Post("/posts", h.CreatePost)
		r.Get("/posts/unread", h.ListUnreadPosts)
		r.Get("/posts/{id}", h.GetPost)
		r.Put("/posts/{id}", h.UpdatePost)
		r.Delete("/posts/{id}", h.DeletePost)
		r.Post("/posts/{id}/read", h.MarkPostRead)
		r.Post("/posts/{id}/flag", h.FlagPost)
		r.Delete("/posts/{id}/flag", h.UnflagPost)
		r.Post("/posts/{id}/hide", h.HidePost)
		r.Get("/flagged", h.ListFlaggedPosts)

		r.Get("/posts/{id}/replies", h.ListReplies)
		r.Post("/posts/{id}/replies", h.CreateReply)
		r.Put("/replies/{id}", h.UpdateReply)
		r.Delete("/replies/{id}", h.DeleteReply)
		r.Post("/replies/{id}/read", h.MarkReplyRead)

		r.Post("/feedback", h.CreateFeedback)
		r.Get("/feedback/mine", h.ListMyFeedback)
		r.Get("/feedback/{type}/{id}", h.ListFeedbackForTarget)

		r.Get("/grading/helpers", h.ListHelpers)
		r.Get("/grading/summary.csv", h.GradingSummaryCSV)
		r.Get("/grading/parameters", h.ListParameters)
		r.Post("/grading/parameters", h.CreateParameter)
		r.Put("/grading/parameters/{id}", h.UpdateParameter)
		r.Delete("/grading/parameters/{id}", h.DeleteParameter)
	})
	router.Get("/health", h.Health)

	return router
}

func do(t *testing.T, router http.Handler, method, path, username, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if username != "" {
		req.Header.Set(testUserHeader, username)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"validation", internal_errors.Validation("bad"), http.StatusBadRequest},
		{"wrapped not found", fmt.Errorf("post 1: %w", internal_errors.NotFound), http.StatusNotFound},
		{"already exists", internal_errors.AlreadyExists, http.StatusConflict},
		{"forbidden", fmt.Errorf("x: %w", internal_errors.Forbidden), http.StatusForbidden},
		{"explicit status", &internal_errors.ErrorWithStatusCode{Message: "busy", StatusCode: http.StatusConflict}, http.StatusConflict},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			writeError(rr, tt.err)
			assert.Equal(t, tt.expected, rr.Code)
		})
	}
}

// MockBoardService overrides single methods; calling anything else panics.
type MockBoardService struct {
	service.BoardService
	MockCreatePost func(author domain.Username, content domain.PostText, thread domain.ThreadName) (domain.Post, error)
}

func (m *MockBoardService) CreatePost(author domain.Username, content domain.PostText, thread domain.ThreadName) (domain.Post, error) {
	return m.MockCreatePost(author, content, thread)
}

func TestServiceFailureIsInternalError(t *testing.T) {
	mock := &MockBoardService{
		MockCreatePost: func(domain.Username, domain.PostText, domain.ThreadName) (domain.Post, error) {
			return domain.Post{}, errors.New("Mock error")
		},
	}
	h := New(mock, nil, markdown.New(), config.New(config.Public{}, "key"))
	router := setupTestRouter(h)

	rr := do(t, router, "POST", "/v1/posts", "alice", `{"content": "hello"}`)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.NotContains(t, rr.Body.String(), "Mock error")
}

func TestHealthAndMe(t *testing.T) {
	env := newTestEnv(t)

	rr := do(t, env.router, "GET", "/health", "", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", rr.Body.String())

	rr = do(t, env.router, "GET", "/v1/me", "", "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = do(t, env.router, "GET", "/v1/me", "prof", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, domain.RoleGrader, decode[struct {
		Role domain.Role `json:"role"`
	}](t, rr).Role)
}
