package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/itchan-dev/studyboard/internal/api"
	"github.com/itchan-dev/studyboard/internal/domain"
	internal_errors "github.com/itchan-dev/studyboard/internal/errors"
)

// visible hides HIDDEN posts from everyone but graders and the author.
func (h *Handler) visible(p domain.Post, username domain.Username) bool {
	return p.Moderation() != domain.ModerationHidden || p.Author() == username || h.isGrader(username)
}

func (h *Handler) postResponse(p domain.Post, username domain.Username) api.PostResponse {
	return api.NewPostResponse(h.board.PostSummary(p, username), h.renderer.Render(p.Content()))
}

func (h *Handler) postsResponse(posts []domain.Post, username domain.Username) api.PostsResponse {
	resp := api.PostsResponse{Posts: []api.PostResponse{}}
	for _, p := range posts {
		if h.visible(p, username) {
			resp.Posts = append(resp.Posts, h.postResponse(p, username))
		}
	}
	return resp
}

// loadPost writes 404 and returns false for a missing or invisible post.
func (h *Handler) loadPost(w http.ResponseWriter, r *http.Request, username domain.Username) (domain.Post, bool) {
	id, err := parseIdParam(r, "id")
	if err != nil {
		writeError(w, err)
		return domain.Post{}, false
	}
	p, ok := h.board.GetPost(id)
	if !ok || !h.visible(p, username) {
		writeError(w, fmt.Errorf("post %d: %w", id, internal_errors.NotFound))
		return domain.Post{}, false
	}
	return p, true
}

func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	username, ok := currentUser(w, r)
	if !ok {
		return
	}

	var body api.CreatePostRequest
	if err := decodeValidate(r.Body, &body); err != nil {
		writeError(w, err)
		return
	}

	p, err := h.board.CreatePost(username, body.Content, body.Thread)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.postResponse(p, username))
}

// ListPosts searches visible posts. Query params: q, thread, others=true to skip own posts.
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	username, ok := currentUser(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	posts := h.board.SearchPosts(query.Get("q"), query.Get("thread"))
	if others, _ := strconv.ParseBool(query.Get("others")); others {
		filtered := posts[:0]
		for _, p := range posts {
			if p.Author() != username {
				filtered = append(filtered, p)
			}
		}
		posts = filtered
	}
	writeJSON(w, http.StatusOK, h.postsResponse(posts, username))
}

func (h *Handler) ListUnreadPosts(w http.ResponseWriter, r *http.Request) {
	username, ok := currentUser(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.postsResponse(h.board.ListUnreadPosts(username), username))
}

func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	username, ok := currentUser(w, r)
	if !ok {
		return
	}
	p, ok := h.loadPost(w, r, username)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.postResponse(p, username))
}

// UpdatePost is only allowed to the author.
func (h *Handler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	username, ok := currentUser(w, r)
	if !ok {
		return
	}
	p, ok := h.loadPost(w, r, username)
	if !ok {
		return
	}
	if p.Author() != username {
		http.Error(w, "Only the author can edit a post", http.StatusForbidden)
		return
	}
	if p.IsDeleted() {
		http.Error(w, "Post is deleted", http.StatusConflict)
		return
	}

	var body api.UpdatePostRequest
	if err := decodeValidate(r.Body, &body); err != nil {
		writeError(w, err)
		return
	}

	updated, err := h.board.UpdatePost(p.Id(), body.Content)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.postResponse(updated, username))
}

// DeletePost is allowed to the author and to moderators.
func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	username, ok := currentUser(w, r)
	if !ok {
		return
	}
	p, ok := h.loadPost(w, r, username)
	if !ok {
		return
	}
	if p.Author() != username {
		if err := h.board.Authorize(username, domain.CapModerate); err != nil {
			writeError(w, err)
			return
		}
	}

	if _, err := h.board.DeletePost(p.Id()); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) MarkPostRead(w http.ResponseWriter, r *http.Request) {
	username, ok := currentUser(w, r)
	if !ok {
		return
	}
	p, ok := h.loadPost(w, r, username)
	if !ok {
		return
	}
	h.board.MarkPostRead(p.Id(), username)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) FlagPost(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireCapability(w, r, domain.CapModerate); !ok {
		return
	}
	id, err := parseIdParam(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	// the reason is optional, so is the body
	var body api.FlagPostRequest
	if r.ContentLength != 0 {
		if err := decodeValidate(r.Body, &body); err != nil {
			writeError(w, err)
			return
		}
	}

	if !h.board.FlagPost(id, body.Reason) {
		writeError(w, fmt.Errorf("post %d: %w", id, internal_errors.NotFound))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) UnflagPost(w http.ResponseWriter, r *http.Request) {
	h.moderate(w, r, h.board.UnflagPost)
}

func (h *Handler) HidePost(w http.ResponseWriter, r *http.Request) {
	h.moderate(w, r, h.board.HidePost)
}

func (h *Handler) moderate(w http.ResponseWriter, r *http.Request, action func(domain.PostId) bool) {
	if _, ok := h.requireCapability(w, r, domain.CapModerate); !ok {
		return
	}
	id, err := parseIdParam(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	if !action(id) {
		writeError(w, fmt.Errorf("post %d: %w", id, internal_errors.NotFound))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListFlaggedPosts(w http.ResponseWriter, r *http.Request) {
	username, ok := h.requireCapability(w, r, domain.CapModerate)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.postsResponse(h.board.ListFlaggedPosts(), username))
}
