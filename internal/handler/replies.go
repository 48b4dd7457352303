package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/itchan-dev/studyboard/internal/api"
	"github.com/itchan-dev/studyboard/internal/domain"
	internal_errors "github.com/itchan-dev/studyboard/internal/errors"
)

func (h *Handler) replyResponse(reply domain.Reply) api.ReplyResponse {
	content := h.board.ReplyDisplayContent(reply.Id)
	if content == "" {
		content = reply.Content
	}
	return api.NewReplyResponse(reply, content, h.renderer.Render(reply.Content), h.board.IsAnswerReasonable(reply))
}

// loadReply writes 404 and returns false for a missing reply.
func (h *Handler) loadReply(w http.ResponseWriter, r *http.Request) (domain.Reply, bool) {
	id, err := parseIdParam(r, "id")
	if err != nil {
		writeError(w, err)
		return domain.Reply{}, false
	}
	reply, ok := h.board.GetReply(id)
	if !ok {
		writeError(w, fmt.Errorf("reply %d: %w", id, internal_errors.NotFound))
		return domain.Reply{}, false
	}
	return reply, true
}

// ListReplies returns the replies of a post, oldest first. ?unread=true skips read ones.
func (h *Handler) ListReplies(w http.ResponseWriter, r *http.Request) {
	username, ok := currentUser(w, r)
	if !ok {
		return
	}
	p, ok := h.loadPost(w, r, username)
	if !ok {
		return
	}

	unreadOnly, _ := strconv.ParseBool(r.URL.Query().Get("unread"))
	resp := api.RepliesResponse{Replies: []api.ReplyResponse{}}
	for _, reply := range h.board.ListReplies(p.Id(), username, unreadOnly) {
		resp.Replies = append(resp.Replies, h.replyResponse(reply))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) CreateReply(w http.ResponseWriter, r *http.Request) {
	username, ok := currentUser(w, r)
	if !ok {
		return
	}
	p, ok := h.loadPost(w, r, username)
	if !ok {
		return
	}

	var body api.CreateReplyRequest
	if err := decodeValidate(r.Body, &body); err != nil {
		writeError(w, err)
		return
	}

	reply, ok := h.board.AddReply(p.Id(), username, body.Content)
	if !ok {
		http.Error(w, "Reply rejected: content is empty or too long", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusCreated, h.replyResponse(reply))
}

// UpdateReply is only allowed to the author.
func (h *Handler) UpdateReply(w http.ResponseWriter, r *http.Request) {
	username, ok := currentUser(w, r)
	if !ok {
		return
	}
	reply, ok := h.loadReply(w, r)
	if !ok {
		return
	}
	if reply.Author != username {
		http.Error(w, "Only the author can edit a reply", http.StatusForbidden)
		return
	}

	var body api.UpdateReplyRequest
	if err := decodeValidate(r.Body, &body); err != nil {
		writeError(w, err)
		return
	}

	if !h.board.UpdateReply(reply.Id, body.Content) {
		http.Error(w, "Reply rejected: content is empty or too long", http.StatusBadRequest)
		return
	}
	updated, _ := h.board.GetReply(reply.Id)
	writeJSON(w, http.StatusOK, h.replyResponse(updated))
}

// DeleteReply is allowed to the author and to moderators.
func (h *Handler) DeleteReply(w http.ResponseWriter, r *http.Request) {
	username, ok := currentUser(w, r)
	if !ok {
		return
	}
	reply, ok := h.loadReply(w, r)
	if !ok {
		return
	}
	if reply.Author != username {
		if err := h.board.Authorize(username, domain.CapModerate); err != nil {
			writeError(w, err)
			return
		}
	}

	if !h.board.DeleteReply(reply.Id) {
		writeError(w, fmt.Errorf("reply %d: %w", reply.Id, internal_errors.NotFound))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) MarkReplyRead(w http.ResponseWriter, r *http.Request) {
	username, ok := currentUser(w, r)
	if !ok {
		return
	}
	reply, ok := h.loadReply(w, r)
	if !ok {
		return
	}
	h.board.MarkReplyRead(reply.Id, username)
	w.WriteHeader(http.StatusNoContent)
}
