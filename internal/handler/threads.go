package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/itchan-dev/studyboard/internal/api"
	"github.com/itchan-dev/studyboard/internal/domain"
)

func (h *Handler) ListThreads(w http.ResponseWriter, r *http.Request) {
	if _, ok := currentUser(w, r); !ok {
		return
	}
	writeJSON(w, http.StatusOK, api.ThreadsResponse{Threads: h.board.ListThreads()})
}

func (h *Handler) CreateThread(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireCapability(w, r, domain.CapManageThreads); !ok {
		return
	}

	var body api.CreateThreadRequest
	if err := decodeValidate(r.Body, &body); err != nil {
		writeError(w, err)
		return
	}

	if err := h.board.AddThread(body.Name); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, api.ThreadsResponse{Threads: h.board.ListThreads()})
}

func (h *Handler) RenameThread(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireCapability(w, r, domain.CapManageThreads); !ok {
		return
	}

	var body api.RenameThreadRequest
	if err := decodeValidate(r.Body, &body); err != nil {
		writeError(w, err)
		return
	}

	if err := h.board.RenameThread(chi.URLParam(r, "name"), body.Name); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, api.ThreadsResponse{Threads: h.board.ListThreads()})
}

func (h *Handler) DeleteThread(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireCapability(w, r, domain.CapManageThreads); !ok {
		return
	}

	if err := h.board.DeleteThread(chi.URLParam(r, "name")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
