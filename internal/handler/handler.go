package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/itchan-dev/studyboard/internal/api"
	"github.com/itchan-dev/studyboard/internal/config"
	"github.com/itchan-dev/studyboard/internal/domain"
	internal_errors "github.com/itchan-dev/studyboard/internal/errors"
	"github.com/itchan-dev/studyboard/internal/logger"
	mw "github.com/itchan-dev/studyboard/internal/middleware"
	"github.com/itchan-dev/studyboard/internal/service"
)

// Renderer turns stored text into safe HTML.
type Renderer interface {
	Render(text string) string
}

type Handler struct {
	board    service.BoardService
	review   service.ReviewService
	renderer Renderer
	cfg      *config.Config
}

func New(board service.BoardService, review service.ReviewService, renderer Renderer, cfg *config.Config) *Handler {
	return &Handler{board, review, renderer, cfg}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.Error("can't encode response", "error", err)
	}
}

// writeError maps service errors to status codes. Anything unknown is a 500.
func writeError(w http.ResponseWriter, err error) {
	var withStatus *internal_errors.ErrorWithStatusCode
	var validation *internal_errors.ValidationError
	switch {
	case errors.As(err, &withStatus):
		http.Error(w, withStatus.Message, withStatus.StatusCode)
	case errors.As(err, &validation):
		http.Error(w, validation.Message, http.StatusBadRequest)
	case errors.Is(err, internal_errors.NotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, internal_errors.AlreadyExists):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, internal_errors.Forbidden):
		http.Error(w, "Access denied", http.StatusForbidden)
	default:
		logger.Log.Error("internal error", "error", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
	}
}

func decodeValidate(r io.ReadCloser, body any) error {
	if err := json.NewDecoder(r).Decode(body); err != nil {
		logger.Log.Debug("invalid json body", "error", err)
		return &internal_errors.ErrorWithStatusCode{Message: "Body is invalid json", StatusCode: http.StatusBadRequest}
	}
	if err := validate.Struct(body); err != nil {
		logger.Log.Debug("invalid body", "error", err)
		return &internal_errors.ErrorWithStatusCode{Message: "Required fields missing or invalid", StatusCode: http.StatusBadRequest}
	}
	return nil
}

// parseIdParam reads a positive integer URL parameter.
func parseIdParam(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, &internal_errors.ErrorWithStatusCode{Message: fmt.Sprintf("invalid %s: must be a positive integer", name), StatusCode: http.StatusBadRequest}
	}
	return id, nil
}

// currentUser writes 401 and returns false if the request is anonymous.
func currentUser(w http.ResponseWriter, r *http.Request) (domain.Username, bool) {
	username := mw.GetUsernameFromContext(r)
	if username == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return "", false
	}
	return username, true
}

// requireCapability is currentUser plus a role check.
func (h *Handler) requireCapability(w http.ResponseWriter, r *http.Request, c domain.Capability) (domain.Username, bool) {
	username, ok := currentUser(w, r)
	if !ok {
		return "", false
	}
	if err := h.board.Authorize(username, c); err != nil {
		writeError(w, err)
		return "", false
	}
	return username, true
}

func (h *Handler) isGrader(username domain.Username) bool {
	return h.board.UserRole(username) == domain.RoleGrader
}

// Me tells the client who it is authenticated as.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	username, ok := currentUser(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, api.MeResponse{Username: username, Role: h.board.UserRole(username)})
}
