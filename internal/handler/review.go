package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/itchan-dev/studyboard/internal/api"
	"github.com/itchan-dev/studyboard/internal/domain"
	internal_errors "github.com/itchan-dev/studyboard/internal/errors"
)

// targetAuthor resolves the author of the post or reply feedback is attached to.
func (h *Handler) targetAuthor(targetType domain.TargetType, targetId int64) (domain.Username, error) {
	switch targetType {
	case domain.TargetPost:
		if p, ok := h.board.GetPost(targetId); ok {
			return p.Author(), nil
		}
	case domain.TargetReply:
		if reply, ok := h.board.GetReply(targetId); ok {
			return reply.Author, nil
		}
	default:
		return "", internal_errors.Validation("unknown target type %q", targetType)
	}
	return "", fmt.Errorf("%s %d: %w", strings.ToLower(string(targetType)), targetId, internal_errors.NotFound)
}

func (h *Handler) CreateFeedback(w http.ResponseWriter, r *http.Request) {
	staff, ok := h.requireCapability(w, r, domain.CapFeedback)
	if !ok {
		return
	}

	var body api.CreateFeedbackRequest
	if err := decodeValidate(r.Body, &body); err != nil {
		writeError(w, err)
		return
	}

	author, err := h.targetAuthor(body.TargetType, body.TargetId)
	if err != nil {
		writeError(w, err)
		return
	}
	student := body.ToStudent
	if strings.TrimSpace(student) == "" {
		student = author
	}

	f, err := h.review.AddFeedback(body.TargetType, body.TargetId, staff, student, body.Text, body.Scope)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, f)
}

// ListFeedbackForTarget serves /feedback/{type}/{id}, type being post or reply.
func (h *Handler) ListFeedbackForTarget(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireCapability(w, r, domain.CapFeedback); !ok {
		return
	}
	targetType := domain.TargetType(strings.ToUpper(chi.URLParam(r, "type")))
	if !targetType.Valid() {
		http.Error(w, "invalid target type: must be post or reply", http.StatusBadRequest)
		return
	}
	id, err := parseIdParam(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	resp := api.FeedbackResponse{Feedback: h.review.ListFeedbackForTarget(targetType, id)}
	if resp.Feedback == nil {
		resp.Feedback = []domain.Feedback{}
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListMyFeedback shows a student the private feedback addressed to them.
func (h *Handler) ListMyFeedback(w http.ResponseWriter, r *http.Request) {
	username, ok := currentUser(w, r)
	if !ok {
		return
	}
	resp := api.FeedbackResponse{Feedback: h.review.ListFeedbackForStudent(username)}
	if resp.Feedback == nil {
		resp.Feedback = []domain.Feedback{}
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListHelpers serves ?min=N, defaulting to the configured threshold.
func (h *Handler) ListHelpers(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireCapability(w, r, domain.CapGrading); !ok {
		return
	}

	minPeers := h.cfg.Public.MinPeersHelped
	if raw := r.URL.Query().Get("min"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			http.Error(w, "invalid min: must be a positive integer", http.StatusBadRequest)
			return
		}
		minPeers = n
	}

	resp := api.HelpersResponse{
		MinPeers: minPeers,
		Students: h.board.StudentsWhoHelpedAtLeast(minPeers),
		Helped:   h.board.CalculateStudentHelpedPeers(),
	}
	if resp.Students == nil {
		resp.Students = []domain.Username{}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) GradingSummaryCSV(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireCapability(w, r, domain.CapGrading); !ok {
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="grading_summary.csv"`)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(h.board.ExportGradingSummaryCSV()))
}

func (h *Handler) ListParameters(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireCapability(w, r, domain.CapGrading); !ok {
		return
	}
	writeJSON(w, http.StatusOK, api.ParametersResponse{Parameters: h.review.ListParameters()})
}

func (h *Handler) CreateParameter(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireCapability(w, r, domain.CapGrading); !ok {
		return
	}

	var body api.ParameterRequest
	if err := decodeValidate(r.Body, &body); err != nil {
		writeError(w, err)
		return
	}

	p, err := h.review.CreateParameter(body.Name, body.Description, body.MaxPoints, body.Weight)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *Handler) UpdateParameter(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireCapability(w, r, domain.CapGrading); !ok {
		return
	}
	id, err := parseIdParam(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var body api.ParameterRequest
	if err := decodeValidate(r.Body, &body); err != nil {
		writeError(w, err)
		return
	}

	p := domain.Parameter{Id: id, Name: body.Name, Description: body.Description, MaxPoints: body.MaxPoints, Weight: body.Weight}
	if err := h.review.UpdateParameter(p); err != nil {
		writeError(w, err)
		return
	}
	updated, _ := h.review.GetParameter(id)
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) DeleteParameter(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireCapability(w, r, domain.CapGrading); !ok {
		return
	}
	id, err := parseIdParam(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	if !h.review.DeleteParameter(id) {
		writeError(w, fmt.Errorf("parameter %d: %w", id, internal_errors.NotFound))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
