package service

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/itchan-dev/studyboard/internal/domain"
	internal_errors "github.com/itchan-dev/studyboard/internal/errors"
	"github.com/itchan-dev/studyboard/internal/logger"
)

type ReviewService interface {
	AddFeedback(targetType domain.TargetType, targetId int64, fromStaff, toStudent domain.Username, text string, scope domain.FeedbackScope) (domain.Feedback, error)
	ListFeedbackForTarget(targetType domain.TargetType, targetId int64) []domain.Feedback
	ListFeedbackForStudent(student domain.Username) []domain.Feedback

	CreateParameter(name, description string, maxPoints int, weight float64) (domain.Parameter, error)
	ListParameters() []domain.Parameter
	GetParameter(id domain.ParameterId) (domain.Parameter, bool)
	UpdateParameter(p domain.Parameter) error
	DeleteParameter(id domain.ParameterId) bool
}

// Review is the staff feedback ledger and grading rubric. It does not depend on Board.
// Feedback is append-only: there is no way to edit or remove an entry.
type Review struct {
	now func() time.Time

	mu         sync.RWMutex
	feedback   []domain.Feedback
	lastFbId   atomic.Int64
	parameters map[domain.ParameterId]domain.Parameter
	lastParId  atomic.Int64
}

func NewReview(clock func() time.Time) *Review {
	if clock == nil {
		clock = time.Now
	}
	return &Review{
		now:        clock,
		parameters: make(map[domain.ParameterId]domain.Parameter),
	}
}

func (r *Review) AddFeedback(targetType domain.TargetType, targetId int64, fromStaff, toStudent domain.Username, text string, scope domain.FeedbackScope) (domain.Feedback, error) {
	if !targetType.Valid() {
		return domain.Feedback{}, internal_errors.Validation("unknown target type %q", targetType)
	}
	if !scope.Valid() {
		return domain.Feedback{}, internal_errors.Validation("unknown feedback scope %q", scope)
	}
	if strings.TrimSpace(fromStaff) == "" || strings.TrimSpace(toStudent) == "" {
		return domain.Feedback{}, internal_errors.Validation("staff and student are required")
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.Feedback{}, internal_errors.Validation("feedback text is required")
	}

	f := domain.Feedback{
		Id:         r.lastFbId.Add(1),
		TargetType: targetType,
		TargetId:   targetId,
		FromStaff:  strings.TrimSpace(fromStaff),
		ToStudent:  strings.TrimSpace(toStudent),
		Text:       text,
		Scope:      scope,
		CreatedAt:  r.now(),
	}

	r.mu.Lock()
	r.feedback = append(r.feedback, f)
	r.mu.Unlock()

	logger.Log.Info("feedback added", "component", "review", "feedback_id", f.Id, "target_type", targetType, "target_id", targetId, "scope", scope)
	return f, nil
}

// ListFeedbackForTarget returns feedback in the order it was added.
func (r *Review) ListFeedbackForTarget(targetType domain.TargetType, targetId int64) []domain.Feedback {
	return r.filter(func(f domain.Feedback) bool {
		return f.TargetType == targetType && f.TargetId == targetId
	})
}

// ListFeedbackForStudent returns what the student is allowed to see: private notes addressed to them.
func (r *Review) ListFeedbackForStudent(student domain.Username) []domain.Feedback {
	return r.filter(func(f domain.Feedback) bool {
		return f.ToStudent == student && f.Scope == domain.ScopePrivateToStudent
	})
}

func (r *Review) filter(keep func(domain.Feedback) bool) []domain.Feedback {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.Feedback
	for _, f := range r.feedback {
		if keep(f) {
			out = append(out, f)
		}
	}
	return out
}

func (r *Review) CreateParameter(name, description string, maxPoints int, weight float64) (domain.Parameter, error) {
	p := domain.Parameter{
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
		MaxPoints:   maxPoints,
		Weight:      weight,
	}
	if err := validateParameter(p); err != nil {
		return domain.Parameter{}, err
	}
	p.Id = r.lastParId.Add(1)

	r.mu.Lock()
	r.parameters[p.Id] = p
	r.mu.Unlock()
	return p, nil
}

// ListParameters returns the rubric in creation order.
func (r *Review) ListParameters() []domain.Parameter {
	r.mu.RLock()
	out := make([]domain.Parameter, 0, len(r.parameters))
	for _, p := range r.parameters {
		out = append(out, p)
	}
	r.mu.RUnlock()

	slices.SortFunc(out, func(a, b domain.Parameter) int { return int(a.Id - b.Id) })
	return out
}

func (r *Review) GetParameter(id domain.ParameterId) (domain.Parameter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.parameters[id]
	return p, ok
}

func (r *Review) UpdateParameter(p domain.Parameter) error {
	p.Name = strings.TrimSpace(p.Name)
	p.Description = strings.TrimSpace(p.Description)
	if err := validateParameter(p); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.parameters[p.Id]; !ok {
		return fmt.Errorf("parameter %d: %w", p.Id, internal_errors.NotFound)
	}
	r.parameters[p.Id] = p
	return nil
}

func (r *Review) DeleteParameter(id domain.ParameterId) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.parameters[id]; !ok {
		return false
	}
	delete(r.parameters, id)
	return true
}

func validateParameter(p domain.Parameter) error {
	if p.Name == "" {
		return internal_errors.Validation("parameter name is required")
	}
	if p.MaxPoints <= 0 {
		return internal_errors.Validation("max points must be positive")
	}
	if p.Weight < 0 || p.Weight > 1 {
		return internal_errors.Validation("weight must be between 0 and 1")
	}
	return nil
}
