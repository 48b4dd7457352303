package service

import (
	"errors"
	"testing"

	"github.com/itchan-dev/studyboard/internal/domain"
	internal_errors "github.com/itchan-dev/studyboard/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddFeedback(t *testing.T) {
	r := NewReview(newStepClock().Now)

	f1, err := r.AddFeedback(domain.TargetPost, 1, "prof", "alice", " good question ", domain.ScopePrivateToStudent)
	require.NoError(t, err)
	assert.Equal(t, domain.FeedbackId(1), f1.Id)
	assert.Equal(t, "good question", f1.Text)
	assert.False(t, f1.CreatedAt.IsZero())

	f2, err := r.AddFeedback(domain.TargetPost, 1, "ta", "alice", "needs sources", domain.ScopeStaffOnly)
	require.NoError(t, err)
	_, err = r.AddFeedback(domain.TargetReply, 1, "prof", "bob", "nice reply", domain.ScopePrivateToStudent)
	require.NoError(t, err)

	t.Run("listed per target in insertion order", func(t *testing.T) {
		got := r.ListFeedbackForTarget(domain.TargetPost, 1)
		assert.Equal(t, []domain.Feedback{f1, f2}, got)
		assert.Len(t, r.ListFeedbackForTarget(domain.TargetReply, 1), 1)
		assert.Empty(t, r.ListFeedbackForTarget(domain.TargetPost, 2))
	})

	t.Run("students only see private feedback", func(t *testing.T) {
		got := r.ListFeedbackForStudent("alice")
		assert.Equal(t, []domain.Feedback{f1}, got)
	})

	tests := []struct {
		name  string
		tt    domain.TargetType
		from  string
		to    string
		text  string
		scope domain.FeedbackScope
	}{
		{"blank text", domain.TargetPost, "prof", "alice", "  ", domain.ScopeStaffOnly},
		{"unknown target", "THREAD", "prof", "alice", "text", domain.ScopeStaffOnly},
		{"unknown scope", domain.TargetPost, "prof", "alice", "text", "PUBLIC"},
		{"missing staff", domain.TargetPost, "", "alice", "text", domain.ScopeStaffOnly},
		{"missing student", domain.TargetPost, "prof", " ", "text", domain.ScopeStaffOnly},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.AddFeedback(tt.tt, 1, tt.from, tt.to, tt.text, tt.scope)
			assert.True(t, internal_errors.Is[*internal_errors.ValidationError](err))
		})
	}
	assert.Len(t, r.ListFeedbackForTarget(domain.TargetPost, 1), 2, "rejected feedback is not stored")
}

func TestParameters(t *testing.T) {
	r := NewReview(nil)

	clarity, err := r.CreateParameter(" Clarity ", "Is the answer clear?", 10, 0.4)
	require.NoError(t, err)
	assert.Equal(t, "Clarity", clarity.Name)
	accuracy, err := r.CreateParameter("Accuracy", "", 5, 0.6)
	require.NoError(t, err)

	assert.Equal(t, []domain.Parameter{clarity, accuracy}, r.ListParameters())

	_, err = r.CreateParameter("", "", 10, 0.5)
	assert.Error(t, err)
	_, err = r.CreateParameter("Style", "", 0, 0.5)
	assert.Error(t, err)
	_, err = r.CreateParameter("Style", "", 10, 1.5)
	assert.Error(t, err)

	clarity.MaxPoints = 20
	require.NoError(t, r.UpdateParameter(clarity))
	got, ok := r.GetParameter(clarity.Id)
	require.True(t, ok)
	assert.Equal(t, 20, got.MaxPoints)

	assert.True(t, errors.Is(r.UpdateParameter(domain.Parameter{Id: 99, Name: "x", MaxPoints: 1}), internal_errors.NotFound))

	assert.True(t, r.DeleteParameter(accuracy.Id))
	assert.False(t, r.DeleteParameter(accuracy.Id))
	assert.Len(t, r.ListParameters(), 1)
}
