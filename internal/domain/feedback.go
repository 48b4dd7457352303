package domain

import "time"

type TargetType string

const (
	TargetPost  TargetType = "POST"
	TargetReply TargetType = "REPLY"
)

func (t TargetType) Valid() bool {
	return t == TargetPost || t == TargetReply
}

type FeedbackScope string

const (
	ScopePrivateToStudent FeedbackScope = "PRIVATE_TO_STUDENT"
	ScopeStaffOnly        FeedbackScope = "STAFF_ONLY"
)

func (s FeedbackScope) Valid() bool {
	return s == ScopePrivateToStudent || s == ScopeStaffOnly
}

// Feedback is a staff note on a post or reply. It is never edited or removed.
type Feedback struct {
	Id         FeedbackId    `json:"id"`
	TargetType TargetType    `json:"target_type"`
	TargetId   int64         `json:"target_id"`
	FromStaff  Username      `json:"from_staff"`
	ToStudent  Username      `json:"to_student"`
	Text       string        `json:"text"`
	Scope      FeedbackScope `json:"scope"`
	CreatedAt  time.Time     `json:"created_at"`
}

// Parameter is one grading rubric criterion.
type Parameter struct {
	Id          ParameterId `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	MaxPoints   int         `json:"max_points"`
	Weight      float64     `json:"weight"`
}
