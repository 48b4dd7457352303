package domain

type (
	PostId      = int64
	ReplyId     = int64
	FeedbackId  = int64
	ParameterId = int64

	Username   = string
	ThreadName = string
	PostText   = string
)

// Moderation is the staff-controlled visibility of a post.
type Moderation string

const (
	ModerationNormal  Moderation = "NORMAL"
	ModerationFlagged Moderation = "FLAGGED"
	ModerationHidden  Moderation = "HIDDEN"
)

func (m Moderation) Valid() bool {
	switch m {
	case ModerationNormal, ModerationFlagged, ModerationHidden:
		return true
	}
	return false
}

type Role string

const (
	RoleStudent Role = "STUDENT"
	RoleGrader  Role = "GRADER"
)

func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleGrader
}

// Capability names an operation that may be restricted to staff.
type Capability string

const (
	CapModerate      Capability = "moderate"
	CapFeedback      Capability = "feedback"
	CapGrading       Capability = "grading"
	CapManageThreads Capability = "manage_threads"
)
