package api

import "github.com/itchan-dev/studyboard/internal/domain"

type CreateFeedbackRequest struct {
	TargetType domain.TargetType    `json:"target_type" validate:"required,oneof=POST REPLY"`
	TargetId   int64                `json:"target_id" validate:"required,gt=0"`
	ToStudent  domain.Username      `json:"to_student,omitempty"` // defaults to the target's author
	Text       string               `json:"text" validate:"required"`
	Scope      domain.FeedbackScope `json:"scope" validate:"required,oneof=PRIVATE_TO_STUDENT STAFF_ONLY"`
}

type FeedbackResponse struct {
	Feedback []domain.Feedback `json:"feedback"`
}

type ParameterRequest struct {
	Name        string  `json:"name" validate:"required"`
	Description string  `json:"description,omitempty"`
	MaxPoints   int     `json:"max_points" validate:"required,gt=0"`
	Weight      float64 `json:"weight" validate:"gte=0,lte=1"`
}

type ParametersResponse struct {
	Parameters []domain.Parameter `json:"parameters"`
}

type HelpersResponse struct {
	MinPeers int                                   `json:"min_peers"`
	Students []domain.Username                     `json:"students"`
	Helped   map[domain.Username][]domain.Username `json:"helped"`
}

type MeResponse struct {
	Username domain.Username `json:"username"`
	Role     domain.Role     `json:"role"`
}
