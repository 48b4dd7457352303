package api

import (
	"time"

	"github.com/itchan-dev/studyboard/internal/domain"
)

// Request DTOs

type CreatePostRequest struct {
	Content string `json:"content" validate:"required"`
	Thread  string `json:"thread,omitempty"`
}

type UpdatePostRequest struct {
	Content string `json:"content" validate:"required"`
}

type FlagPostRequest struct {
	Reason string `json:"reason,omitempty"`
}

// Response DTOs

type PostResponse struct {
	Id            domain.PostId     `json:"id"`
	Author        domain.Username   `json:"author"`
	Thread        domain.ThreadName `json:"thread"`
	Content       string            `json:"content"`
	Html          string            `json:"html"`
	CreatedAt     time.Time         `json:"created_at"`
	EditedAt      *time.Time        `json:"edited_at,omitempty"`
	Deleted       bool              `json:"deleted"`
	Moderation    domain.Moderation `json:"moderation"`
	FlagReason    string            `json:"flag_reason,omitempty"`
	Replies       int               `json:"replies"`
	UnreadReplies int               `json:"unread_replies"`
	Read          bool              `json:"read"`
}

// NewPostResponse flattens a summary. html is the rendered display content.
func NewPostResponse(s domain.PostSummary, html string) PostResponse {
	p := s.Post
	resp := PostResponse{
		Id:            p.Id(),
		Author:        p.Author(),
		Thread:        p.Thread(),
		Content:       p.Content(),
		Html:          html,
		CreatedAt:     p.CreatedAt(),
		Deleted:       p.IsDeleted(),
		Moderation:    p.Moderation(),
		FlagReason:    s.FlagReason,
		Replies:       s.Replies,
		UnreadReplies: s.UnreadReplies,
		Read:          s.Read,
	}
	if p.IsEdited() {
		editedAt := p.EditedAt()
		resp.EditedAt = &editedAt
	}
	return resp
}

type PostsResponse struct {
	Posts []PostResponse `json:"posts"`
}
