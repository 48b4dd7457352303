package api

import (
	"time"

	"github.com/itchan-dev/studyboard/internal/domain"
)

type CreateReplyRequest struct {
	Content string `json:"content" validate:"required"`
}

type UpdateReplyRequest struct {
	Content string `json:"content" validate:"required"`
}

type ReplyResponse struct {
	Id         domain.ReplyId  `json:"id"`
	PostId     domain.PostId   `json:"post_id"`
	Author     domain.Username `json:"author"`
	Content    string          `json:"content"`
	Html       string          `json:"html"`
	CreatedAt  time.Time       `json:"created_at"`
	EditedAt   *time.Time      `json:"edited_at,omitempty"`
	Reasonable bool            `json:"reasonable"`
}

// NewReplyResponse takes content already decorated for display.
func NewReplyResponse(r domain.Reply, content, html string, reasonable bool) ReplyResponse {
	resp := ReplyResponse{
		Id:         r.Id,
		PostId:     r.ParentPostId,
		Author:     r.Author,
		Content:    content,
		Html:       html,
		CreatedAt:  r.CreatedAt,
		Reasonable: reasonable,
	}
	if !r.EditedAt.IsZero() {
		editedAt := r.EditedAt
		resp.EditedAt = &editedAt
	}
	return resp
}

type RepliesResponse struct {
	Replies []ReplyResponse `json:"replies"`
}
