package api

import "github.com/itchan-dev/studyboard/internal/domain"

type CreateThreadRequest struct {
	Name string `json:"name" validate:"required"`
}

type RenameThreadRequest struct {
	Name string `json:"name" validate:"required"`
}

type ThreadsResponse struct {
	Threads []domain.ThreadName `json:"threads"`
}
