package domain

import (
	"maps"
	"time"
)

// Reply answers a post. Unlike Post its content is edited in place, so the
// owner hands out copies made with Clone.
type Reply struct {
	Id           ReplyId
	ParentPostId PostId
	Author       Username
	Content      string
	CreatedAt    time.Time
	EditedAt     time.Time

	readers map[Username]struct{}
}

func NewReply(id ReplyId, parent PostId, author Username, content string, now time.Time) *Reply {
	return &Reply{
		Id:           id,
		ParentPostId: parent,
		Author:       author,
		Content:      content,
		CreatedAt:    now,
		readers:      make(map[Username]struct{}),
	}
}

func (r *Reply) MarkRead(username Username) {
	if r.readers == nil {
		r.readers = make(map[Username]struct{})
	}
	r.readers[username] = struct{}{}
}

func (r *Reply) IsReadBy(username Username) bool {
	_, ok := r.readers[username]
	return ok
}

func (r *Reply) ReaderCount() int { return len(r.readers) }

func (r *Reply) Clone() Reply {
	c := *r
	c.readers = maps.Clone(r.readers)
	return c
}
