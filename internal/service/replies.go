package service

import (
	"slices"
	"strings"

	"github.com/itchan-dev/studyboard/internal/domain"
	"github.com/itchan-dev/studyboard/internal/logger"
)

const parentDeletedNote = " (original post deleted)"

// AddReply answers an existing post. It returns false if the parent does not
// exist or the content is rejected. Tombstoned parents still accept replies.
func (b *Board) AddReply(postId domain.PostId, author domain.Username, content string) (domain.Reply, bool) {
	if strings.TrimSpace(author) == "" {
		return domain.Reply{}, false
	}
	if err := b.replyValidator.Text(content); err != nil {
		return domain.Reply{}, false
	}
	if _, ok := b.storage.FindById(postId); !ok {
		return domain.Reply{}, false
	}

	r := domain.NewReply(b.lastReplyId.Add(1), postId, strings.TrimSpace(author), content, b.now())

	b.mu.Lock()
	b.replies[r.Id] = r
	b.mu.Unlock()

	logger.Log.Info("reply added", "component", "board", "reply_id", r.Id, "post_id", postId, "author", r.Author)
	return r.Clone(), true
}

func (b *Board) GetReply(id domain.ReplyId) (domain.Reply, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	r, ok := b.replies[id]
	if !ok {
		return domain.Reply{}, false
	}
	return r.Clone(), true
}

// UpdateReply edits the reply in place.
func (b *Board) UpdateReply(id domain.ReplyId, content string) bool {
	if err := b.replyValidator.Text(content); err != nil {
		return false
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	r, ok := b.replies[id]
	if !ok {
		return false
	}
	r.Content = content
	r.EditedAt = b.now()
	return true
}

func (b *Board) DeleteReply(id domain.ReplyId) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.replies[id]; !ok {
		return false
	}
	delete(b.replies, id)
	logger.Log.Info("reply deleted", "component", "board", "reply_id", id)
	return true
}

// ListReplies returns the replies of a post oldest first. With unreadOnly, replies
// the user already marked read are skipped.
func (b *Board) ListReplies(postId domain.PostId, username domain.Username, unreadOnly bool) []domain.Reply {
	b.mu.RLock()
	var out []domain.Reply
	for _, r := range b.replies {
		if r.ParentPostId != postId {
			continue
		}
		if unreadOnly && r.IsReadBy(username) {
			continue
		}
		out = append(out, r.Clone())
	}
	b.mu.RUnlock()

	slices.SortFunc(out, domain.OldestFirst)
	return out
}

func (b *Board) MarkReplyRead(id domain.ReplyId, username domain.Username) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if r, ok := b.replies[id]; ok {
		r.MarkRead(username)
	}
}

// ReplyDisplayContent notes when the parent post has been deleted.
func (b *Board) ReplyDisplayContent(id domain.ReplyId) string {
	r, ok := b.GetReply(id)
	if !ok {
		return ""
	}
	if parent, ok := b.storage.FindById(r.ParentPostId); ok && parent.IsDeleted() {
		return r.Content + parentDeletedNote
	}
	return r.Content
}

// allReplies is a snapshot for analytics, oldest first.
func (b *Board) allReplies() []domain.Reply {
	b.mu.RLock()
	out := make([]domain.Reply, 0, len(b.replies))
	for _, r := range b.replies {
		out = append(out, r.Clone())
	}
	b.mu.RUnlock()

	slices.SortFunc(out, domain.OldestFirst)
	return out
}
