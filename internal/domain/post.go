package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	internal_errors "github.com/itchan-dev/studyboard/internal/errors"
)

const (
	// MaxContentLen bounds post content, counted in runes.
	MaxContentLen = 4096
	// Tombstone is shown instead of the content of a soft-deleted post.
	Tombstone = "[deleted]"
)

// Post is an immutable content record. Every "mutation" returns a new value
// carrying the same id, and the repository replaces the stored value with it.
//
// Equality is identity-based: two Posts are Equal when their ids match, even if
// one of them is an older snapshot with different content. Posts with equal
// content but different ids are not Equal. Use Key when a Post has to be put
// into a map or set; do not compare Post values with ==.
type Post struct {
	id         PostId
	author     Username
	thread     ThreadName
	content    PostText
	createdAt  time.Time
	editedAt   time.Time
	deleted    bool
	moderation Moderation
}

// NewPost validates and trims the input and returns a visible, unmoderated post.
func NewPost(id PostId, author Username, thread ThreadName, content PostText, now time.Time) (Post, error) {
	if err := validatePost(author, thread, content); err != nil {
		return Post{}, err
	}
	return Post{
		id:         id,
		author:     strings.TrimSpace(author),
		thread:     strings.TrimSpace(thread),
		content:    strings.TrimSpace(content),
		createdAt:  now,
		moderation: ModerationNormal,
	}, nil
}

// WithContent returns an edited copy. editedAt never precedes createdAt.
func (p Post) WithContent(text PostText, now time.Time) (Post, error) {
	if err := validatePost(p.author, p.thread, text); err != nil {
		return Post{}, err
	}
	if now.Before(p.createdAt) {
		now = p.createdAt
	}
	edited := p
	edited.content = strings.TrimSpace(text)
	edited.editedAt = now
	return edited, nil
}

// SoftDeleted returns a tombstoned copy. Applying it to a deleted post is a no-op.
func (p Post) SoftDeleted() Post {
	tomb := p
	tomb.deleted = true
	return tomb
}

// WithModeration returns a copy with the given status. Unknown statuses leave it unchanged.
func (p Post) WithModeration(m Moderation) Post {
	moderated := p
	if m.Valid() {
		moderated.moderation = m
	}
	return moderated
}

func (p Post) Id() PostId           { return p.id }
func (p Post) Author() Username     { return p.author }
func (p Post) Thread() ThreadName   { return p.thread }
func (p Post) CreatedAt() time.Time { return p.createdAt }
func (p Post) IsDeleted() bool      { return p.deleted }

// EditedAt is the zero time until the first edit.
func (p Post) EditedAt() time.Time { return p.editedAt }
func (p Post) IsEdited() bool      { return !p.editedAt.IsZero() }

func (p Post) Moderation() Moderation {
	if p.moderation == "" {
		return ModerationNormal
	}
	return p.moderation
}

// Content is the display text.
func (p Post) Content() PostText {
	if p.deleted {
		return Tombstone
	}
	return p.content
}

// RawContent is the original text regardless of deletion, for search and audit.
func (p Post) RawContent() PostText { return p.content }

func (p Post) Key() PostId { return p.id }

func (p Post) Equal(other Post) bool { return p.id == other.id }

// for debug
func (p Post) String() string {
	s := fmt.Sprintf("Post#%d@%s by %s", p.id, p.thread, p.author)
	if p.deleted {
		s += " " + Tombstone
	}
	return s
}

func validatePost(author Username, thread ThreadName, content PostText) error {
	if strings.TrimSpace(author) == "" {
		return internal_errors.Validation("author is required")
	}
	if strings.TrimSpace(thread) == "" {
		return internal_errors.Validation("thread is required")
	}
	if strings.TrimSpace(content) == "" {
		return internal_errors.Validation("content is required")
	}
	if utf8.RuneCountInString(content) > MaxContentLen {
		return internal_errors.Validation("content too long (max %d)", MaxContentLen)
	}
	for _, r := range content {
		if unicode.IsControl(r) && r != '\t' && r != '\n' && r != '\r' {
			return internal_errors.Validation("content contains disallowed control characters")
		}
	}
	return nil
}
