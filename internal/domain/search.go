package domain

import (
	"cmp"
	"slices"
)

// SearchSpec describes a post query. The zero value matches every visible post.
type SearchSpec struct {
	// Query is a case-insensitive substring matched against author, thread or raw content.
	Query string
	// Thread is a case-insensitive exact thread name.
	Thread string
	// IncludeDeleted keeps tombstoned posts in the result.
	IncludeDeleted bool
}

func (s SearchSpec) WithQuery(q string) SearchSpec {
	s.Query = q
	return s
}

func (s SearchSpec) WithThread(t string) SearchSpec {
	s.Thread = t
	return s
}

func (s SearchSpec) WithDeleted(include bool) SearchSpec {
	s.IncludeDeleted = include
	return s
}

// NewestFirst orders posts by creation time descending, ties broken by the
// higher id first. Every post listing uses this order.
func NewestFirst(a, b Post) int {
	if c := b.CreatedAt().Compare(a.CreatedAt()); c != 0 {
		return c
	}
	return cmp.Compare(b.Id(), a.Id())
}

func SortNewestFirst(posts []Post) {
	slices.SortFunc(posts, NewestFirst)
}

// OldestFirst orders replies by creation time ascending, ties by id ascending.
func OldestFirst(a, b Reply) int {
	if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
		return c
	}
	return cmp.Compare(a.Id, b.Id)
}
