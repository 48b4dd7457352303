// Package memory keeps posts in process memory. Nothing is written to disk;
// all state is lost when the process exits.
package memory

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/itchan-dev/studyboard/internal/domain"
	internal_errors "github.com/itchan-dev/studyboard/internal/errors"
)

type Clock func() time.Time

// Storage owns every Post value by id.
type Storage struct {
	mu     sync.RWMutex
	posts  map[domain.PostId]domain.Post
	lastId atomic.Int64
	now    Clock
}

func New(clock Clock) *Storage {
	if clock == nil {
		clock = time.Now
	}
	return &Storage{
		posts: make(map[domain.PostId]domain.Post),
		now:   clock,
	}
}

// NextId reserves a fresh post id. Ids are never handed out twice by one Storage.
func (s *Storage) NextId() domain.PostId {
	return s.lastId.Add(1)
}

// Create validates and stores a post under an explicit id.
// It fails with AlreadyExists if the id is taken and with a ValidationError if id is not positive.
func (s *Storage) Create(id domain.PostId, author domain.Username, thread domain.ThreadName, content domain.PostText) (domain.Post, error) {
	if id <= 0 {
		return domain.Post{}, internal_errors.Validation("post id must be positive, got %d", id)
	}
	p, err := domain.NewPost(id, author, thread, content, s.now())
	if err != nil {
		return domain.Post{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.posts[id]; exists {
		return domain.Post{}, fmt.Errorf("post %d: %w", id, internal_errors.AlreadyExists)
	}
	s.advanceId(id)
	s.put(p)
	return p, nil
}

// CreateNext allocates the next free id and stores the post under it.
// Input is validated before an id is reserved.
func (s *Storage) CreateNext(author domain.Username, thread domain.ThreadName, content domain.PostText) (domain.Post, error) {
	now := s.now()
	if _, err := domain.NewPost(0, author, thread, content, now); err != nil {
		return domain.Post{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.NextId()
	for _, taken := s.posts[id]; taken; _, taken = s.posts[id] {
		id = s.NextId()
	}
	p, err := domain.NewPost(id, author, thread, content, now)
	if err != nil {
		return domain.Post{}, err
	}
	s.put(p)
	return p, nil
}

func (s *Storage) FindById(id domain.PostId) (domain.Post, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.posts[id]
	return p, ok
}

// FindAll returns every post, tombstones included, newest first.
func (s *Storage) FindAll() []domain.Post {
	s.mu.RLock()
	out := make([]domain.Post, 0, len(s.posts))
	for _, p := range s.posts {
		out = append(out, p)
	}
	s.mu.RUnlock()

	domain.SortNewestFirst(out)
	return out
}

// FindByThread matches the thread name exactly, ignoring case.
func (s *Storage) FindByThread(thread domain.ThreadName) []domain.Post {
	var out []domain.Post
	s.mu.RLock()
	for _, p := range s.posts {
		if strings.EqualFold(p.Thread(), thread) {
			out = append(out, p)
		}
	}
	s.mu.RUnlock()

	domain.SortNewestFirst(out)
	return out
}

func (s *Storage) UpdateContent(id domain.PostId, text domain.PostText) (domain.Post, error) {
	return s.update(id, func(cur domain.Post) (domain.Post, error) {
		return cur.WithContent(text, s.now())
	})
}

func (s *Storage) Moderate(id domain.PostId, m domain.Moderation) (domain.Post, error) {
	return s.update(id, func(cur domain.Post) (domain.Post, error) {
		return cur.WithModeration(m), nil
	})
}

func (s *Storage) SoftDelete(id domain.PostId) (domain.Post, error) {
	return s.update(id, func(cur domain.Post) (domain.Post, error) {
		return cur.SoftDeleted(), nil
	})
}

// Save replaces the stored value that has the same id.
func (s *Storage) Save(p domain.Post) error {
	_, err := s.update(p.Id(), func(domain.Post) (domain.Post, error) {
		return p, nil
	})
	return err
}

func (s *Storage) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.posts)
}

// Search filters posts by the given criteria and returns them in domain.NewestFirst order.
func (s *Storage) Search(spec domain.SearchSpec) []domain.Post {
	query := strings.ToLower(spec.Query)
	thread := strings.TrimSpace(spec.Thread)

	var out []domain.Post
	s.mu.RLock()
	for _, p := range s.posts {
		if p.IsDeleted() && !spec.IncludeDeleted {
			continue
		}
		if thread != "" && !strings.EqualFold(p.Thread(), thread) {
			continue
		}
		if query != "" && !matchesQuery(p, query) {
			continue
		}
		out = append(out, p)
	}
	s.mu.RUnlock()

	domain.SortNewestFirst(out)
	return out
}

func matchesQuery(p domain.Post, lowered string) bool {
	return strings.Contains(strings.ToLower(p.Author()), lowered) ||
		strings.Contains(strings.ToLower(p.Thread()), lowered) ||
		strings.Contains(strings.ToLower(p.RawContent()), lowered)
}

// update loads, transforms and writes back one post under the write lock.
func (s *Storage) update(id domain.PostId, fn func(domain.Post) (domain.Post, error)) (domain.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.posts[id]
	if !ok {
		return domain.Post{}, fmt.Errorf("post %d: %w", id, internal_errors.NotFound)
	}
	next, err := fn(cur)
	if err != nil {
		return domain.Post{}, err
	}
	if next.Id() != id {
		return domain.Post{}, fmt.Errorf("post %d: id changed to %d", id, next.Id())
	}
	s.put(next)
	return next, nil
}

// put is the only place that writes into the map. Callers hold mu.
func (s *Storage) put(p domain.Post) {
	s.posts[p.Id()] = p
}

// advanceId moves the allocator past an explicitly chosen id.
func (s *Storage) advanceId(id domain.PostId) {
	for {
		last := s.lastId.Load()
		if id <= last || s.lastId.CompareAndSwap(last, id) {
			return
		}
	}
}
