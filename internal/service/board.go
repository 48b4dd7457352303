package service

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/itchan-dev/studyboard/internal/domain"
	internal_errors "github.com/itchan-dev/studyboard/internal/errors"
	"github.com/itchan-dev/studyboard/internal/logger"
)

// to mock service in tests
type BoardService interface {
	CreatePost(author domain.Username, content domain.PostText, thread domain.ThreadName) (domain.Post, error)
	GetPost(id domain.PostId) (domain.Post, bool)
	UpdatePost(id domain.PostId, content domain.PostText) (domain.Post, error)
	DeletePost(id domain.PostId) (domain.Post, error)
	SearchPosts(keyword string, thread domain.ThreadName) []domain.Post
	ListUnreadPosts(username domain.Username) []domain.Post
	MarkPostRead(id domain.PostId, username domain.Username)
	PostSummary(post domain.Post, username domain.Username) domain.PostSummary

	FlagPost(id domain.PostId, reason string) bool
	UnflagPost(id domain.PostId) bool
	HidePost(id domain.PostId) bool
	ListFlaggedPosts() []domain.Post

	AddReply(postId domain.PostId, author domain.Username, content string) (domain.Reply, bool)
	GetReply(id domain.ReplyId) (domain.Reply, bool)
	UpdateReply(id domain.ReplyId, content string) bool
	DeleteReply(id domain.ReplyId) bool
	ListReplies(postId domain.PostId, username domain.Username, unreadOnly bool) []domain.Reply
	MarkReplyRead(id domain.ReplyId, username domain.Username)
	ReplyDisplayContent(id domain.ReplyId) string
	IsAnswerReasonable(reply domain.Reply) bool

	ListThreads() []domain.ThreadName
	AddThread(name domain.ThreadName) error
	RenameThread(from, to domain.ThreadName) error
	DeleteThread(name domain.ThreadName) error

	CalculateStudentHelpedPeers() map[domain.Username][]domain.Username
	StudentsWhoHelpedAtLeast(minPeers int) []domain.Username
	ExportGradingSummaryCSV() string

	UserRole(username domain.Username) domain.Role
	Authorize(username domain.Username, c domain.Capability) error
}

// PostStorage is satisfied by memory.Storage.
type PostStorage interface {
	CreateNext(author domain.Username, thread domain.ThreadName, content domain.PostText) (domain.Post, error)
	FindById(id domain.PostId) (domain.Post, bool)
	FindAll() []domain.Post
	UpdateContent(id domain.PostId, text domain.PostText) (domain.Post, error)
	Moderate(id domain.PostId, m domain.Moderation) (domain.Post, error)
	SoftDelete(id domain.PostId) (domain.Post, error)
	Search(spec domain.SearchSpec) []domain.Post
}

type ThreadValidator interface {
	Name(name string) error
}

type ReplyValidator interface {
	Text(text string) error
}

// Board ties posts, replies, read state, moderation reasons and roles together.
// Post lifecycle goes through PostStorage; everything else is owned here.
type Board struct {
	storage         PostStorage
	threads         *ThreadRegistry
	threadValidator ThreadValidator
	replyValidator  ReplyValidator
	now             func() time.Time

	mu          sync.RWMutex
	replies     map[domain.ReplyId]*domain.Reply
	lastReplyId atomic.Int64
	postReaders map[domain.PostId]map[domain.Username]struct{}
	flagReasons map[domain.PostId]string
	roles       map[domain.Username]domain.Role
}

func NewBoard(storage PostStorage, threads *ThreadRegistry, threadValidator ThreadValidator, replyValidator ReplyValidator, clock func() time.Time) *Board {
	if clock == nil {
		clock = time.Now
	}
	return &Board{
		storage:         storage,
		threads:         threads,
		threadValidator: threadValidator,
		replyValidator:  replyValidator,
		now:             clock,
		replies:         make(map[domain.ReplyId]*domain.Reply),
		postReaders:     make(map[domain.PostId]map[domain.Username]struct{}),
		flagReasons:     make(map[domain.PostId]string),
		roles:           make(map[domain.Username]domain.Role),
	}
}

// CreatePost falls back to the default thread when thread is blank or unknown.
func (b *Board) CreatePost(author domain.Username, content domain.PostText, thread domain.ThreadName) (domain.Post, error) {
	t := strings.TrimSpace(thread)
	if t == "" || !b.threads.Has(t) {
		t = DefaultThread
	}

	p, err := b.storage.CreateNext(author, t, content)
	if err != nil {
		return domain.Post{}, err
	}
	logger.Log.Info("post created", "component", "board", "post_id", p.Id(), "author", p.Author(), "thread", p.Thread())
	return p, nil
}

func (b *Board) GetPost(id domain.PostId) (domain.Post, bool) {
	return b.storage.FindById(id)
}

func (b *Board) UpdatePost(id domain.PostId, content domain.PostText) (domain.Post, error) {
	return b.storage.UpdateContent(id, content)
}

// DeletePost tombstones the post. Its replies stay.
func (b *Board) DeletePost(id domain.PostId) (domain.Post, error) {
	p, err := b.storage.SoftDelete(id)
	if err != nil {
		return domain.Post{}, err
	}
	logger.Log.Info("post deleted", "component", "board", "post_id", id)
	return p, nil
}

// SearchPosts lists visible posts matching keyword in the given thread.
// Blank arguments do not filter.
func (b *Board) SearchPosts(keyword string, thread domain.ThreadName) []domain.Post {
	return b.storage.Search(domain.SearchSpec{Query: keyword, Thread: thread})
}

// FlagPost marks the post FLAGGED and records reason in one step.
func (b *Board) FlagPost(id domain.PostId, reason string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, err := b.storage.Moderate(id, domain.ModerationFlagged); err != nil {
		return false
	}
	b.flagReasons[id] = strings.TrimSpace(reason)
	logger.Log.Info("post flagged", "component", "board", "post_id", id)
	return true
}

// UnflagPost resets moderation to NORMAL and drops the reason.
func (b *Board) UnflagPost(id domain.PostId) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, err := b.storage.Moderate(id, domain.ModerationNormal); err != nil {
		return false
	}
	delete(b.flagReasons, id)
	return true
}

func (b *Board) HidePost(id domain.PostId) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, err := b.storage.Moderate(id, domain.ModerationHidden); err != nil {
		return false
	}
	delete(b.flagReasons, id)
	logger.Log.Info("post hidden", "component", "board", "post_id", id)
	return true
}

func (b *Board) ListFlaggedPosts() []domain.Post {
	var out []domain.Post
	for _, p := range b.storage.FindAll() {
		if p.Moderation() == domain.ModerationFlagged {
			out = append(out, p)
		}
	}
	return out
}

func (b *Board) FlagReason(id domain.PostId) string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.flagReasons[id]
}

func (b *Board) MarkPostRead(id domain.PostId, username domain.Username) {
	b.mu.Lock()
	defer b.mu.Unlock()

	readers, ok := b.postReaders[id]
	if !ok {
		readers = make(map[domain.Username]struct{})
		b.postReaders[id] = readers
	}
	readers[username] = struct{}{}
}

func (b *Board) isPostReadBy(id domain.PostId, username domain.Username) bool {
	_, ok := b.postReaders[id][username]
	return ok
}

// ListUnreadPosts returns every post the user has not marked read, newest first.
func (b *Board) ListUnreadPosts(username domain.Username) []domain.Post {
	all := b.storage.FindAll()

	b.mu.RLock()
	defer b.mu.RUnlock()
	var out []domain.Post
	for _, p := range all {
		if !b.isPostReadBy(p.Id(), username) {
			out = append(out, p)
		}
	}
	return out
}

func (b *Board) PostSummary(post domain.Post, username domain.Username) domain.PostSummary {
	b.mu.RLock()
	defer b.mu.RUnlock()

	s := domain.PostSummary{
		Post:       post,
		FlagReason: b.flagReasons[post.Id()],
		Read:       b.isPostReadBy(post.Id(), username),
	}
	for _, r := range b.replies {
		if r.ParentPostId != post.Id() {
			continue
		}
		s.Replies++
		if !r.IsReadBy(username) {
			s.UnreadReplies++
		}
	}
	return s
}

// ListPostSummaries summarizes all posts newest first. othersOnly skips the user's own posts.
func (b *Board) ListPostSummaries(username domain.Username, othersOnly bool) []domain.PostSummary {
	var out []domain.PostSummary
	for _, p := range b.storage.FindAll() {
		if othersOnly && p.Author() == username {
			continue
		}
		out = append(out, b.PostSummary(p, username))
	}
	return out
}

func (b *Board) ListThreads() []domain.ThreadName {
	return b.threads.List()
}

func (b *Board) AddThread(name domain.ThreadName) error {
	if err := b.threadValidator.Name(name); err != nil {
		return err
	}
	if !b.threads.Add(name) {
		return fmt.Errorf("thread %q: %w", name, internal_errors.AlreadyExists)
	}
	return nil
}

// RenameThread renames the registry entry only; existing posts keep the old name.
func (b *Board) RenameThread(from, to domain.ThreadName) error {
	if err := b.threadValidator.Name(to); err != nil {
		return err
	}
	if !b.threads.Has(from) {
		return fmt.Errorf("thread %q: %w", from, internal_errors.NotFound)
	}
	if strings.TrimSpace(from) == DefaultThread {
		return fmt.Errorf("thread %q is the default: %w", from, internal_errors.Forbidden)
	}
	if !b.threads.Rename(from, to) {
		return fmt.Errorf("thread %q: %w", to, internal_errors.AlreadyExists)
	}
	return nil
}

// DeleteThread refuses while the thread still has visible posts.
func (b *Board) DeleteThread(name domain.ThreadName) error {
	n := strings.TrimSpace(name)
	if n == DefaultThread {
		return fmt.Errorf("thread %q is the default: %w", n, internal_errors.Forbidden)
	}
	if !b.threads.Has(n) {
		return fmt.Errorf("thread %q: %w", n, internal_errors.NotFound)
	}
	if len(b.SearchPosts("", n)) > 0 {
		return &internal_errors.ErrorWithStatusCode{Message: "Cannot delete a thread that still has posts", StatusCode: 409}
	}
	if !b.threads.Delete(n) {
		return fmt.Errorf("thread %q: %w", n, internal_errors.NotFound)
	}
	logger.Log.Info("thread deleted", "component", "board", "thread", n)
	return nil
}

func (b *Board) SetUserRole(username domain.Username, role domain.Role) {
	if !role.Valid() {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.roles[username] = role
}

// UserRole defaults to STUDENT for unknown users.
func (b *Board) UserRole(username domain.Username) domain.Role {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if r, ok := b.roles[username]; ok {
		return r
	}
	return domain.RoleStudent
}

// Authorize allows staff-only capabilities to graders. Anything else is open to every user.
func (b *Board) Authorize(username domain.Username, c domain.Capability) error {
	switch c {
	case domain.CapModerate, domain.CapFeedback, domain.CapGrading, domain.CapManageThreads:
		if b.UserRole(username) != domain.RoleGrader {
			return fmt.Errorf("%s needs the grader role for %s: %w", username, c, internal_errors.Forbidden)
		}
	}
	return nil
}

// Stats is a point-in-time count for metrics.
func (b *Board) Stats() domain.BoardStats {
	var s domain.BoardStats
	for _, p := range b.storage.FindAll() {
		s.Posts++
		if p.IsDeleted() {
			s.DeletedPosts++
		}
		switch p.Moderation() {
		case domain.ModerationFlagged:
			s.FlaggedPosts++
		case domain.ModerationHidden:
			s.HiddenPosts++
		}
	}
	b.mu.RLock()
	s.Replies = len(b.replies)
	b.mu.RUnlock()
	return s
}
