package service

import (
	"slices"
	"strings"
	"sync"

	"github.com/itchan-dev/studyboard/internal/domain"
	"github.com/itchan-dev/studyboard/internal/logger"
)

// DefaultThread is where posts land when no valid thread is given. It cannot be deleted.
const DefaultThread domain.ThreadName = "General"

var seedThreads = []domain.ThreadName{DefaultThread, "Homework", "Projects"}

// ThreadRegistry is the whitelist of thread names, kept in insertion order.
// It does not know about posts: callers check a thread is empty before deleting it.
type ThreadRegistry struct {
	mu    sync.RWMutex
	names []domain.ThreadName
}

func NewThreadRegistry(extra ...domain.ThreadName) *ThreadRegistry {
	r := &ThreadRegistry{}
	for _, name := range append(slices.Clone(seedThreads), extra...) {
		r.Add(name)
	}
	return r
}

func (r *ThreadRegistry) List() []domain.ThreadName {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.names)
}

func (r *ThreadRegistry) Has(name domain.ThreadName) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.indexOf(strings.TrimSpace(name)) >= 0
}

// Add returns false for blank or already registered names.
func (r *ThreadRegistry) Add(name domain.ThreadName) bool {
	n := strings.TrimSpace(name)
	if n == "" {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.indexOf(n) >= 0 {
		return false
	}
	r.names = append(r.names, n)
	logger.Log.Debug("thread added", "component", "threads", "thread", n)
	return true
}

// Rename returns false if from is missing or to is blank or taken.
// Posts without a valid thread fall back to DefaultThread by name, so it cannot be renamed.
// The renamed thread moves to the end of the order.
func (r *ThreadRegistry) Rename(from, to domain.ThreadName) bool {
	src := strings.TrimSpace(from)
	dst := strings.TrimSpace(to)
	if dst == "" || src == DefaultThread {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(src)
	if i < 0 || r.indexOf(dst) >= 0 {
		return false
	}
	r.names = append(slices.Delete(r.names, i, i+1), dst)
	logger.Log.Debug("thread renamed", "component", "threads", "from", src, "to", dst)
	return true
}

// Delete returns false for the protected default thread or an unknown name.
func (r *ThreadRegistry) Delete(name domain.ThreadName) bool {
	n := strings.TrimSpace(name)
	if n == DefaultThread {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(n)
	if i < 0 {
		return false
	}
	r.names = slices.Delete(r.names, i, i+1)
	logger.Log.Debug("thread deleted", "component", "threads", "thread", n)
	return true
}

func (r *ThreadRegistry) indexOf(name domain.ThreadName) int {
	return slices.Index(r.names, name)
}
