package cache

import (
	"strings"
	"sync"
	"time"

	"github.com/snowyfields/marketboard/internal/model"
)

// Store is an in-memory TTL cache for market summaries. Expired entries are
// dropped lazily by the read path; there is no background sweeper and no
// persistence across restarts.
type Store struct {
	ttl     time.Duration
	mu      sync.RWMutex
	entries map[string]entry
}

type entry struct {
	summary   *model.Summary
	createdAt time.Time
}

// New creates a store whose entries stay valid for ttl after Put. A zero or
// negative ttl disables expiry.
func New(ttl time.Duration) *Store {
	return &Store{
		ttl:     ttl,
		entries: make(map[string]entry),
	}
}

// Get returns the live summary for key, if any. An expired entry counts as
// a miss and is deleted on the spot.
func (s *Store) Get(key string) (*model.Summary, bool) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}

	if s.ttl <= 0 || time.Since(e.createdAt) <= s.ttl {
		return e.summary, true
	}

	// Expired. Re-check under the write lock: another goroutine may have
	// replaced the entry since the read lock was dropped.
	s.mu.Lock()
	if cur, exists := s.entries[key]; exists && time.Since(cur.createdAt) > s.ttl {
		delete(s.entries, key)
	}
	s.mu.Unlock()

	return nil, false
}

// Put stores a summary under key, stamped now.
func (s *Store) Put(key string, summary *model.Summary) {
	s.mu.Lock()
	s.entries[key] = entry{summary: summary, createdAt: time.Now()}
	s.mu.Unlock()
}

// Len reports the number of entries currently held, expired or not.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// BuildKey joins key parts with a pipe. Callers scope keys as
// region-then-item so one store can serve several regions.
func BuildKey(parts ...string) string {
	return strings.Join(parts, "|")
}
