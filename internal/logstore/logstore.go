// Package logstore records the outcome of past acquisition attempts.
//
// The store is an append-only collaborator of the acquisition pipeline:
// the orchestrator writes exactly one entry per top-level invocation and
// treats write failure as best-effort. Reads exist only for the delivery
// layer's history endpoint.
package logstore

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Entry is a write-once record of one acquisition attempt.
type Entry struct {
	ID            string    `json:"id"`
	RepositoryURL string    `json:"repository_url"`
	FileCount     int       `json:"file_count"`
	LineCount     int       `json:"line_count"`
	ProcessedAt   time.Time `json:"processed_at"`
	Success       bool      `json:"success"`
	ErrorMessage  string    `json:"error_message,omitempty"`
}

// Store is the append-only processing log.
type Store interface {
	// Record appends an entry. The caller treats failure as best-effort.
	Record(ctx context.Context, e Entry) error

	// Recent returns up to n entries, newest first.
	Recent(ctx context.Context, n int) ([]Entry, error)
}

// defaultMaxEntries bounds the in-memory store so a long-lived server
// does not grow without limit.
const defaultMaxEntries = 500

// MemoryStore is an in-memory Store implementation.
type MemoryStore struct {
	mu         sync.RWMutex
	entries    []Entry
	maxEntries int
}

// NewMemoryStore creates an in-memory store retaining at most max entries;
// max <= 0 selects the default cap.
func NewMemoryStore(max int) *MemoryStore {
	if max <= 0 {
		max = defaultMaxEntries
	}
	return &MemoryStore{maxEntries: max}
}

// Record appends an entry, assigning an ID and timestamp if unset.
func (s *MemoryStore) Record(_ context.Context, e Entry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.ProcessedAt.IsZero() {
		e.ProcessedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = append(s.entries, e)
	if len(s.entries) > s.maxEntries {
		s.entries = s.entries[len(s.entries)-s.maxEntries:]
	}
	return nil
}

// Recent returns up to n entries, newest first.
func (s *MemoryStore) Recent(_ context.Context, n int) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if n <= 0 || n > len(s.entries) {
		n = len(s.entries)
	}

	out := make([]Entry, 0, n)
	for i := len(s.entries) - 1; i >= len(s.entries)-n; i-- {
		out = append(out, s.entries[i])
	}
	return out, nil
}
