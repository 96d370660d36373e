package cache

import (
	"sync"

	"github.com/profitlens/backend/internal/domain"
)

// SnapshotStore keeps the most recent extraction snapshot keyed by page URL.
// Extraction scans megabytes of page text, so repeat requests for the same
// page reuse the previous result. Only one page is cached at a time; a new
// URL evicts the old snapshot.
type SnapshotStore struct {
	mu       sync.Mutex
	pageURL  string
	snapshot *domain.ExtractionSnapshot
}

func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{}
}

// GetOrBuild returns the cached snapshot for pageURL or runs build to create
// one. The lock is held across build so concurrent requests for the same page
// share a single extraction pass instead of racing.
func (s *SnapshotStore) GetOrBuild(pageURL string, build func() (*domain.ExtractionSnapshot, error)) (*domain.ExtractionSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.snapshot != nil && s.pageURL == pageURL {
		return s.snapshot, nil
	}

	snap, err := build()
	if err != nil {
		return nil, err
	}

	s.pageURL = pageURL
	s.snapshot = snap
	return snap, nil
}

// Invalidate drops the cached snapshot.
func (s *SnapshotStore) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pageURL = ""
	s.snapshot = nil
}

// CachedURL reports which page the store currently holds, empty when cold.
func (s *SnapshotStore) CachedURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pageURL
}
