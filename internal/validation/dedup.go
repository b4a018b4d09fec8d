package validation

import "invoiceqc/pkg/models"

// DedupState holds the duplicate keys seen during one validation run. It is
// not safe for concurrent use and must not be shared across runs.
type DedupState struct {
	seen map[models.DuplicateKey]struct{}
}

// NewDedupState returns an empty state.
func NewDedupState() *DedupState {
	return &DedupState{seen: make(map[models.DuplicateKey]struct{})}
}

// Seen reports whether key was added before.
func (s *DedupState) Seen(key models.DuplicateKey) bool {
	_, ok := s.seen[key]
	return ok
}

// Add records key.
func (s *DedupState) Add(key models.DuplicateKey) {
	s.seen[key] = struct{}{}
}

// Len returns the number of distinct keys recorded.
func (s *DedupState) Len() int {
	return len(s.seen)
}
