package metrics

import "sync"

// OverflowLabel replaces label values once a LabelSet is full.
const OverflowLabel = "other"

// LabelSet admits the first max distinct values of a client-chosen label and
// folds the rest into OverflowLabel, so series counts stay bounded.
type LabelSet struct {
	mu   sync.Mutex
	max  int
	seen map[string]struct{}
}

func NewLabelSet(max int) *LabelSet {
	if max <= 0 {
		max = 100
	}
	return &LabelSet{max: max, seen: make(map[string]struct{}, max)}
}

// Label returns v if it is already tracked or there is room for it.
func (s *LabelSet) Label(v string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.seen[v]; ok {
		return v
	}
	if len(s.seen) >= s.max {
		return OverflowLabel
	}
	s.seen[v] = struct{}{}
	return v
}
