package idgen

import (
	"context"
	"sync"
)

// MemorySequence is an in-process Sequence. Values are lost on restart.
type MemorySequence struct {
	mu     sync.Mutex
	values map[string]uint64
}

func NewMemorySequence() *MemorySequence {
	return &MemorySequence{values: make(map[string]uint64)}
}

func (s *MemorySequence) Next(_ context.Context, name string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[name]++
	return s.values[name], nil
}

func (s *MemorySequence) Current(_ context.Context, name string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values[name], nil
}

// Seed sets the last issued value for name; the next call to Next returns
// value+1.
func (s *MemorySequence) Seed(name string, value uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[name] = value
}
