package idgen

import (
	"context"
	"errors"
	"sync"
	"time"
)

const (
	nodeBits     = 10
	sequenceBits = 12

	maxNodeID   = (1 << nodeBits) - 1
	maxSequence = (1 << sequenceBits) - 1
)

var ErrClockMovedBack = errors.New("clock moved backwards")

// SnowflakeSequence is a coordination-free Sequence. Values are Snowflake
// IDs, so they are increasing but sparse and shared across all names; pair
// it with a code length that can hold 19 decimal digits.
//
// Layout (64 bits):
// 41 bits timestamp (ms since epoch)
// 10 bits node ID (0..1023)
// 12 bits sequence (0..4095)
type SnowflakeSequence struct {
	mu       sync.Mutex
	epoch    int64 // ms
	nodeID   uint64
	lastTs   int64
	sequence uint64
	last     uint64
	now      func() time.Time
}

// NewSnowflakeSequence creates a SnowflakeSequence for nodeID (0..1023).
// If epoch is zero, 2020-01-01T00:00:00Z is used.
func NewSnowflakeSequence(nodeID uint64, epoch time.Time) (*SnowflakeSequence, error) {
	if nodeID > maxNodeID {
		return nil, errors.New("nodeID out of range")
	}
	if epoch.IsZero() {
		epoch = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	return &SnowflakeSequence{
		epoch:  epoch.UnixMilli(),
		nodeID: nodeID,
		lastTs: -1,
		now:    time.Now,
	}, nil
}

func (s *SnowflakeSequence) Next(_ context.Context, _ string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ts := s.now().UnixMilli() - s.epoch
	if ts < 0 {
		return 0, errors.New("current time is before epoch")
	}
	if ts < s.lastTs {
		return 0, ErrClockMovedBack
	}

	if ts == s.lastTs {
		s.sequence = (s.sequence + 1) & maxSequence
		if s.sequence == 0 {
			// sequence overflow within same millisecond -> wait for next millisecond
			for ts <= s.lastTs {
				time.Sleep(time.Millisecond)
				ts = s.now().UnixMilli() - s.epoch
			}
		}
	} else {
		s.sequence = 0
	}
	s.lastTs = ts

	s.last = (uint64(ts) << (nodeBits + sequenceBits)) |
		(s.nodeID << sequenceBits) |
		s.sequence
	return s.last, nil
}

// Current returns the last value handed out by this process.
func (s *SnowflakeSequence) Current(_ context.Context, _ string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last, nil
}
