// Package clock provides the time and block height the hub evaluates
// deadlines, collect windows and voting checkpoints against.
package clock

import (
	"sync"
	"time"
)

// Clock returns the current timestamp (unix seconds) and block height.
type Clock interface {
	Timestamp() uint64
	Height() uint64
}

// System derives the height from wall time: one block every BlockPeriod
// since Genesis.
type System struct {
	Genesis     time.Time
	BlockPeriod time.Duration
}

// NewSystem returns a System clock starting now.
func NewSystem(blockPeriod time.Duration) *System {
	return &System{Genesis: time.Now(), BlockPeriod: blockPeriod}
}

// Timestamp implements Clock.
func (s *System) Timestamp() uint64 {
	return uint64(time.Now().Unix())
}

// Height implements Clock.
func (s *System) Height() uint64 {
	if s.BlockPeriod <= 0 {
		return 1
	}
	return uint64(time.Since(s.Genesis)/s.BlockPeriod) + 1
}

// Mock is a manually driven clock.
type Mock struct {
	mu     sync.Mutex
	ts     uint64
	height uint64
}

// NewMock returns a Mock at the given timestamp and height.
func NewMock(ts, height uint64) *Mock {
	return &Mock{ts: ts, height: height}
}

// Timestamp implements Clock.
func (m *Mock) Timestamp() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ts
}

// Height implements Clock.
func (m *Mock) Height() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.height
}

// Set moves the clock to ts and height.
func (m *Mock) Set(ts, height uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ts, m.height = ts, height
}

// Advance moves the clock forward by seconds and blocks.
func (m *Mock) Advance(seconds, blocks uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ts += seconds
	m.height += blocks
}
