package testutil

import (
	"sync"
	"time"
)

// DeterministicClock is a wall clock for tests: every call to Now returns
// the current time and then advances it by a fixed step.
//
// A zero step makes it a fixed clock. Reset rewinds it to the start time,
// so the same scenario can run twice with identical timestamps.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type DeterministicClock struct {
	mu    sync.Mutex
	start time.Time
	now   time.Time
	step  time.Duration
}

// DefaultTime is the start time of NewFixedClock.
var DefaultTime = time.Date(2009, time.April, 1, 12, 0, 0, 0, time.UTC)

// NewDeterministicClock creates a clock starting at start and advancing by
// step on every Now.
func NewDeterministicClock(start time.Time, step time.Duration) *DeterministicClock {
	return &DeterministicClock{start: start, now: start, step: step}
}

// NewFixedClock creates a clock that always returns DefaultTime.
func NewFixedClock() *DeterministicClock {
	return NewDeterministicClock(DefaultTime, 0)
}

// Now returns the current time and advances the clock.
func (c *DeterministicClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now
	c.now = c.now.Add(c.step)
	return t
}

// Reset rewinds the clock to its start time.
func (c *DeterministicClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.start
}

// FixedBatchGenerator returns the same batch id every time, so ingestion
// reports compare byte for byte.
type FixedBatchGenerator struct {
	id string
}

// NewFixedBatchGenerator creates a generator returning id. An empty id
// becomes "test-batch-default".
func NewFixedBatchGenerator(id string) *FixedBatchGenerator {
	if id == "" {
		id = "test-batch-default"
	}
	return &FixedBatchGenerator{id: id}
}

// Generate returns the fixed id.
func (g *FixedBatchGenerator) Generate() string {
	return g.id
}
