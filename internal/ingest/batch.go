package ingest

import (
	"time"

	"github.com/google/uuid"
)

// BatchIDGenerator names one ingestion run. Implemented by
// UUIDv7Generator (production) and testutil.FixedBatchGenerator (tests).
type BatchIDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 batch ids, so the log
// lines of consecutive runs sort by start time.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
//
// Panics if UUID generation fails (should never happen in practice).
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Clock supplies the insertion timestamp of each simulation.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the local wall clock.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time {
	return time.Now()
}
