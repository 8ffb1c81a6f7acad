package hmap

import (
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	ErrOK error = nil

	ErrBadConfig      = errors.New("config must not be nil and must set its key/value serializers")
	ErrBadHasher      = errors.New("key hasher must not be nil")
	ErrBadValueHasher = errors.New("value hasher must not be nil when the map has values")
	ErrBadSegments    = errors.New("segment count must be a power of two")
	ErrBadGeometry    = errors.New("dirShift and levels must be positive")
	ErrBadStore       = errors.New("store count must match segment count")
	ErrBadIndexTree   = errors.New("index tree count must match segment count")
	ErrBadQueue       = errors.New("queue count must match segment count")
	ErrBadCounter     = errors.New("counter count must match segment count")
	ErrBadQueuePair   = errors.New("queue requires a valid TTL/disable pairing, and expireMaxSize requires counters")
	ErrKeySetValue    = errors.New("keyset requires valueInline")

	ErrKeyAbsent   = errors.New("key must not be absent")
	ErrValueAbsent = errors.New("value must not be absent")

	ErrKeySetAdd      = errors.New("add on a keyset requires the present marker value")
	ErrKeySetHasValue = errors.New("add is illegal on a map that has values")
	ErrIteratorNoNext = errors.New("iterator remove called with no preceding next")

	ErrMapClosed = errors.New("map is closed")
	ErrMapNil    = errors.New("map is not initialized")

	ErrHashUnstable = errors.New("key hash is unstable across serialization round-trip")
)

// CorruptionError reports a non-recoverable structural invariant
// violation: a leaf recid that resolves to nothing, a queue node
// referencing an unknown leaf, an expireId with an out-of-range tag, or a
// Verify mismatch.
type CorruptionError struct {
	Segment uint32
	Reason  string
}

func (e *CorruptionError) Error() string {
	return fmt.Sprintf("hmap: data corruption in segment %d: %s", e.Segment, e.Reason)
}

func newCorruption(segment uint32, format string, args ...interface{}) *CorruptionError {
	return &CorruptionError{Segment: segment, Reason: fmt.Sprintf(format, args...)}
}
