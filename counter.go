package hmap

import "sync/atomic"

// Counter is a per-segment atomic entry count. Optional: when
// Config.Counters is nil, size() falls back to summing leaf lengths.
type Counter interface {
	Increment() int64
	Decrement() int64
	Get() int64
	Reset()
}

// AtomicCounter is the default in-process Counter. A caller wanting the
// count to survive a restart wraps a recid with its own Store-backed
// Counter implementation; HMap only ever talks to this interface.
type AtomicCounter struct {
	v int64
}

func NewAtomicCounter() *AtomicCounter { return &AtomicCounter{} }

func (c *AtomicCounter) Increment() int64 { return atomic.AddInt64(&c.v, 1) }
func (c *AtomicCounter) Decrement() int64 { return atomic.AddInt64(&c.v, -1) }
func (c *AtomicCounter) Get() int64       { return atomic.LoadInt64(&c.v) }
func (c *AtomicCounter) Reset()           { atomic.StoreInt64(&c.v, 0) }
