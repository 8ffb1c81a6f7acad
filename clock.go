package hmap

import "time"

// Clock is the time source behind TTL timestamps and eviction ticks.
// Shaped to match github.com/koykov/clock's Clock so a *clock.Clock can be
// dropped in directly; tests use that jumpable implementation to fire
// expiration deterministically instead of sleeping real wall-clock time.
type Clock interface {
	Now() time.Time
	Jump(delta time.Duration)
}

// nativeClock is the zero-value default: real wall-clock time, no jump.
type nativeClock struct{}

func (nativeClock) Now() time.Time       { return time.Now() }
func (nativeClock) Jump(_ time.Duration) {}

func nowMillis(c Clock) int64 {
	return c.Now().UnixNano() / int64(time.Millisecond)
}
