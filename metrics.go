package hmap

// MetricsWriter receives counters for map activity. Never mandatory: a nil
// Config.MetricsWriter is backfilled with DummyMetrics by NewHMap.
type MetricsWriter interface {
	Put()
	Get()
	Hit()
	Miss()
	Remove()
	Evict(n uint32)
	Expire(n uint32)
	Collision()
	NoSpace()
	Compact()
}
