package hmap

import "time"

// Config is the map's immutable-after-construction geometry and policy.
// NewHMap validates a defensive copy and never touches the original.
type Config struct {
	// Hash/collision geometry.
	ConcShift uint32
	DirShift  uint32
	Levels    uint32
	HashSeed  uint32

	// Value layout.
	ValueInline bool
	HasValues   bool

	// TTLs, in milliseconds. -1 = queued, timestamp 0 ("never"). 0 = disabled.
	ExpireCreateTTL int64
	ExpireUpdateTTL int64
	ExpireGetTTL    int64

	// Caps. 0 disables the cap.
	ExpireMaxSize   uint64
	ExpireStoreSize uint64

	ExpireExecutorPeriod   time.Duration
	ExpireCompactThreshold float64

	IsThreadSafe bool

	KeyHasher   KeyHasher
	ValueHasher ValueHasher

	KeySerializer   Serializer
	ValueSerializer Serializer

	Listeners []ModificationListener

	// Loader, when set, synthesizes values for missing keys inside Get.
	// Its presence forces Get onto the write-locked path.
	Loader ValueLoader

	Clock         Clock
	Logger        Logger
	MetricsWriter MetricsWriter

	// Collaborators, one entry per segment (len == SegmentCount()).
	Stores      []Store
	IndexTrees  []IndexTree
	Counters    []Counter
	CreateQueue []QueueLong
	UpdateQueue []QueueLong
	GetQueue    []QueueLong

	// VacuumInterval, when set, schedules an independent store.Compact()
	// pass distinct from expiration-driven compaction.
	VacuumInterval time.Duration
}

// SegmentCount returns 1 << ConcShift.
func (c *Config) SegmentCount() uint32 {
	return 1 << c.ConcShift
}

// Copy returns a shallow defensive copy, mirroring cbytecache.Config.Copy.
func (c *Config) Copy() *Config {
	cpy := *c
	cpy.Stores = append([]Store(nil), c.Stores...)
	cpy.IndexTrees = append([]IndexTree(nil), c.IndexTrees...)
	cpy.Counters = append([]Counter(nil), c.Counters...)
	cpy.CreateQueue = append([]QueueLong(nil), c.CreateQueue...)
	cpy.UpdateQueue = append([]QueueLong(nil), c.UpdateQueue...)
	cpy.GetQueue = append([]QueueLong(nil), c.GetQueue...)
	cpy.Listeners = append([]ModificationListener(nil), c.Listeners...)
	return &cpy
}

func (c *Config) validate() error {
	if c.KeyHasher == nil {
		return ErrBadHasher
	}
	segs := c.SegmentCount()
	if segs == 0 || (segs&(segs-1)) != 0 {
		return ErrBadSegments
	}
	if c.DirShift == 0 || c.Levels == 0 {
		return ErrBadGeometry
	}
	if c.KeySerializer == nil {
		return ErrBadConfig
	}
	if !c.HasValues {
		if !c.ValueInline {
			return ErrKeySetValue
		}
		c.ValueSerializer = keySetValueSerializer{}
		if c.ValueHasher == nil {
			c.ValueHasher = presentHasher{}
		}
	} else {
		if c.ValueSerializer == nil {
			return ErrBadConfig
		}
		if c.ValueHasher == nil {
			return ErrBadValueHasher
		}
	}
	if uint32(len(c.Stores)) != segs {
		return ErrBadStore
	}
	for _, st := range c.Stores {
		if st == nil {
			return ErrBadStore
		}
	}
	if uint32(len(c.IndexTrees)) != segs {
		return ErrBadIndexTree
	}
	for _, it := range c.IndexTrees {
		if it == nil {
			return ErrBadIndexTree
		}
	}
	if c.Counters != nil {
		if uint32(len(c.Counters)) != segs {
			return ErrBadCounter
		}
		for _, ct := range c.Counters {
			if ct == nil {
				return ErrBadCounter
			}
		}
	}
	if c.CreateQueue != nil && uint32(len(c.CreateQueue)) != segs {
		return ErrBadQueue
	}
	if c.UpdateQueue != nil && uint32(len(c.UpdateQueue)) != segs {
		return ErrBadQueue
	}
	if c.GetQueue != nil && uint32(len(c.GetQueue)) != segs {
		return ErrBadQueue
	}
	if c.ExpireMaxSize > 0 && c.Counters == nil {
		return ErrBadQueuePair
	}
	// A TTL of 0 means "queue disabled": a queue array supplied
	// alongside it, or a live TTL with no queue to carry it, is a
	// misconfiguration either way.
	for _, pair := range [3]struct {
		ttl    int64
		queues []QueueLong
	}{
		{c.ExpireCreateTTL, c.CreateQueue},
		{c.ExpireUpdateTTL, c.UpdateQueue},
		{c.ExpireGetTTL, c.GetQueue},
	} {
		if pair.ttl < -1 {
			return ErrBadQueuePair
		}
		if (pair.ttl == 0) == (pair.queues != nil) {
			return ErrBadQueuePair
		}
		for _, q := range pair.queues {
			if q == nil {
				return ErrBadQueue
			}
		}
	}
	return nil
}
