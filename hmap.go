package hmap

import (
	"sync/atomic"
)

// HMap is a concurrent, segmented, persistable hash map.
type HMap struct {
	config *Config
	status uint32
	geo    geometry

	segments []*segment

	hashChecked uint32

	bg  *background
	vac *background
}

// NewHMap wires a Config's external collaborators into a running map. The
// Store/IndexTree/QueueLong slices must already be sized to
// Config.SegmentCount() — NewHMap never allocates segment storage, only the
// in-process bookkeeping (locks, leaf codec) around it.
func NewHMap(config *Config) (*HMap, error) {
	if config == nil {
		return nil, ErrBadConfig
	}
	config = config.Copy()

	if err := config.validate(); err != nil {
		return nil, err
	}

	if config.MetricsWriter == nil {
		config.MetricsWriter = dummyMetrics
	}
	if config.Logger == nil {
		config.Logger = dummyLog
	}
	if config.Clock == nil {
		config.Clock = nativeClock{}
	}

	warnGeometry(config.Logger, config.SegmentCount(), config.DirShift, config.Levels)

	m := &HMap{
		config: config,
		status: mapStatusActive,
		geo:    newGeometry(config),
	}

	segs := config.SegmentCount()
	m.segments = make([]*segment, segs)
	for i := uint32(0); i < segs; i++ {
		s := &segment{
			id:    i,
			store: config.Stores[i],
			index: config.IndexTrees[i],
			lock:  newSegmentLock(config.IsThreadSafe),
			codec: newLeafCodec(config.KeySerializer, config.ValueSerializer, config.ValueInline, config.HasValues),
		}
		if config.IsThreadSafe {
			if err := s.store.AssertThreadSafe(); err != nil {
				return nil, err
			}
		}
		if sized, ok := s.store.(SizedStore); ok {
			s.sizedStore = sized
		}
		if config.Counters != nil {
			s.counter = config.Counters[i]
		}
		if config.CreateQueue != nil {
			s.createQueue = config.CreateQueue[i]
		}
		if config.UpdateQueue != nil {
			s.updateQueue = config.UpdateQueue[i]
		}
		if config.GetQueue != nil {
			s.getQueue = config.GetQueue[i]
		}
		m.segments[i] = s
	}

	if config.ExpireExecutorPeriod > 0 {
		m.startBackgroundEviction()
	}
	if config.VacuumInterval > 0 {
		m.startVacuum()
	}

	return m, nil
}

func (m *HMap) segmentFor(key interface{}) (*segment, uint64) {
	h := routingHash(m.config.KeyHasher, key)
	seg := m.segments[m.geo.hashToSegment(h)]
	idx := m.geo.hashToIndex(h)
	return seg, idx
}

// hasExpiration reports whether any expiration queue is configured.
func (m *HMap) hasExpiration() bool {
	return m.config.CreateQueue != nil || m.config.UpdateQueue != nil || m.config.GetQueue != nil
}

// foregroundEvictionEnabled is true when no background executor runs and
// at least one expiration queue exists.
func (m *HMap) foregroundEvictionEnabled() bool {
	return m.config.ExpireExecutorPeriod == 0 && m.hasExpiration()
}

func (m *HMap) checkStatus() error {
	switch atomic.LoadUint32(&m.status) {
	case mapStatusActive:
		return nil
	case mapStatusClosed:
		return ErrMapClosed
	default:
		return ErrMapNil
	}
}

func (m *HMap) maybeCheckHashStability(key interface{}) error {
	if atomic.LoadUint32(&m.hashChecked) != 0 {
		return nil
	}
	// The CAS only bounds how often the round-trip runs; the check itself
	// is best-effort and harmless to repeat under race.
	if !atomic.CompareAndSwapUint32(&m.hashChecked, 0, 1) {
		return nil
	}
	if m.config.KeySerializer.IsTrusted() {
		// Trusted serializers never lose hash identity; skip the
		// round-trip.
		return nil
	}
	return checkHashStability(m.config.KeyHasher, m.config.KeySerializer, key)
}

// Close stops background eviction/vacuum, then takes a global write lock
// over every segment so in-flight operations drain before it
// returns.
func (m *HMap) Close() error {
	atomic.StoreUint32(&m.status, mapStatusClosed)
	m.stopBackground()
	for _, s := range m.segments {
		s.lock.Lock()
	}
	for i := len(m.segments) - 1; i >= 0; i-- {
		m.segments[i].lock.Unlock()
	}
	return nil
}

func (m *HMap) l() Logger         { return m.config.Logger }
func (m *HMap) mw() MetricsWriter { return m.config.MetricsWriter }
