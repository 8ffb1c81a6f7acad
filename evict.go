package hmap

import (
	"math/rand"
	"sync"
	"time"
)

// ExpireEvict runs foreground-style eviction over every segment. Safe to
// call even when a background executor is configured.
func (m *HMap) ExpireEvict() error {
	for i := range m.segments {
		if err := m.ExpireEvictSegment(uint32(i)); err != nil {
			return err
		}
	}
	return nil
}

// ExpireEvictSegment evicts expired/over-cap entries from one segment,
// taking that segment's write lock.
func (m *HMap) ExpireEvictSegment(segment uint32) error {
	s := m.segments[segment]
	s.lock.Lock()
	defer s.lock.Unlock()
	return m.evictSegmentLF(s)
}

// evictSegmentLF is the lock-free core, reusable by foreground eviction
// which already holds the segment's write lock.
func (m *HMap) evictSegmentLF(s *segment) error {
	currTimestamp := nowMillis(m.config.Clock)

	numberToTake := m.numberToTake(s)

	queues := [3]struct {
		q   QueueLong
		tag uint8
	}{
		{s.getQueue, queueTagGet},
		{s.updateQueue, queueTagUpdate},
		{s.createQueue, queueTagCreate},
	}

	var evicted uint32
	for _, qt := range queues {
		if qt.q == nil {
			continue
		}
		var takeErr error
		pred := func(_ uint64, node QNode) bool {
			if numberToTake > 0 {
				numberToTake--
				return true
			}
			if node.Timestamp != 0 && node.Timestamp < currTimestamp {
				return true
			}
			if m.config.ExpireStoreSize != 0 && s.sizedStore != nil {
				used := s.sizedStore.FileTail() - s.sizedStore.GetFreeSize()
				if used > m.config.ExpireStoreSize {
					m.mw().NoSpace()
					return true
				}
			}
			return false
		}
		take := func(nodeRecid uint64, node QNode) {
			if err := m.expireEvictEntry(s, node.Value, nodeRecid); err != nil {
				takeErr = err
			}
			evicted++
		}
		if err := qt.q.TakeUntil(pred, take); err != nil {
			return err
		}
		if takeErr != nil {
			return takeErr
		}
	}
	if evicted > 0 {
		m.mw().Evict(evicted)
	}

	if m.config.ExpireCompactThreshold > 0 && s.sizedStore != nil {
		total := s.sizedStore.GetTotalSize()
		if total > 0 {
			ratio := float64(s.sizedStore.GetFreeSize()) / float64(total)
			if ratio > m.config.ExpireCompactThreshold {
				m.mw().Compact()
				if err := s.sizedStore.Compact(); err != nil {
					return err
				}
			}
		}
	}

	return nil
}

func (m *HMap) numberToTake(s *segment) int64 {
	if m.config.ExpireMaxSize == 0 || s.counter == nil {
		return 0
	}
	segmentCount := int64(m.config.SegmentCount())
	segmentSize := s.counter.Get()
	n := (segmentSize*segmentCount - int64(m.config.ExpireMaxSize)) / segmentCount
	if n < 0 {
		return 0
	}
	return n
}

// expireEvictEntry locates the triple node's nodeRecid refers to inside
// leafRecid, derives its key and removes it with evicted=true. Listeners
// consequently see triggered=true.
func (m *HMap) expireEvictEntry(s *segment, leafRecid, nodeRecid uint64) error {
	leaf, err := s.loadLeaf(leafRecid)
	if err != nil {
		return err
	}
	for i := range leaf.Triples {
		t := &leaf.Triples[i]
		if t.ExpireID != 0 && expireNodeRecidFor(t.ExpireID) == nodeRecid {
			h := routingHash(m.config.KeyHasher, t.Key)
			index := m.geo.hashToIndex(h)
			_, _, err := m.removeLocked(s, index, t.Key, nil, false, true)
			m.mw().Expire(1)
			return err
		}
	}
	return newCorruption(s.id, "queue node %d has no matching leaf triple in leaf %d", nodeRecid, leafRecid)
}

// background runs the scheduled eviction/vacuum goroutines: one ticker per
// segment with an initial random jitter in [0, period) so segments don't
// all tick in lockstep.
type background struct {
	stop chan struct{}
	wg   sync.WaitGroup
}

func (m *HMap) startBackgroundEviction() {
	m.bg = &background{stop: make(chan struct{})}
	period := m.config.ExpireExecutorPeriod
	for i := range m.segments {
		idx := uint32(i)
		m.bg.wg.Add(1)
		go func() {
			defer m.bg.wg.Done()
			jitter := time.Duration(rand.Int63n(int64(period)))
			t := time.NewTimer(jitter)
			defer t.Stop()
			select {
			case <-t.C:
			case <-m.bg.stop:
				return
			}
			ticker := time.NewTicker(period)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					m.runScheduledEviction(idx)
				case <-m.bg.stop:
					return
				}
			}
		}()
	}
}

// runScheduledEviction catches and logs failures so a misbehaving segment
// never stops the executor.
func (m *HMap) runScheduledEviction(segment uint32) {
	defer func() {
		if r := recover(); r != nil {
			m.l().Printf("hmap: segment %d: eviction panicked: %v", segment, r)
		}
	}()
	if err := m.ExpireEvictSegment(segment); err != nil {
		m.l().Printf("hmap: segment %d: eviction failed: %s", segment, err.Error())
	}
}

func (m *HMap) startVacuum() {
	if m.vac == nil {
		m.vac = &background{stop: make(chan struct{})}
	}
	interval := m.config.VacuumInterval
	m.vac.wg.Add(1)
	go func() {
		defer m.vac.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.runScheduledVacuum()
			case <-m.vac.stop:
				return
			}
		}
	}()
}

func (m *HMap) runScheduledVacuum() {
	defer func() {
		if r := recover(); r != nil {
			m.l().Printf("hmap: vacuum panicked: %v", r)
		}
	}()
	for _, s := range m.segments {
		if s.sizedStore == nil {
			continue
		}
		s.lock.Lock()
		err := s.sizedStore.Compact()
		s.lock.Unlock()
		if err != nil {
			m.l().Printf("hmap: segment %d: vacuum failed: %s", s.id, err.Error())
		}
	}
}

func (m *HMap) stopBackground() {
	if m.bg != nil {
		close(m.bg.stop)
		m.bg.wg.Wait()
	}
	if m.vac != nil {
		close(m.vac.stop)
		m.vac.wg.Wait()
	}
}
