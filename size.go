package hmap

import "math"

// Size returns the entry count, saturating to math.MaxInt32.
// Segments are visited one at a time under their read lock; the result is
// a best-effort snapshot, not a point-in-time total.
func (m *HMap) Size() (int32, error) {
	total, err := m.size64()
	if err != nil {
		return 0, err
	}
	if total > math.MaxInt32 {
		return math.MaxInt32, nil
	}
	return int32(total), nil
}

func (m *HMap) size64() (int64, error) {
	if err := m.checkStatus(); err != nil {
		return 0, err
	}
	var total int64
	for _, s := range m.segments {
		s.lock.RLock()
		n, err := m.segmentSizeRLocked(s)
		s.lock.RUnlock()
		if err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}

func (m *HMap) segmentSizeRLocked(s *segment) (int64, error) {
	if s.counter != nil {
		return s.counter.Get(), nil
	}
	var n int64
	var walkErr error
	s.index.ForEachKeyValue(func(_, leafRecid uint64) bool {
		leaf, err := s.loadLeaf(leafRecid)
		if err != nil {
			walkErr = err
			return false
		}
		n += int64(len(leaf.Triples))
		return true
	})
	return n, walkErr
}

// IsEmpty reports whether every segment's index tree is empty.
func (m *HMap) IsEmpty() (bool, error) {
	if err := m.checkStatus(); err != nil {
		return false, err
	}
	for _, s := range m.segments {
		s.lock.RLock()
		empty := s.index.IsEmpty()
		s.lock.RUnlock()
		if !empty {
			return false, nil
		}
	}
	return true, nil
}

// MapSize aggregates the total/used/free byte accounting of every segment
// whose store implements SizedStore.
type MapSize struct {
	Total uint64
	Used  uint64
	Free  uint64
}

// StoreSize aggregates GetTotalSize/GetFreeSize across every
// segment whose store is a SizedStore; segments backed by a plain Store
// contribute nothing.
func (m *HMap) StoreSize() (MapSize, error) {
	if err := m.checkStatus(); err != nil {
		return MapSize{}, err
	}
	var out MapSize
	for _, s := range m.segments {
		if s.sizedStore == nil {
			continue
		}
		s.lock.RLock()
		out.Total += s.sizedStore.GetTotalSize()
		out.Free += s.sizedStore.GetFreeSize()
		s.lock.RUnlock()
	}
	out.Used = out.Total - out.Free
	return out, nil
}
