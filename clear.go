package hmap

// Clear wipes every entry. notifyMode selects NotifySilent (no
// notifications), NotifyNormal (ordinary (k, old, nil, triggered=false)
// notifications) or NotifyTrigger (as-if-expired, triggered=true).
// Clear is not guaranteed sequentially-safe against concurrent
// mutators of the same segment beyond the per-segment write lock it takes
// (Open Questions).
func (m *HMap) Clear(notifyMode int) error {
	if err := m.checkStatus(); err != nil {
		return err
	}
	for _, s := range m.segments {
		if err := m.clearSegment(s, notifyMode); err != nil {
			return err
		}
	}
	return nil
}

func (m *HMap) clearSegment(s *segment, notifyMode int) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	var walkErr error
	s.index.ForEachKeyValue(func(_, leafRecid uint64) bool {
		leaf, err := s.loadLeaf(leafRecid)
		if err != nil {
			walkErr = err
			return false
		}
		for i := range leaf.Triples {
			t := &leaf.Triples[i]
			if notifyMode != NotifySilent {
				old, err := m.unwrapValue(s, t.Wrapped)
				if err != nil {
					walkErr = err
					return false
				}
				m.notify(t.Key, old, nil, notifyMode == NotifyTrigger)
			}
			if m.config.HasValues && !m.config.ValueInline {
				if err := s.store.Delete(t.Wrapped.(uint64)); err != nil {
					walkErr = err
					return false
				}
			}
		}
		if err := s.store.Delete(leafRecid); err != nil {
			walkErr = err
			return false
		}
		return true
	})
	if walkErr != nil {
		return walkErr
	}

	for _, q := range []QueueLong{s.createQueue, s.updateQueue, s.getQueue} {
		if q != nil {
			if err := q.Clear(); err != nil {
				return err
			}
		}
	}

	rebuildIndex(s)
	if s.counter != nil {
		s.counter.Reset()
	}
	return nil
}

// rebuildIndex drops every entry from the index tree. Implementations that
// support it may prefer a bulk reset; ForEachKeyValue + RemoveKey is the
// contract-minimal fallback.
func rebuildIndex(s *segment) {
	var keys []uint64
	s.index.ForEachKeyValue(func(index, _ uint64) bool {
		keys = append(keys, index)
		return true
	})
	for _, k := range keys {
		s.index.RemoveKey(k)
	}
}
