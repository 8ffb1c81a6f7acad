package hmap

// Remove deletes key and returns its previous value, or nil if absent.
func (m *HMap) Remove(key interface{}) (interface{}, error) {
	v, _, err := m.remove(key, nil, false)
	return v, err
}

// RemoveBoolean deletes key and reports whether it was present.
func (m *HMap) RemoveBoolean(key interface{}) (bool, error) {
	_, ok, err := m.remove(key, nil, false)
	return ok, err
}

// RemoveIfEquals deletes key only if its current value equals v (per
// Config.ValueHasher), returning whether it was removed.
func (m *HMap) RemoveIfEquals(key, v interface{}) (bool, error) {
	_, ok, err := m.remove(key, v, true)
	return ok, err
}

func (m *HMap) remove(key, expect interface{}, checkValue bool) (interface{}, bool, error) {
	if err := m.checkStatus(); err != nil {
		return nil, false, err
	}
	if key == nil {
		return nil, false, ErrKeyAbsent
	}

	s, index := m.segmentFor(key)
	s.lock.Lock()
	defer s.lock.Unlock()

	if m.foregroundEvictionEnabled() {
		if err := m.evictSegmentLF(s); err != nil {
			return nil, false, err
		}
	}

	return m.removeLocked(s, index, key, expect, checkValue, false)
}

// removeLocked deletes a key under the caller's already-held write lock.
// evicted=true marks the call as eviction-driven: the queue node has
// already been consumed by the caller, so it is not removed again, and
// listeners are notified with triggered=true.
func (m *HMap) removeLocked(s *segment, index uint64, key, expect interface{}, checkValue, evicted bool) (interface{}, bool, error) {
	m.assertRouting(s.id, index, key)
	leafRecid := s.index.Get(index)
	if leafRecid == 0 {
		return nil, false, nil
	}

	leaf, err := s.loadLeaf(leafRecid)
	if err != nil {
		return nil, false, err
	}

	pos := leaf.indexOf(m.config.KeyHasher, key)
	if pos < 0 {
		return nil, false, nil
	}

	t := leaf.Triples[pos]
	oldValue, err := m.unwrapValue(s, t.Wrapped)
	if err != nil {
		return nil, false, err
	}

	if checkValue && !m.config.ValueHasher.Equals(oldValue, expect) {
		return nil, false, nil
	}

	if !evicted && t.ExpireID != 0 {
		if err = s.removeQueueNode(t.ExpireID, true); err != nil {
			return nil, false, err
		}
	}

	if len(leaf.Triples) == 1 {
		s.index.RemoveKey(index)
		if err = s.store.Delete(leafRecid); err != nil {
			return nil, false, err
		}
	} else {
		leaf.removeAt(pos)
		if err = s.storeLeaf(leafRecid, leaf); err != nil {
			return nil, false, err
		}
	}

	if m.config.HasValues && !m.config.ValueInline {
		if err = s.store.Delete(t.Wrapped.(uint64)); err != nil {
			return nil, false, err
		}
	}

	if s.counter != nil {
		s.counter.Decrement()
	}

	m.mw().Remove()
	m.notify(key, oldValue, nil, evicted)
	return oldValue, true, nil
}
