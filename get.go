package hmap

// ValueLoader synthesizes a value for a missing key. Returning
// nil means "still absent" — nothing is inserted.
type ValueLoader func(key interface{}) (interface{}, error)

// Get returns key's current value, or nil if absent. When Config has a
// GetQueue the access is registered there (bumping its TTL); when a
// ValueLoader is configured a miss synthesizes and inserts a value.
func (m *HMap) Get(key interface{}) (interface{}, error) {
	return m.get(key, m.config.Loader)
}

// GetWithLoader is Get with a one-off loader overriding Config.Loader for
// this call.
func (m *HMap) GetWithLoader(key interface{}, loader ValueLoader) (interface{}, error) {
	return m.get(key, loader)
}

// ContainsKey reports whether key is present. Registers the access in the
// get queue the same way Get does.
func (m *HMap) ContainsKey(key interface{}) (bool, error) {
	v, err := m.Get(key)
	return v != nil, err
}

func (m *HMap) get(key interface{}, loader ValueLoader) (interface{}, error) {
	if err := m.checkStatus(); err != nil {
		return nil, err
	}
	if key == nil {
		return nil, ErrKeyAbsent
	}
	m.mw().Get()

	s, index := m.segmentFor(key)

	needsWrite := s.getQueue != nil || loader != nil
	if !needsWrite {
		s.lock.RLock()
		v, _, err := m.getReadLocked(s, index, key)
		s.lock.RUnlock()
		return v, err
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	if m.foregroundEvictionEnabled() && s.getQueue != nil {
		if err := m.evictSegmentLF(s); err != nil {
			return nil, err
		}
	}

	v, found, err := m.getWriteLocked(s, index, key)
	if err != nil {
		return nil, err
	}
	if found {
		return v, nil
	}
	if loader == nil {
		m.mw().Miss()
		return nil, nil
	}

	loaded, err := loader(key)
	if err != nil {
		return nil, err
	}
	if loaded == nil {
		m.mw().Miss()
		return nil, nil
	}
	if _, err = m.putLocked(s, index, key, loaded, false, true); err != nil {
		return nil, err
	}
	return loaded, nil
}

func (m *HMap) getReadLocked(s *segment, index uint64, key interface{}) (interface{}, bool, error) {
	leafRecid := s.index.Get(index)
	if leafRecid == 0 {
		m.mw().Miss()
		return nil, false, nil
	}
	leaf, err := s.loadLeaf(leafRecid)
	if err != nil {
		return nil, false, err
	}
	pos := leaf.indexOf(m.config.KeyHasher, key)
	if pos < 0 {
		m.mw().Miss()
		return nil, false, nil
	}
	m.mw().Hit()
	v, err := m.unwrapValue(s, leaf.Triples[pos].Wrapped)
	return v, true, err
}

// getWriteLocked mirrors getReadLocked but also drives the GET queue
// bump/transfer logic on a hit.
func (m *HMap) getWriteLocked(s *segment, index uint64, key interface{}) (interface{}, bool, error) {
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

	t := &leaf.Triples[pos]
	v, err := m.unwrapValue(s, t.Wrapped)
	if err != nil {
		return nil, false, err
	}

	if s.getQueue != nil {
		if err = m.transferOrPushQueueNode(s, t, s.getQueue, queueTagGet, m.config.ExpireGetTTL, leafRecid); err != nil {
			return nil, false, err
		}
		if err = s.storeLeaf(leafRecid, leaf); err != nil {
			return nil, false, err
		}
	}

	m.mw().Hit()
	return v, true, nil
}
