package hmap

// PutIfAbsent inserts value if key is absent and returns nil; otherwise
// returns the existing value unchanged.
func (m *HMap) PutIfAbsent(key, value interface{}) (interface{}, error) {
	v, _, err := m.putIfAbsent(key, value, true)
	return v, err
}

// PutIfAbsentBoolean is PutIfAbsent without materializing the existing
// value on a miss-of-absence (key already present).
func (m *HMap) PutIfAbsentBoolean(key, value interface{}) (bool, error) {
	_, inserted, err := m.putIfAbsent(key, value, false)
	return inserted, err
}

func (m *HMap) putIfAbsent(key, value interface{}, wantOld bool) (interface{}, bool, error) {
	if err := m.checkStatus(); err != nil {
		return nil, false, err
	}
	if key == nil {
		return nil, false, ErrKeyAbsent
	}
	if value == nil {
		return nil, false, ErrValueAbsent
	}
	if !m.config.HasValues && value != Present {
		return nil, false, ErrKeySetAdd
	}
	if err := m.maybeCheckHashStability(key); err != nil {
		return nil, false, err
	}

	s, index := m.segmentFor(key)
	s.lock.Lock()
	defer s.lock.Unlock()

	if m.foregroundEvictionEnabled() {
		if err := m.evictSegmentLF(s); err != nil {
			return nil, false, err
		}
	}

	leafRecid := s.index.Get(index)
	if leafRecid != 0 {
		leaf, err := s.loadLeaf(leafRecid)
		if err != nil {
			return nil, false, err
		}
		if pos := leaf.indexOf(m.config.KeyHasher, key); pos >= 0 {
			if !wantOld {
				return nil, false, nil
			}
			v, err := m.unwrapValue(s, leaf.Triples[pos].Wrapped)
			return v, false, err
		}
	}

	if _, err := m.putLocked(s, index, key, value, false, false); err != nil {
		return nil, false, err
	}
	return nil, true, nil
}

// ReplaceIfEquals replaces key's value with newValue only if its current
// value equals oldValue (per Config.ValueHasher), returning whether the
// replace happened.
func (m *HMap) ReplaceIfEquals(key, oldValue, newValue interface{}) (bool, error) {
	if err := m.checkStatus(); err != nil {
		return false, err
	}
	if key == nil {
		return false, ErrKeyAbsent
	}
	if newValue == nil {
		return false, ErrValueAbsent
	}

	s, index := m.segmentFor(key)
	s.lock.Lock()
	defer s.lock.Unlock()

	if m.foregroundEvictionEnabled() {
		if err := m.evictSegmentLF(s); err != nil {
			return false, err
		}
	}

	leafRecid := s.index.Get(index)
	if leafRecid == 0 {
		return false, nil
	}
	leaf, err := s.loadLeaf(leafRecid)
	if err != nil {
		return false, err
	}
	pos := leaf.indexOf(m.config.KeyHasher, key)
	if pos < 0 {
		return false, nil
	}
	current, err := m.unwrapValue(s, leaf.Triples[pos].Wrapped)
	if err != nil {
		return false, err
	}
	if !m.config.ValueHasher.Equals(current, oldValue) {
		return false, nil
	}
	if _, err = m.putLocked(s, index, key, newValue, false, false); err != nil {
		return false, err
	}
	return true, nil
}

// Replace replaces key's value with newValue if present and returns the
// previous value, or nil if absent.
func (m *HMap) Replace(key, newValue interface{}) (interface{}, error) {
	if err := m.checkStatus(); err != nil {
		return nil, err
	}
	if key == nil {
		return nil, ErrKeyAbsent
	}
	if newValue == nil {
		return nil, ErrValueAbsent
	}

	s, index := m.segmentFor(key)
	s.lock.Lock()
	defer s.lock.Unlock()

	if m.foregroundEvictionEnabled() {
		if err := m.evictSegmentLF(s); err != nil {
			return nil, err
		}
	}

	leafRecid := s.index.Get(index)
	if leafRecid == 0 {
		return nil, nil
	}
	leaf, err := s.loadLeaf(leafRecid)
	if err != nil {
		return nil, err
	}
	pos := leaf.indexOf(m.config.KeyHasher, key)
	if pos < 0 {
		return nil, nil
	}

	return m.putLocked(s, index, key, newValue, true, false)
}
