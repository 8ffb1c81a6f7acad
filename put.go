package hmap

// wrapValue returns what a Triple stores in its Wrapped slot for v: the
// value itself when inline, Present for a keyset, or an external store
// recid otherwise.
func (m *HMap) wrapValue(s *segment, v interface{}) (interface{}, error) {
	if !m.config.HasValues {
		return Present, nil
	}
	if m.config.ValueInline {
		return v, nil
	}
	b, err := m.config.ValueSerializer.Serialize(v)
	if err != nil {
		return nil, err
	}
	recid, err := s.store.Put(b)
	if err != nil {
		return nil, err
	}
	return recid, nil
}

// unwrapValue resolves a Triple's Wrapped slot back to the application
// value.
func (m *HMap) unwrapValue(s *segment, wrapped interface{}) (interface{}, error) {
	if !m.config.HasValues {
		return Present, nil
	}
	if m.config.ValueInline {
		return wrapped, nil
	}
	b, err := s.store.Get(wrapped.(uint64))
	if err != nil {
		return nil, err
	}
	return m.config.ValueSerializer.Deserialize(b)
}

func (m *HMap) ttlTimestamp(clock Clock, ttl int64) int64 {
	if ttl == -1 {
		return 0
	}
	return nowMillis(clock) + ttl
}

// Put inserts or updates key with value and returns the previous value, or
// nil when there was none.
func (m *HMap) Put(key, value interface{}) (interface{}, error) {
	return m.put(key, value, true)
}

// PutOnly is Put without materializing the previous value when no listener
// needs it.
func (m *HMap) PutOnly(key, value interface{}) error {
	_, err := m.put(key, value, false)
	return err
}

// Add inserts key into a keyset (hasValues=false) map. Illegal on a map
// that has values.
func (m *HMap) Add(key interface{}) error {
	if m.config.HasValues {
		return ErrKeySetHasValue
	}
	return m.PutOnly(key, Present)
}

func (m *HMap) put(key, value interface{}, wantOld bool) (interface{}, error) {
	if err := m.checkStatus(); err != nil {
		return nil, err
	}
	if key == nil {
		return nil, ErrKeyAbsent
	}
	if value == nil {
		return nil, ErrValueAbsent
	}
	if !m.config.HasValues && value != Present {
		return nil, ErrKeySetAdd
	}
	if err := m.maybeCheckHashStability(key); err != nil {
		return nil, err
	}

	s, index := m.segmentFor(key)
	s.lock.Lock()
	defer s.lock.Unlock()

	if m.foregroundEvictionEnabled() {
		if err := m.evictSegmentLF(s); err != nil {
			return nil, err
		}
	}

	return m.putLocked(s, index, key, value, wantOld, false)
}

// putLocked runs the insert-or-update under the caller's already-held
// write lock. triggered marks listener notifications as eviction/loader
// driven rather than an explicit caller mutation.
func (m *HMap) putLocked(s *segment, index uint64, key, value interface{}, wantOld, triggered bool) (interface{}, error) {
	m.assertRouting(s.id, index, key)
	leafRecid := s.index.Get(index)

	if leafRecid == 0 {
		if err := m.insertNewLeaf(s, index, key, value, triggered); err != nil {
			return nil, err
		}
		return nil, nil
	}

	leaf, err := s.loadLeaf(leafRecid)
	if err != nil {
		return nil, err
	}

	pos := leaf.indexOf(m.config.KeyHasher, key)
	if pos >= 0 {
		old, err := m.updateExisting(s, leafRecid, leaf, pos, value, wantOld, triggered)
		if err != nil {
			return nil, err
		}
		return old, nil
	}

	if err := m.appendToLeaf(s, leafRecid, leaf, key, value, triggered); err != nil {
		return nil, err
	}
	return nil, nil
}

// insertNewLeaf creates the bucket's first triple. The leaf<->queue cyclic
// reference is resolved via a preallocated recid when a create queue is
// active: the leaf recid must exist before the queue node can point at it,
// and the node recid before the leaf can carry its expireId.
func (m *HMap) insertNewLeaf(s *segment, index uint64, key, value interface{}, triggered bool) error {
	wrapped, err := m.wrapValue(s, value)
	if err != nil {
		return err
	}

	var leafRecid uint64
	var expireID uint64

	if s.createQueue == nil {
		leaf := &Leaf{Triples: []Triple{{Key: key, Wrapped: wrapped, ExpireID: 0}}}
		b, err := s.codec.Encode(leaf)
		if err != nil {
			return err
		}
		if leafRecid, err = s.store.Put(b); err != nil {
			return err
		}
	} else {
		if leafRecid, err = s.store.Preallocate(); err != nil {
			return err
		}
		ts := m.ttlTimestamp(m.config.Clock, m.config.ExpireCreateTTL)
		nodeRecid, err := s.createQueue.Put(ts, leafRecid)
		if err != nil {
			return err
		}
		expireID = packExpireID(nodeRecid, queueTagCreate)
		leaf := &Leaf{Triples: []Triple{{Key: key, Wrapped: wrapped, ExpireID: expireID}}}
		if err = s.storeLeaf(leafRecid, leaf); err != nil {
			return err
		}
	}

	s.index.Put(index, leafRecid)
	if s.counter != nil {
		s.counter.Increment()
	}
	m.mw().Put()
	m.notify(key, nil, value, triggered)
	return nil
}

// appendToLeaf appends a collision triple for a key new to an existing
// bucket, optionally registering a fresh CREATE queue node.
func (m *HMap) appendToLeaf(s *segment, leafRecid uint64, leaf *Leaf, key, value interface{}, triggered bool) error {
	m.mw().Collision()
	wrapped, err := m.wrapValue(s, value)
	if err != nil {
		return err
	}

	var expireID uint64
	if s.createQueue != nil {
		ts := m.ttlTimestamp(m.config.Clock, m.config.ExpireCreateTTL)
		nodeRecid, err := s.createQueue.Put(ts, leafRecid)
		if err != nil {
			return err
		}
		expireID = packExpireID(nodeRecid, queueTagCreate)
	}

	leaf.Triples = append(leaf.Triples, Triple{Key: key, Wrapped: wrapped, ExpireID: expireID})
	if err := s.storeLeaf(leafRecid, leaf); err != nil {
		return err
	}
	if s.counter != nil {
		s.counter.Increment()
	}
	m.mw().Put()
	m.notify(key, nil, value, triggered)
	return nil
}

// updateExisting overwrites a present key: queue bump/transfer, value
// rewrite, notification.
func (m *HMap) updateExisting(s *segment, leafRecid uint64, leaf *Leaf, pos int, value interface{}, wantOld, triggered bool) (interface{}, error) {
	t := &leaf.Triples[pos]

	var old interface{}
	needOld := wantOld || len(m.config.Listeners) > 0
	if needOld {
		var err error
		if old, err = m.unwrapValue(s, t.Wrapped); err != nil {
			return nil, err
		}
	}

	leafDirty := false
	if s.updateQueue != nil {
		if err := m.transferOrPushQueueNode(s, t, s.updateQueue, queueTagUpdate, m.config.ExpireUpdateTTL, leafRecid); err != nil {
			return nil, err
		}
		leafDirty = true
	}

	wrapped, err := m.rewriteValue(s, t, value)
	if err != nil {
		return nil, err
	}
	t.Wrapped = wrapped
	if m.config.ValueInline {
		leafDirty = true
	}

	if leafDirty {
		if err := s.storeLeaf(leafRecid, leaf); err != nil {
			return nil, err
		}
	}

	m.mw().Put()
	m.notify(t.Key, old, value, triggered)
	return old, nil
}

// rewriteValue writes the new value in place: it updates the external
// value record when not inlined, or returns the inline wrapped value for
// the caller to install into the leaf.
func (m *HMap) rewriteValue(s *segment, t *Triple, value interface{}) (interface{}, error) {
	if !m.config.HasValues {
		return Present, nil
	}
	if m.config.ValueInline {
		return value, nil
	}
	b, err := m.config.ValueSerializer.Serialize(value)
	if err != nil {
		return nil, err
	}
	recid := t.Wrapped.(uint64)
	if err = s.store.Update(recid, b); err != nil {
		return nil, err
	}
	return recid, nil
}

// transferOrPushQueueNode registers an update/access on target: a node
// already there is bumped in place; a node owned by another queue moves
// over keeping its recid (so the leaf only rewrites the tag); a triple
// with no node gets a fresh one.
func (m *HMap) transferOrPushQueueNode(s *segment, t *Triple, target QueueLong, tag uint8, ttl int64, leafRecid uint64) error {
	ts := m.ttlTimestamp(m.config.Clock, ttl)

	if t.ExpireID == 0 {
		nodeRecid, err := target.Put(ts, leafRecid)
		if err != nil {
			return err
		}
		t.ExpireID = packExpireID(nodeRecid, tag)
		return nil
	}

	curTag := expireTag(t.ExpireID)
	nodeRecid := expireNodeRecidFor(t.ExpireID)
	if curTag == tag {
		return target.Bump(nodeRecid, ts)
	}

	owner := s.queueForTag(curTag)
	if owner == nil {
		return newCorruption(s.id, "expireId tag %d has no matching queue", curTag)
	}
	if _, err := owner.Remove(nodeRecid, false); err != nil {
		return err
	}
	if err := target.PutNode(nodeRecid, ts, leafRecid); err != nil {
		return err
	}
	t.ExpireID = packExpireID(nodeRecid, tag)
	return nil
}
