package hmap

// Verify cross-checks every segment's index tree, leaves and expiration
// queues against each other, in order, under that segment's read lock.
func (m *HMap) Verify() error {
	if err := m.checkStatus(); err != nil {
		return err
	}
	for _, s := range m.segments {
		if err := m.verifySegment(s); err != nil {
			return err
		}
	}
	return nil
}

func (m *HMap) verifySegment(s *segment) error {
	s.lock.RLock()
	defer s.lock.RUnlock()

	if vt, ok := s.index.(VerifiableIndexTree); ok {
		if err := vt.Verify(); err != nil {
			return err
		}
	}

	seenLeaf := make(map[uint64]bool)
	expectedNodes := make(map[uint64]uint64) // nodeRecid -> leafRecid

	var walkErr error
	s.index.ForEachKeyValue(func(index, leafRecid uint64) bool {
		if seenLeaf[leafRecid] {
			walkErr = newCorruption(s.id, "leaf recid %d referenced by more than one index", leafRecid)
			return false
		}
		seenLeaf[leafRecid] = true

		leaf, err := s.loadLeaf(leafRecid)
		if err != nil {
			walkErr = err
			return false
		}
		for i := range leaf.Triples {
			t := &leaf.Triples[i]
			h := routingHash(m.config.KeyHasher, t.Key)
			wantSeg := m.geo.hashToSegment(h)
			wantIndex := m.geo.hashToIndex(h)
			if wantSeg != s.id || wantIndex != index {
				walkErr = newCorruption(s.id, "key routes to segment %d index %d, found at segment %d index %d", wantSeg, wantIndex, s.id, index)
				return false
			}
			if t.ExpireID == 0 {
				continue
			}
			nodeRecid := expireNodeRecidFor(t.ExpireID)
			if _, dup := expectedNodes[nodeRecid]; dup {
				walkErr = newCorruption(s.id, "node recid %d referenced by more than one triple", nodeRecid)
				return false
			}
			expectedNodes[nodeRecid] = leafRecid
		}
		return true
	})
	if walkErr != nil {
		return walkErr
	}

	for _, qt := range [3]struct {
		q   QueueLong
		tag uint8
	}{{s.createQueue, queueTagCreate}, {s.updateQueue, queueTagUpdate}, {s.getQueue, queueTagGet}} {
		if qt.q == nil {
			continue
		}
		if vq, ok := qt.q.(VerifiableQueue); ok {
			if err := vq.Verify(); err != nil {
				return err
			}
		}
		if err := m.verifyQueueAgainst(s, qt.q, qt.tag, expectedNodes); err != nil {
			return err
		}
	}

	if len(expectedNodes) != 0 {
		return newCorruption(s.id, "%d queue node(s) referenced by leaf triples have no matching queue entry", len(expectedNodes))
	}
	return nil
}

// verifyQueueAgainst walks q and, for every node, checks it references a
// known leaf whose triple contains exactly that nodeRecid, then removes it
// from expected.
func (m *HMap) verifyQueueAgainst(s *segment, q QueueLong, tag uint8, expected map[uint64]uint64) error {
	var walkErr error
	q.ForEach(func(nodeRecid uint64, node QNode) bool {
		leafRecid, ok := expected[nodeRecid]
		if !ok {
			walkErr = newCorruption(s.id, "queue node %d has no corresponding leaf triple", nodeRecid)
			return false
		}
		if leafRecid != node.Value {
			walkErr = newCorruption(s.id, "queue node %d points to leaf %d, triple expected leaf %d", nodeRecid, node.Value, leafRecid)
			return false
		}
		leaf, err := s.loadLeaf(leafRecid)
		if err != nil {
			walkErr = err
			return false
		}
		found := false
		for i := range leaf.Triples {
			t := &leaf.Triples[i]
			if t.ExpireID != 0 && expireTag(t.ExpireID) == tag && expireNodeRecidFor(t.ExpireID) == nodeRecid {
				found = true
				break
			}
		}
		if !found {
			walkErr = newCorruption(s.id, "queue node %d has no matching triple in leaf %d", nodeRecid, leafRecid)
			return false
		}
		delete(expected, nodeRecid)
		return true
	})
	return walkErr
}
