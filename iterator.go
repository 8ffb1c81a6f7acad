package hmap

// Entry is one (key, value) pair yielded by iteration. Value is cached
// from the last yield/SetValue until SetValue is called again.
type Entry struct {
	m     *HMap
	key   interface{}
	value interface{}
}

func (e *Entry) Key() interface{}   { return e.key }
func (e *Entry) Value() interface{} { return e.value }

// SetValue writes e.value's key back with newValue and returns the value
// SetValue replaced, invalidating the cache to newValue on success.
func (e *Entry) SetValue(newValue interface{}) (interface{}, error) {
	old, err := e.m.Put(e.key, newValue)
	if err != nil {
		return nil, err
	}
	e.value = newValue
	return old, nil
}

// View is the base for the live Entries/Keys/Values collections: each
// delegates every read back to the map rather than caching.
type View struct{ m *HMap }

// Entries returns a live view over the map's entries.
func (m *HMap) Entries() *View { return &View{m: m} }

// Keys returns a live view over the map's keys.
func (m *HMap) Keys() *View { return &View{m: m} }

// Values returns a live view over the map's values.
func (m *HMap) Values() *View { return &View{m: m} }

// Iterator returns a fresh cursor over v's owning map.
func (v *View) Iterator() *Iterator {
	return &Iterator{m: v.m}
}

// ForEach walks every entry via Iterator, stopping early if fn returns
// false.
func (v *View) ForEach(fn func(key, value interface{}) bool) error {
	it := v.Iterator()
	for it.Next() {
		if !fn(it.Key(), it.Value()) {
			return it.err
		}
	}
	return it.err
}

// Contains reports whether key currently maps to a value equal to value
// per Config.ValueHasher.
func (v *View) Contains(key, value interface{}) (bool, error) {
	cur, err := v.m.Get(key)
	if err != nil {
		return false, err
	}
	if cur == nil {
		return false, nil
	}
	return v.m.config.ValueHasher.Equals(cur, value), nil
}

// ContainsValue is values.contains(v): allowed to be linear.
func (v *View) ContainsValue(value interface{}) (bool, error) {
	found := false
	err := v.ForEach(func(_, val interface{}) bool {
		if v.m.config.ValueHasher.Equals(val, value) {
			found = true
			return false
		}
		return true
	})
	return found, err
}

// HashCode is the structural hash of the whole map: the sum of every
// per-entry hash, where a per-entry hash is
// keyHasher.HashCode(k, seed) XOR valueHasher.HashCode(v, seed).
func (v *View) HashCode(seed uint32) (uint32, error) {
	var sum uint32
	err := v.ForEach(func(k, val interface{}) bool {
		sum += v.m.config.KeyHasher.HashCode(k, seed) ^ v.m.config.ValueHasher.HashCode(val, seed)
		return true
	})
	return sum, err
}

// Equals compares this map to other as maps: same size and, for every key
// in this map, an equal value (via Config.ValueHasher equality) in other.
func (v *View) Equals(other *HMap) (bool, error) {
	n1, err := v.m.size64()
	if err != nil {
		return false, err
	}
	n2, err := other.size64()
	if err != nil {
		return false, err
	}
	if n1 != n2 {
		return false, nil
	}
	ok := true
	err = v.ForEach(func(k, val interface{}) bool {
		otherVal, gerr := other.Get(k)
		if gerr != nil {
			return false
		}
		if otherVal == nil || !v.m.config.ValueHasher.Equals(val, otherVal) {
			ok = false
			return false
		}
		return true
	})
	if err != nil {
		return false, err
	}
	return ok, nil
}

// Iterator walks every segment in order; per segment it snapshots one leaf
// at a time under that segment's read lock, re-acquired for each leaf.
// It is not safe for concurrent use by multiple goroutines.
type Iterator struct {
	m *HMap

	segIdx int

	leafKeys []uint64 // remaining index-tree keys for the current segment
	leafPos  int

	triples []Triple
	triPos  int

	cur      Entry
	lastKey  interface{}
	haveLast bool
	err      error
}

// Next advances the iterator, returning false at the end or on error (call
// Err to distinguish the two).
func (it *Iterator) Next() bool {
	if it.err != nil {
		return false
	}
	for {
		if it.triPos < len(it.triples) {
			t := it.triples[it.triPos]
			it.triPos++
			s := it.m.segments[it.segIdx]
			s.lock.RLock()
			v, err := it.m.unwrapValue(s, t.Wrapped)
			s.lock.RUnlock()
			if err != nil {
				it.err = err
				return false
			}
			it.cur = Entry{m: it.m, key: t.Key, value: v}
			it.lastKey = t.Key
			it.haveLast = true
			return true
		}
		if !it.advanceLeaf() {
			return false
		}
	}
}

// advanceLeaf loads the next non-empty leaf's triples into it.triples,
// pulling in the next segment's key list when the current one is
// exhausted. Returns false when iteration is finished or errored.
func (it *Iterator) advanceLeaf() bool {
	for {
		if it.leafKeys != nil && it.leafPos >= len(it.leafKeys) {
			it.segIdx++
			it.leafKeys = nil
		}
		if it.leafKeys == nil {
			if !it.advanceSegment() {
				return false
			}
			continue
		}
		leafRecid := it.leafKeys[it.leafPos]
		it.leafPos++
		s := it.m.segments[it.segIdx]
		s.lock.RLock()
		leaf, err := s.loadLeaf(leafRecid)
		s.lock.RUnlock()
		if err != nil {
			it.err = err
			return false
		}
		if len(leaf.Triples) == 0 {
			continue
		}
		it.triples = leaf.Triples
		it.triPos = 0
		return true
	}
}

func (it *Iterator) advanceSegment() bool {
	for it.segIdx < len(it.m.segments) {
		s := it.m.segments[it.segIdx]
		var keys []uint64
		s.lock.RLock()
		s.index.ForEachKeyValue(func(_, recid uint64) bool {
			keys = append(keys, recid)
			return true
		})
		s.lock.RUnlock()
		it.leafKeys = keys
		it.leafPos = 0
		if len(keys) > 0 {
			return true
		}
		it.segIdx++
	}
	return false
}

func (it *Iterator) Key() interface{}   { return it.cur.key }
func (it *Iterator) Value() interface{} { return it.cur.value }
func (it *Iterator) Entry() *Entry      { return &it.cur }
func (it *Iterator) Err() error         { return it.err }

// Remove deletes the last-yielded key via RemoveBoolean.
func (it *Iterator) Remove() error {
	if !it.haveLast {
		return ErrIteratorNoNext
	}
	_, err := it.m.RemoveBoolean(it.lastKey)
	return err
}
