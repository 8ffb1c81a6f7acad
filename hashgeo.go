package hmap

// geometry precomputes the masks hashToIndex/hashToSegment need from
// Config.DirShift/Levels/ConcShift.
type geometry struct {
	l         uint32 // L = levels * dirShift
	indexMask uint64
	concMask  uint32
	concShift uint32
}

func newGeometry(c *Config) geometry {
	g := geometry{
		l:         c.Levels * c.DirShift,
		concShift: c.ConcShift,
	}
	if g.l >= 64 {
		g.indexMask = ^uint64(0)
	} else {
		g.indexMask = (uint64(1) << g.l) - 1
	}
	if c.ConcShift >= 32 {
		g.concMask = ^uint32(0)
	} else {
		g.concMask = (uint32(1) << c.ConcShift) - 1
	}
	return g
}

func (g geometry) hashToIndex(h uint32) uint64 {
	return uint64(h) & g.indexMask
}

func (g geometry) hashToSegment(h uint32) uint32 {
	return (h >> g.l) & g.concMask
}

// geometryOverflows reports whether the addressable key space exceeds the
// range a 32-bit hash can route to without collapsing distinct buckets.
func geometryOverflows(segments uint32, dirShift, levels uint32) bool {
	total := uint64(segments)
	perSeg := uint64(1)
	if dirShift > 0 && levels > 0 {
		for i := uint32(0); i < levels; i++ {
			perSeg *= uint64(1) << dirShift
		}
	}
	total *= perSeg
	return total > (uint64(1)<<31)+1000
}

func warnGeometry(log Logger, segments, dirShift, levels uint32) {
	if geometryOverflows(segments, dirShift, levels) {
		log.Printf("hmap: segmentCount*(1<<dirShift)^levels exceeds 2^31+1000, hash routing may collapse distinct buckets")
	}
}

// assertRouting re-derives key's segment/index and panics on a mismatch.
// Compiled to a no-op unless the hmap_paranoid build tag is set.
func (m *HMap) assertRouting(segID uint32, index uint64, key interface{}) {
	if !paranoiaEnabled {
		return
	}
	h := routingHash(m.config.KeyHasher, key)
	if m.geo.hashToSegment(h) != segID || m.geo.hashToIndex(h) != index {
		panic(newCorruption(segID, "key routed to segment %d index %d, operated on at index %d",
			m.geo.hashToSegment(h), m.geo.hashToIndex(h), index))
	}
}

// checkHashStability clones key through the key serializer and asserts the
// routing hash survives the round-trip. Best-effort, non
// thread-safe, harmless to run more than once (Open Questions).
func checkHashStability(hasher KeyHasher, ser Serializer, key interface{}) error {
	b, err := ser.Serialize(key)
	if err != nil {
		return err
	}
	clone, err := ser.Deserialize(b)
	if err != nil {
		return err
	}
	if routingHash(hasher, key) != routingHash(hasher, clone) {
		return ErrHashUnstable
	}
	return nil
}
