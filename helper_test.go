package hmap_test

import (
	"testing"

	"github.com/koykov/clock"

	"github.com/koykov/hmap"
	"github.com/koykov/hmap/hasher/fnv"
	"github.com/koykov/hmap/indextree/sparse"
	"github.com/koykov/hmap/store/heap"
)

// newTestClock returns a jumpable clock: tests fire TTL expiry
// deterministically by jumping it instead of sleeping real wall-clock time.
func newTestClock() hmap.Clock { return clock.NewClock() }

// listenerFunc aliases hmap.ListenerFunc for brevity in test wiring.
type listenerFunc = hmap.ListenerFunc

// newTestConfig builds a ready-to-validate Config over an in-memory heap
// store, sparse index tree and fnv key/value hasher, sized to segs segments.
func newTestConfig(segs uint32, dirShift, levels uint32) *hmap.Config {
	stores := make([]hmap.Store, segs)
	trees := make([]hmap.IndexTree, segs)
	counters := make([]hmap.Counter, segs)
	for i := uint32(0); i < segs; i++ {
		stores[i] = heap.New(0)
		trees[i] = sparse.New(dirShift, levels)
		counters[i] = hmap.NewAtomicCounter()
	}
	h := fnv.New(hmap.StringSerializer{})
	concShift := uint32(0)
	for n := segs; n > 1; n >>= 1 {
		concShift++
	}
	return &hmap.Config{
		ConcShift:       concShift,
		DirShift:        dirShift,
		Levels:          levels,
		ValueInline:     true,
		HasValues:       true,
		KeyHasher:       h,
		ValueHasher:     h,
		KeySerializer:   hmap.StringSerializer{},
		ValueSerializer: hmap.StringSerializer{},
		Stores:          stores,
		IndexTrees:      trees,
		Counters:        counters,
		IsThreadSafe:    true,
	}
}

func mustMap(t testing.TB, conf *hmap.Config) *hmap.HMap {
	t.Helper()
	m, err := hmap.NewHMap(conf)
	if err != nil {
		t.Fatalf("NewHMap failed: %s", err)
	}
	return m
}
