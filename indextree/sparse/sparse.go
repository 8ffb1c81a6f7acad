// Package sparse is a hmap.IndexTree implementation: a sparse multi-level
// directory trie keyed the same way the root package's geometry addresses
// buckets (DirShift-wide digits, Levels deep). Unlike a flat map, pages are
// only allocated along paths actually written, which keeps memory
// proportional to occupancy rather than to the addressable index space.
package sparse

import (
	"fmt"
	"sync"
)

// page is one directory level; children are born lazily.
type page struct {
	kids  []*page
	recid []uint64
}

func newPage(width uint32) *page {
	return &page{kids: make([]*page, width), recid: make([]uint64, width)}
}

// Tree is a concurrency-safe hmap.IndexTree/hmap.VerifiableIndexTree.
type Tree struct {
	mu       sync.RWMutex
	dirShift uint32
	levels   uint32
	width    uint32
	root     *page
	count    int64
}

// New builds a Tree addressing indices with `levels` digits of `dirShift`
// bits each (so it accepts any index in [0, 2^(dirShift*levels))).
func New(dirShift, levels uint32) *Tree {
	if dirShift == 0 {
		dirShift = 1
	}
	if levels == 0 {
		levels = 1
	}
	return &Tree{
		dirShift: dirShift,
		levels:   levels,
		width:    uint32(1) << dirShift,
	}
}

func (t *Tree) digit(index uint64, level uint32) uint32 {
	shift := t.dirShift * (t.levels - 1 - level)
	return uint32(index>>shift) & (t.width - 1)
}

func (t *Tree) Get(index uint64) uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	p := t.root
	if p == nil {
		return 0
	}
	for lvl := uint32(0); lvl < t.levels-1; lvl++ {
		p = p.kids[t.digit(index, lvl)]
		if p == nil {
			return 0
		}
	}
	return p.recid[t.digit(index, t.levels-1)]
}

func (t *Tree) Put(index uint64, recid uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.root == nil {
		t.root = newPage(t.width)
	}
	p := t.root
	for lvl := uint32(0); lvl < t.levels-1; lvl++ {
		d := t.digit(index, lvl)
		if p.kids[d] == nil {
			p.kids[d] = newPage(t.width)
		}
		p = p.kids[d]
	}
	d := t.digit(index, t.levels-1)
	if p.recid[d] == 0 && recid != 0 {
		t.count++
	} else if p.recid[d] != 0 && recid == 0 {
		t.count--
	}
	p.recid[d] = recid
}

func (t *Tree) RemoveKey(index uint64) {
	t.Put(index, 0)
}

func (t *Tree) IsEmpty() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.count == 0
}

// ForEachKeyValue walks every populated leaf slot in digit order. fn
// returning false stops the walk early.
func (t *Tree) ForEachKeyValue(fn func(index, recid uint64) bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.root == nil {
		return
	}
	t.walk(t.root, 0, 0, fn)
}

func (t *Tree) walk(p *page, level uint32, prefix uint64, fn func(uint64, uint64) bool) bool {
	shift := t.dirShift * (t.levels - 1 - level)
	if level == t.levels-1 {
		for d, recid := range p.recid {
			if recid == 0 {
				continue
			}
			index := prefix | (uint64(d) << shift)
			if !fn(index, recid) {
				return false
			}
		}
		return true
	}
	for d, kid := range p.kids {
		if kid == nil {
			continue
		}
		if !t.walk(kid, level+1, prefix|(uint64(d)<<shift), fn) {
			return false
		}
	}
	return true
}

// Verify walks the trie checking the cached population count matches the
// number of non-zero leaf slots actually present.
func (t *Tree) Verify() error {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var n int64
	if t.root != nil {
		t.walk(t.root, 0, 0, func(uint64, uint64) bool {
			n++
			return true
		})
	}
	if n != t.count {
		return &CorruptionError{Want: t.count, Got: n}
	}
	return nil
}

// CorruptionError reports a population-count mismatch found by Verify.
type CorruptionError struct {
	Want, Got int64
}

func (e *CorruptionError) Error() string {
	return fmt.Sprintf("sparse: population count mismatch: want %d, got %d", e.Want, e.Got)
}
