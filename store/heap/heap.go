// Package heap is an in-memory hmap.Store/hmap.SizedStore implementation:
// blobs are packed into fixed-capacity arenas via github.com/koykov/cbyte's
// zero-copy header construction instead of being individually
// heap-allocated.
package heap

import (
	"errors"
	"reflect"
	"sync"

	"github.com/koykov/cbyte"

	"github.com/koykov/hmap"
)

// DefaultArenaCapacity is used when the capacity passed to New is zero.
const DefaultArenaCapacity = 1 << 20 // 1 MiB

// ErrBadRecid reports a recid that is out of range or already deleted.
var ErrBadRecid = errors.New("recid out of range or deleted")

// arena is one fixed-capacity byte region records are packed into. A blob
// bigger than the store's arena capacity gets an oversized arena of its own.
type arena struct {
	h   reflect.SliceHeader
	cap uint32
}

func allocArena(capacity uint32) *arena {
	a := &arena{cap: capacity}
	a.h = cbyte.InitHeader(0, int(capacity))
	return a
}

func (a *arena) rest() uint32 {
	return a.cap - uint32(a.h.Len)
}

func (a *arena) write(b []byte) (offset uint32) {
	offset = uint32(a.h.Len)
	a.h.Len += cbyte.Memcpy(uint64(a.h.Data), uint64(a.h.Len), b)
	return
}

func (a *arena) read(offset, length uint32) []byte {
	h := reflect.SliceHeader{Data: a.h.Data + uintptr(offset), Len: int(length), Cap: int(length)}
	return cbyte.Bytes(h)
}

func (a *arena) release() {
	cbyte.ReleaseHeader(a.h)
}

// record is one blob's location, addressed by recid-1 into Heap.records.
type record struct {
	arenaIdx uint32
	offset   uint32
	length   uint32
	freed    bool
	live     bool // false while preallocated but not yet written
}

// Heap is a recid-addressed blob store backed by a chain of arenas. Safe
// for concurrent use and for aliasing across map segments.
type Heap struct {
	mu sync.Mutex

	capacity uint32
	arenas   []*arena
	records  []record
	free     []uint64 // reusable recid slots (1-based)

	used  uint64
	total uint64
}

// New makes a Heap with the given per-arena capacity (DefaultArenaCapacity
// when 0).
func New(arenaCapacity uint32) *Heap {
	if arenaCapacity == 0 {
		arenaCapacity = DefaultArenaCapacity
	}
	return &Heap{capacity: arenaCapacity}
}

func (h *Heap) IsClosed() bool          { return false }
func (h *Heap) AssertThreadSafe() error { return nil }

func (h *Heap) Put(blob []byte) (uint64, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	recid := h.allocRecidLF()
	if err := h.writeLF(recid, blob); err != nil {
		return 0, err
	}
	return recid, nil
}

func (h *Heap) Preallocate() (uint64, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.allocRecidLF(), nil
}

func (h *Heap) Get(recid uint64) ([]byte, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	r, err := h.recordLF(recid)
	if err != nil {
		return nil, err
	}
	if !r.live {
		return nil, nil
	}
	out := make([]byte, r.length)
	copy(out, h.arenas[r.arenaIdx].read(r.offset, r.length))
	return out, nil
}

func (h *Heap) Update(recid uint64, blob []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, err := h.recordLF(recid); err != nil {
		return err
	}
	return h.writeLF(recid, blob)
}

func (h *Heap) Delete(recid uint64) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	r, err := h.recordLF(recid)
	if err != nil {
		return err
	}
	if r.live {
		h.used -= uint64(r.length)
	}
	r.freed = true
	r.live = false
	h.records[recid-1] = *r
	h.free = append(h.free, recid)
	return nil
}

func (h *Heap) FileTail() uint64     { h.mu.Lock(); defer h.mu.Unlock(); return h.total }
func (h *Heap) GetTotalSize() uint64 { h.mu.Lock(); defer h.mu.Unlock(); return h.total }
func (h *Heap) GetFreeSize() uint64  { h.mu.Lock(); defer h.mu.Unlock(); return h.total - h.used }

// Compact rebuilds the arenas containing only the live records: dead
// space is dropped, nothing is reordered beyond that.
func (h *Heap) Compact() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	oldArenas := h.arenas
	h.arenas = nil
	h.total = 0

	for i := range h.records {
		r := &h.records[i]
		if !r.live {
			continue
		}
		blob := make([]byte, r.length)
		copy(blob, oldArenas[r.arenaIdx].read(r.offset, r.length))
		l := h.appendLF(blob)
		r.arenaIdx = l.arenaIdx
		r.offset = l.offset
	}

	for _, a := range oldArenas {
		a.release()
	}
	return nil
}

type loc struct {
	arenaIdx uint32
	offset   uint32
}

func (h *Heap) appendLF(b []byte) loc {
	if len(h.arenas) == 0 || h.arenas[len(h.arenas)-1].rest() < uint32(len(b)) {
		capacity := h.capacity
		if uint32(len(b)) > capacity {
			capacity = uint32(len(b))
		}
		h.arenas = append(h.arenas, allocArena(capacity))
		h.total += uint64(capacity)
	}
	idx := uint32(len(h.arenas) - 1)
	off := h.arenas[idx].write(b)
	return loc{arenaIdx: idx, offset: off}
}

func (h *Heap) allocRecidLF() uint64 {
	if n := len(h.free); n > 0 {
		recid := h.free[n-1]
		h.free = h.free[:n-1]
		h.records[recid-1] = record{}
		return recid
	}
	h.records = append(h.records, record{})
	return uint64(len(h.records))
}

func (h *Heap) recordLF(recid uint64) (*record, error) {
	if recid == 0 || recid > uint64(len(h.records)) {
		return nil, ErrBadRecid
	}
	r := &h.records[recid-1]
	if r.freed {
		return nil, ErrBadRecid
	}
	return r, nil
}

func (h *Heap) writeLF(recid uint64, blob []byte) error {
	r := &h.records[recid-1]
	if r.live {
		h.used -= uint64(r.length)
	}
	l := h.appendLF(blob)
	r.arenaIdx = l.arenaIdx
	r.offset = l.offset
	r.length = uint32(len(blob))
	r.live = true
	h.used += uint64(len(blob))
	return nil
}

var _ hmap.SizedStore = (*Heap)(nil)
