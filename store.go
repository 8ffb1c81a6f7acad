package hmap

// Store maps 64-bit recids to opaque blobs. One instance per
// segment; instances may alias across segments. Implementations live
// outside this package (see the store/ subpackages) — HMap only ever
// calls through this interface.
type Store interface {
	Put(blob []byte) (recid uint64, err error)
	Get(recid uint64) (blob []byte, err error)
	Update(recid uint64, blob []byte) error
	// Preallocate reserves a recid whose contents are uninitialized until
	// the first Update. Required for the leaf<->queue cyclic reference
	// resolution.
	Preallocate() (recid uint64, err error)
	Delete(recid uint64) error
	IsClosed() bool
	// AssertThreadSafe errors when the store cannot serve concurrent
	// callers; checked once at construction when Config.IsThreadSafe.
	AssertThreadSafe() error
}

// SizedStore is an optional Store capability surfaced when size-based
// eviction (expireStoreSize) or compaction (expireCompactThreshold) is
// configured.
type SizedStore interface {
	Store
	FileTail() uint64
	GetFreeSize() uint64
	GetTotalSize() uint64
	Compact() error
}
