// Package hmap implements a concurrent, segmented, persistable hash map.
//
// Entries are located by a caller-supplied hash function through a sparse
// index tree that maps integer indices to opaque recids in a pluggable
// storage backend (Store). Values may be inlined into the leaf record or
// stored in their own record. The map optionally enforces TTL expiration on
// create/update/access, plus max-entry and max-store-size caps, using
// per-segment doubly-linked expiration queues (QueueLong).
package hmap
