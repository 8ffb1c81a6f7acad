package hmap

// QNode is one node of a QueueLong: an intrusive (timestamp, value) pair
// addressed by its own recid. value holds the owning leaf's recid.
type QNode struct {
	Value     uint64
	Timestamp int64
}

// QueueLong is an ordered intrusive linked list of QNode, addressed by
// node recid. Ordered by insertion, not by timestamp; TakeUntil
// walks that insertion order and stops at the first node its predicate
// rejects, consuming only the matching prefix.
type QueueLong interface {
	// Put appends a new node and returns its recid.
	Put(timestamp int64, value uint64) (nodeRecid uint64, err error)
	// PutNode re-inserts a node freed by Remove(removeNode=false) at the
	// tail, reusing its recid — the mandatory two-phase move used when an
	// entry's expireId changes queue.
	PutNode(nodeRecid uint64, timestamp int64, value uint64) error
	// Bump updates a node's timestamp in place without moving it.
	Bump(nodeRecid uint64, newTimestamp int64) error
	// Remove detaches a node. removeNode=false keeps the node recid alive
	// for a PutNode transfer; removeNode=true frees it.
	Remove(nodeRecid uint64, removeNode bool) (QNode, error)
	// TakeUntil walks the FIFO prefix, calling pred for each node; a node
	// is consumed (atomically unlinked, then take is invoked) while pred
	// returns true, and the walk stops at the first false.
	TakeUntil(pred func(nodeRecid uint64, node QNode) bool, take func(nodeRecid uint64, node QNode)) error
	Clear() error
	ForEach(fn func(nodeRecid uint64, node QNode) bool)
	IsEmpty() bool
}

// VerifiableQueue is implemented by queues that can self-check their
// internal linkage.
type VerifiableQueue interface {
	QueueLong
	Verify() error
}

// expireId packs a queue tag (low 2 bits) and a node recid (upper 62 bits).
func packExpireID(nodeRecid uint64, tag uint8) uint64 {
	return (nodeRecid << 2) | uint64(tag&0x3)
}

func expireTag(expireID uint64) uint8 {
	return uint8(expireID & 0x3)
}

// expireNodeRecidFor extracts the node recid a tagged expireId refers to.
func expireNodeRecidFor(expireID uint64) uint64 {
	return expireID >> 2
}
