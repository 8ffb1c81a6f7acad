// Package dllist is a hmap.QueueLong implementation: an intrusive doubly
// linked list of nodes addressed by recid, chained through plain slice
// indices — recid 0 means absent.
//
// Node recids are allocated by an Arena. Lists that exchange nodes (the
// create/update/get queues of one map segment, whose entries move between
// queues on update/access) must share one Arena so a recid stays unique
// across all of them.
package dllist

import (
	"errors"
	"fmt"
	"sync"

	"github.com/koykov/hmap"
)

var (
	ErrBadNode  = errors.New("node recid out of range or not reserved")
	ErrNodeBusy = errors.New("node recid already linked to a list")
)

type node struct {
	value     uint64
	timestamp int64
	prev      uint64
	next      uint64
	used      bool // recid reserved
	linked    bool // currently chained into some list
}

// Arena allocates node recids for every List attached to it. One Arena per
// map segment keeps recids unique across that segment's queues, which the
// transfer protocol (Remove(removeNode=false) then PutNode on another list)
// relies on.
type Arena struct {
	mu    sync.Mutex
	nodes []node
	free  []uint64
}

func NewArena() *Arena { return &Arena{} }

func (a *Arena) allocLF() uint64 {
	if k := len(a.free); k > 0 {
		recid := a.free[k-1]
		a.free = a.free[:k-1]
		a.nodes[recid-1] = node{}
		return recid
	}
	a.nodes = append(a.nodes, node{})
	return uint64(len(a.nodes))
}

func (a *Arena) releaseLF(recid uint64) {
	a.nodes[recid-1] = node{}
	a.free = append(a.free, recid)
}

func (a *Arena) liveLF(recid uint64) (*node, error) {
	if recid == 0 || recid > uint64(len(a.nodes)) || !a.nodes[recid-1].used {
		return nil, ErrBadNode
	}
	return &a.nodes[recid-1], nil
}

// List is a concurrency-safe hmap.VerifiableQueue over an Arena.
type List struct {
	a    *Arena
	head uint64 // oldest, FIFO front
	tail uint64 // newest
	n    int
}

// New makes a List over its own private Arena. Suitable when the list never
// exchanges nodes with another one.
func New() *List { return &List{a: NewArena()} }

// NewShared makes a List over a caller-supplied Arena shared with its
// sibling queues.
func NewShared(a *Arena) *List { return &List{a: a} }

func (l *List) Put(timestamp int64, value uint64) (uint64, error) {
	l.a.mu.Lock()
	defer l.a.mu.Unlock()
	recid := l.a.allocLF()
	l.linkTailLF(recid, timestamp, value)
	return recid, nil
}

func (l *List) PutNode(nodeRecid uint64, timestamp int64, value uint64) error {
	l.a.mu.Lock()
	defer l.a.mu.Unlock()
	if nodeRecid == 0 || nodeRecid > uint64(len(l.a.nodes)) || !l.a.nodes[nodeRecid-1].used {
		return ErrBadNode
	}
	if l.a.nodes[nodeRecid-1].linked {
		return ErrNodeBusy
	}
	l.linkTailLF(nodeRecid, timestamp, value)
	return nil
}

func (l *List) Bump(nodeRecid uint64, newTimestamp int64) error {
	l.a.mu.Lock()
	defer l.a.mu.Unlock()
	nd, err := l.a.liveLF(nodeRecid)
	if err != nil {
		return err
	}
	if !nd.linked {
		return ErrBadNode
	}
	nd.timestamp = newTimestamp
	return nil
}

func (l *List) Remove(nodeRecid uint64, removeNode bool) (hmap.QNode, error) {
	l.a.mu.Lock()
	defer l.a.mu.Unlock()
	nd, err := l.a.liveLF(nodeRecid)
	if err != nil {
		return hmap.QNode{}, err
	}
	if !nd.linked {
		return hmap.QNode{}, ErrBadNode
	}
	out := hmap.QNode{Value: nd.value, Timestamp: nd.timestamp}
	l.unlinkLF(nodeRecid)
	if removeNode {
		l.a.releaseLF(nodeRecid)
	}
	return out, nil
}

func (l *List) TakeUntil(pred func(uint64, hmap.QNode) bool, take func(uint64, hmap.QNode)) error {
	l.a.mu.Lock()
	for {
		recid := l.head
		if recid == 0 {
			break
		}
		nd := l.a.nodes[recid-1]
		qn := hmap.QNode{Value: nd.value, Timestamp: nd.timestamp}
		if !pred(recid, qn) {
			break
		}
		l.unlinkLF(recid)
		l.a.releaseLF(recid)
		l.a.mu.Unlock()
		take(recid, qn)
		l.a.mu.Lock()
	}
	l.a.mu.Unlock()
	return nil
}

// Clear releases every node chained into this list. Nodes belonging to
// sibling lists on the same Arena are untouched.
func (l *List) Clear() error {
	l.a.mu.Lock()
	defer l.a.mu.Unlock()
	for recid := l.head; recid != 0; {
		next := l.a.nodes[recid-1].next
		l.a.releaseLF(recid)
		recid = next
	}
	l.head, l.tail, l.n = 0, 0, 0
	return nil
}

func (l *List) ForEach(fn func(uint64, hmap.QNode) bool) {
	l.a.mu.Lock()
	defer l.a.mu.Unlock()
	for recid := l.head; recid != 0; {
		nd := l.a.nodes[recid-1]
		if !fn(recid, hmap.QNode{Value: nd.value, Timestamp: nd.timestamp}) {
			return
		}
		recid = nd.next
	}
}

func (l *List) IsEmpty() bool {
	l.a.mu.Lock()
	defer l.a.mu.Unlock()
	return l.n == 0
}

// Verify walks the list forward, checking the traversal length matches the
// tracked count and that every prev/next link is reciprocal.
func (l *List) Verify() error {
	l.a.mu.Lock()
	defer l.a.mu.Unlock()
	var fwd int
	for recid := l.head; recid != 0; {
		nd := l.a.nodes[recid-1]
		if !nd.used || !nd.linked {
			return fmt.Errorf("dllist: dead node %d chained into the list", recid)
		}
		if nd.next != 0 && l.a.nodes[nd.next-1].prev != recid {
			return fmt.Errorf("dllist: broken link at node %d", recid)
		}
		fwd++
		recid = nd.next
	}
	if fwd != l.n {
		return fmt.Errorf("dllist: length mismatch: counted %d, tracked %d", fwd, l.n)
	}
	return nil
}

func (l *List) linkTailLF(recid uint64, timestamp int64, value uint64) {
	nd := node{value: value, timestamp: timestamp, used: true, linked: true}
	if l.tail != 0 {
		l.a.nodes[l.tail-1].next = recid
		nd.prev = l.tail
	} else {
		l.head = recid
	}
	l.tail = recid
	l.a.nodes[recid-1] = nd
	l.n++
}

func (l *List) unlinkLF(recid uint64) {
	nd := &l.a.nodes[recid-1]
	if nd.prev != 0 {
		l.a.nodes[nd.prev-1].next = nd.next
	} else {
		l.head = nd.next
	}
	if nd.next != 0 {
		l.a.nodes[nd.next-1].prev = nd.prev
	} else {
		l.tail = nd.prev
	}
	nd.prev, nd.next = 0, 0
	nd.linked = false
	l.n--
}

var _ hmap.VerifiableQueue = (*List)(nil)
