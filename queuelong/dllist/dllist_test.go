package dllist

import (
	"testing"

	"github.com/koykov/hmap"
)

func TestPutBumpRemove(t *testing.T) {
	l := New()

	r1, err := l.Put(100, 1)
	if err != nil {
		t.Fatal(err)
	}
	r2, err := l.Put(200, 2)
	if err != nil {
		t.Fatal(err)
	}

	if err = l.Bump(r1, 300); err != nil {
		t.Fatal(err)
	}

	node, err := l.Remove(r1, true)
	if err != nil {
		t.Fatal(err)
	}
	if node.Timestamp != 300 || node.Value != 1 {
		t.Fatalf("want bumped node {300,1}, got %+v", node)
	}

	node, err = l.Remove(r2, true)
	if err != nil || node.Value != 2 {
		t.Fatalf("want node value 2, got %+v (err %v)", node, err)
	}
	if !l.IsEmpty() {
		t.Fatal("want empty after removing every node")
	}
}

// TestPutNodeTransfersRecid is the queue-to-queue move protocol: a node
// freed with removeNode=false keeps its recid and re-enters a sibling list
// on the same arena.
func TestPutNodeTransfersRecid(t *testing.T) {
	a := NewArena()
	src := NewShared(a)
	dst := NewShared(a)

	recid, err := src.Put(10, 7)
	if err != nil {
		t.Fatal(err)
	}
	freed, err := src.Remove(recid, false)
	if err != nil {
		t.Fatal(err)
	}
	if err = dst.PutNode(recid, 20, freed.Value); err != nil {
		t.Fatal(err)
	}

	if !src.IsEmpty() {
		t.Fatal("want source list empty after the transfer")
	}
	var got hmap.QNode
	dst.ForEach(func(nodeRecid uint64, node hmap.QNode) bool {
		if nodeRecid == recid {
			got = node
		}
		return true
	})
	if got.Value != 7 || got.Timestamp != 20 {
		t.Fatalf("want transferred node {20,7} at recid %d, got %+v", recid, got)
	}
}

// TestSharedArenaKeepsRecidsUnique: sibling lists on one arena must never
// hand out the same recid twice.
func TestSharedArenaKeepsRecidsUnique(t *testing.T) {
	a := NewArena()
	l1 := NewShared(a)
	l2 := NewShared(a)

	seen := make(map[uint64]bool)
	for i := 0; i < 10; i++ {
		r1, err := l1.Put(int64(i), uint64(i))
		if err != nil {
			t.Fatal(err)
		}
		r2, err := l2.Put(int64(i), uint64(i))
		if err != nil {
			t.Fatal(err)
		}
		if seen[r1] || seen[r2] || r1 == r2 {
			t.Fatalf("recid reuse across sibling lists: %d, %d", r1, r2)
		}
		seen[r1], seen[r2] = true, true
	}
}

func TestPutNodeRejectsLinkedRecid(t *testing.T) {
	l := New()
	recid, err := l.Put(1, 1)
	if err != nil {
		t.Fatal(err)
	}
	if err = l.PutNode(recid, 2, 2); err != ErrNodeBusy {
		t.Fatalf("want ErrNodeBusy re-linking a live node, got %v", err)
	}
}

func TestTakeUntil(t *testing.T) {
	l := New()
	for i, ts := range []int64{10, 20, 30, 40} {
		if _, err := l.Put(ts, uint64(i)); err != nil {
			t.Fatal(err)
		}
	}

	var taken []int64
	err := l.TakeUntil(
		func(_ uint64, node hmap.QNode) bool { return node.Timestamp <= 20 },
		func(_ uint64, node hmap.QNode) { taken = append(taken, node.Timestamp) },
	)
	if err != nil {
		t.Fatal(err)
	}
	if len(taken) != 2 || taken[0] != 10 || taken[1] != 20 {
		t.Fatalf("want to take the 10,20 prefix, got %v", taken)
	}

	var remaining []int64
	l.ForEach(func(_ uint64, node hmap.QNode) bool {
		remaining = append(remaining, node.Timestamp)
		return true
	})
	if len(remaining) != 2 || remaining[0] != 30 || remaining[1] != 40 {
		t.Fatalf("want 30,40 left in the queue, got %v", remaining)
	}
}

func TestClearReleasesOnlyOwnNodes(t *testing.T) {
	a := NewArena()
	l1 := NewShared(a)
	l2 := NewShared(a)

	if _, err := l1.Put(1, 1); err != nil {
		t.Fatal(err)
	}
	r2, err := l2.Put(2, 2)
	if err != nil {
		t.Fatal(err)
	}

	if err = l1.Clear(); err != nil {
		t.Fatal(err)
	}
	if !l1.IsEmpty() {
		t.Fatal("want cleared list empty")
	}
	if err = l2.Bump(r2, 3); err != nil {
		t.Fatalf("sibling list's node must survive the clear, got %v", err)
	}
}

func TestVerify(t *testing.T) {
	l := New()
	r1, _ := l.Put(1, 1)
	_, _ = l.Put(2, 2)
	_, _ = l.Put(3, 3)
	_, _ = l.Remove(r1, true)
	if err := l.Verify(); err != nil {
		t.Fatalf("verify failed on a consistent list: %s", err)
	}
}
