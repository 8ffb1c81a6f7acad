package heap

import "testing"

func TestPutGetUpdateDelete(t *testing.T) {
	h := New(0)

	recid, err := h.Put([]byte("hello"))
	if err != nil {
		t.Fatal(err)
	}
	b, err := h.Get(recid)
	if err != nil || string(b) != "hello" {
		t.Fatalf("want hello, got %q (err %v)", b, err)
	}

	if err = h.Update(recid, []byte("world!!")); err != nil {
		t.Fatal(err)
	}
	b, err = h.Get(recid)
	if err != nil || string(b) != "world!!" {
		t.Fatalf("want world!!, got %q (err %v)", b, err)
	}

	if err = h.Delete(recid); err != nil {
		t.Fatal(err)
	}
	if h.GetFreeSize() != h.GetTotalSize() {
		t.Fatalf("want all space free after delete, free=%d total=%d", h.GetFreeSize(), h.GetTotalSize())
	}
}

func TestPreallocateThenUpdate(t *testing.T) {
	h := New(0)

	recid, err := h.Preallocate()
	if err != nil {
		t.Fatal(err)
	}
	b, err := h.Get(recid)
	if err != nil || b != nil {
		t.Fatalf("want nil blob for a preallocated, unwritten recid, got %q (err %v)", b, err)
	}
	if err = h.Update(recid, []byte("now written")); err != nil {
		t.Fatal(err)
	}
	b, err = h.Get(recid)
	if err != nil || string(b) != "now written" {
		t.Fatalf("want now written, got %q (err %v)", b, err)
	}
}

func TestCompactReclaimsDeadSpace(t *testing.T) {
	h := New(64)

	var recids []uint64
	for i := 0; i < 8; i++ {
		recid, err := h.Put([]byte("0123456789"))
		if err != nil {
			t.Fatal(err)
		}
		recids = append(recids, recid)
	}
	for i := 0; i < 6; i++ {
		if err := h.Delete(recids[i]); err != nil {
			t.Fatal(err)
		}
	}
	if err := h.Compact(); err != nil {
		t.Fatal(err)
	}
	for _, recid := range recids[6:] {
		b, err := h.Get(recid)
		if err != nil || string(b) != "0123456789" {
			t.Fatalf("want surviving record intact after compact, got %q (err %v)", b, err)
		}
	}
}
