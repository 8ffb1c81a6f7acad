package sparse

import "testing"

func TestGetPutRemove(t *testing.T) {
	tr := New(4, 2) // indices in [0, 256)

	if tr.Get(10) != 0 {
		t.Fatal("want 0 for an absent index")
	}
	tr.Put(10, 100)
	if got := tr.Get(10); got != 100 {
		t.Fatalf("want 100, got %d", got)
	}
	if tr.IsEmpty() {
		t.Fatal("want not empty after a put")
	}

	tr.RemoveKey(10)
	if tr.Get(10) != 0 {
		t.Fatal("want 0 after removeKey")
	}
	if !tr.IsEmpty() {
		t.Fatal("want empty after removing the only entry")
	}
}

func TestForEachKeyValue(t *testing.T) {
	tr := New(4, 2)
	want := map[uint64]uint64{1: 10, 2: 20, 255: 250}
	for k, v := range want {
		tr.Put(k, v)
	}

	got := make(map[uint64]uint64)
	tr.ForEachKeyValue(func(index, recid uint64) bool {
		got[index] = recid
		return true
	})
	if len(got) != len(want) {
		t.Fatalf("want %d entries, got %d", len(want), len(got))
	}
	for k, v := range want {
		if got[k] != v {
			t.Fatalf("index %d: want %d, got %d", k, v, got[k])
		}
	}
}

func TestVerify(t *testing.T) {
	tr := New(4, 2)
	tr.Put(1, 10)
	tr.Put(2, 20)
	if err := tr.Verify(); err != nil {
		t.Fatalf("verify failed on a consistent tree: %s", err)
	}
}
