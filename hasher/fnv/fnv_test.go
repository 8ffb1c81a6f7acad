package fnv

import (
	"testing"

	"github.com/koykov/hmap"
)

func TestHashCodeStableAndSeedSensitive(t *testing.T) {
	h := New(hmap.StringSerializer{})

	a := h.HashCode("hello", 0)
	b := h.HashCode("hello", 0)
	if a != b {
		t.Fatalf("hashing the same key twice with the same seed must agree: %d != %d", a, b)
	}
	c := h.HashCode("hello", 42)
	if a == c {
		t.Fatal("different seeds should (almost always) fold to a different hash")
	}
}

func TestEquals(t *testing.T) {
	h := New(hmap.StringSerializer{})
	if !h.Equals("foo", "foo") {
		t.Fatal("want equal strings to compare equal")
	}
	if h.Equals("foo", "bar") {
		t.Fatal("want different strings to compare unequal")
	}
}
