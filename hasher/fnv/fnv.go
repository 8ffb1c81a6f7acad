// Package fnv is a default hmap.KeyHasher/hmap.ValueHasher pair for keys
// and values whose wire form is produced by a hmap.Serializer: it hashes
// the serialized bytes with hash/fnv's 32-bit variant, salted with the
// caller's seed.
package fnv

import (
	"hash/fnv"
	"reflect"

	"github.com/koykov/hmap"
)

// Hasher hashes through a hmap.Serializer and compares via reflect.DeepEqual.
// Suitable as both KeyHasher and ValueHasher.
type Hasher struct {
	ser hmap.Serializer
}

func New(ser hmap.Serializer) *Hasher { return &Hasher{ser: ser} }

func (h *Hasher) HashCode(v interface{}, seed uint32) uint32 {
	b, err := h.ser.Serialize(v)
	if err != nil {
		return seed
	}
	f := fnv.New32a()
	if seed != 0 {
		var s [4]byte
		s[0], s[1], s[2], s[3] = byte(seed), byte(seed>>8), byte(seed>>16), byte(seed>>24)
		_, _ = f.Write(s[:])
	}
	_, _ = f.Write(b)
	return f.Sum32()
}

func (h *Hasher) Equals(a, b interface{}) bool {
	return reflect.DeepEqual(a, b)
}

var (
	_ hmap.KeyHasher   = (*Hasher)(nil)
	_ hmap.ValueHasher = (*Hasher)(nil)
)
