package hmap

import (
	"encoding/binary"

	"github.com/koykov/bytealg"
	"github.com/koykov/cbytebuf"
)

// Triple is one (key, wrappedValue, expireId) slot inside a Leaf.
// Wrapped holds the value itself when valueInline is set, a uint64 recid
// into the segment's store otherwise, or Present for a keyset.
type Triple struct {
	Key      interface{}
	Wrapped  interface{}
	ExpireID uint64
}

// Leaf holds every triple colliding on one (segment, index) bucket. An
// empty leaf never persists: the last triple's removal deletes the record.
type Leaf struct {
	Triples []Triple
}

func (l *Leaf) indexOf(hasher KeyHasher, key interface{}) int {
	for i := range l.Triples {
		if hasher.Equals(l.Triples[i].Key, key) {
			return i
		}
	}
	return -1
}

func (l *Leaf) removeAt(i int) {
	l.Triples = append(l.Triples[:i], l.Triples[i+1:]...)
}

// leafCodec (de)serializes leaves to the wire format selected by
// valueInline/hasValues, reusing one cbytebuf.CByteBuf across Encode calls.
type leafCodec struct {
	keySer   Serializer
	valueSer Serializer
	inline   bool
	hasValue bool
	trusted  bool
	buf      *cbytebuf.CByteBuf
}

func newLeafCodec(keySer, valueSer Serializer, inline, hasValue bool) *leafCodec {
	trusted := keySer.IsTrusted()
	if trusted && inline && hasValue {
		trusted = valueSer.IsTrusted()
	}
	return &leafCodec{
		keySer:   keySer,
		valueSer: valueSer,
		inline:   inline,
		hasValue: hasValue,
		trusted:  trusted,
		buf:      cbytebuf.NewCByteBuf(),
	}
}

// chunkBytes hands a decoded chunk to an untrusted serializer on a private
// copy, so nothing it retains aliases the store's buffer.
func (c *leafCodec) chunkBytes(b []byte) []byte {
	if c.trusted {
		return b
	}
	cp := make([]byte, len(b))
	copy(cp, b)
	return cp
}

func writeChunk(buf *cbytebuf.CByteBuf, b []byte) error {
	var hdr [4]byte
	binary.LittleEndian.PutUint32(hdr[:], uint32(len(b)))
	if _, err := buf.Write(hdr[:]); err != nil {
		return err
	}
	if len(b) > 0 {
		if _, err := buf.Write(b); err != nil {
			return err
		}
	}
	return nil
}

func readChunk(b []byte) (chunk, rest []byte, err error) {
	if len(b) < 4 {
		return nil, nil, newCorruption(0, "leaf record truncated chunk header")
	}
	n := binary.LittleEndian.Uint32(b[:4])
	b = b[4:]
	if uint32(len(b)) < n {
		return nil, nil, newCorruption(0, "leaf record truncated chunk body")
	}
	return b[:n], b[n:], nil
}

func (c *leafCodec) Encode(leaf *Leaf) ([]byte, error) {
	c.buf.ResetLen()
	var szHdr [4]byte
	binary.LittleEndian.PutUint32(szHdr[:], uint32(len(leaf.Triples)))
	if _, err := c.buf.Write(szHdr[:]); err != nil {
		return nil, err
	}
	for i := range leaf.Triples {
		t := &leaf.Triples[i]
		kb, err := c.keySer.Serialize(t.Key)
		if err != nil {
			return nil, err
		}
		if err = writeChunk(c.buf, kb); err != nil {
			return nil, err
		}
		if c.hasValue {
			if c.inline {
				vb, err := c.valueSer.Serialize(t.Wrapped)
				if err != nil {
					return nil, err
				}
				if err = writeChunk(c.buf, vb); err != nil {
					return nil, err
				}
			} else {
				var rb [8]byte
				binary.LittleEndian.PutUint64(rb[:], t.Wrapped.(uint64))
				if _, err = c.buf.Write(rb[:]); err != nil {
					return nil, err
				}
			}
		}
		var eb [8]byte
		binary.LittleEndian.PutUint64(eb[:], t.ExpireID)
		if _, err = c.buf.Write(eb[:]); err != nil {
			return nil, err
		}
	}
	out := bytealg.GrowDelta(nil, len(c.buf.Bytes()))
	copy(out, c.buf.Bytes())
	return out, nil
}

func (c *leafCodec) Decode(b []byte) (*Leaf, error) {
	if len(b) < 4 {
		return nil, newCorruption(0, "leaf record too short")
	}
	n := binary.LittleEndian.Uint32(b[:4])
	b = b[4:]
	leaf := &Leaf{Triples: make([]Triple, 0, n)}
	for i := uint32(0); i < n; i++ {
		kb, rest, err := readChunk(b)
		if err != nil {
			return nil, err
		}
		b = rest
		key, err := c.keySer.Deserialize(c.chunkBytes(kb))
		if err != nil {
			return nil, err
		}
		var wrapped interface{}
		if c.hasValue {
			if c.inline {
				vb, rest2, err := readChunk(b)
				if err != nil {
					return nil, err
				}
				b = rest2
				wrapped, err = c.valueSer.Deserialize(c.chunkBytes(vb))
				if err != nil {
					return nil, err
				}
			} else {
				if len(b) < 8 {
					return nil, newCorruption(0, "leaf record truncated value recid")
				}
				wrapped = binary.LittleEndian.Uint64(b[:8])
				b = b[8:]
			}
		} else {
			wrapped = Present
		}
		if len(b) < 8 {
			return nil, newCorruption(0, "leaf record truncated expireId")
		}
		expireID := binary.LittleEndian.Uint64(b[:8])
		b = b[8:]
		leaf.Triples = append(leaf.Triples, Triple{Key: key, Wrapped: wrapped, ExpireID: expireID})
	}
	return leaf, nil
}
