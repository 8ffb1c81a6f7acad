package hmap

import "github.com/koykov/fastconv"

// Serializer converts between an application value and its wire form. A
// Serializer is "trusted" when it is known not to execute attacker-influenced
// code during Deserialize; the leaf codec uses this to decide whether extra
// defensive copies are needed.
type Serializer interface {
	Serialize(v interface{}) ([]byte, error)
	Deserialize(b []byte) (interface{}, error)
	IsTrusted() bool
}

// presentMarker is the type of Present, the literal marker value a keyset
// returns for every present key.
type presentMarker struct{}

// Present is the sentinel value KeySet map operations return/accept in
// place of a real value.
var Present interface{} = presentMarker{}

// keySetValueSerializer is the sentinel value serializer required when
// hasValues is false: it writes nothing and always deserializes to Present.
type keySetValueSerializer struct{}

func (keySetValueSerializer) Serialize(interface{}) ([]byte, error)   { return nil, nil }
func (keySetValueSerializer) Deserialize([]byte) (interface{}, error) { return Present, nil }
func (keySetValueSerializer) IsTrusted() bool                         { return true }

// presentHasher is the keyset ValueHasher fallback: every value slot holds
// the same Present marker.
type presentHasher struct{}

func (presentHasher) HashCode(interface{}, uint32) uint32 { return 0 }
func (presentHasher) Equals(a, b interface{}) bool        { return a == b }

// StringSerializer is a trusted Serializer for string keys/values, using
// fastconv's zero-copy byte/string conversions. Trusted: strings never
// execute attacker-influenced code on Deserialize.
type StringSerializer struct{}

func (StringSerializer) Serialize(v interface{}) ([]byte, error) {
	return fastconv.S2B(v.(string)), nil
}

func (StringSerializer) Deserialize(b []byte) (interface{}, error) {
	return fastconv.B2S(b), nil
}

func (StringSerializer) IsTrusted() bool { return true }
