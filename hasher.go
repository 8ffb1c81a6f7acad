package hmap

// KeyHasher computes routing/identity hashes for keys and decides key
// equality for collision-chain scanning. HashCode's seed argument is used
// only for the structural, external hash exposed by iteration; bucket
// routing always calls HashCode(k, 0), never Config.HashSeed.
type KeyHasher interface {
	HashCode(key interface{}, seed uint32) uint32
	Equals(a, b interface{}) bool
}

// ValueHasher decides value equality (remove(k,v), replace(k,old,new)) and
// contributes to the structural hashCode exposed by Entries().HashCode().
type ValueHasher interface {
	HashCode(value interface{}, seed uint32) uint32
	Equals(a, b interface{}) bool
}

func routingHash(h KeyHasher, key interface{}) uint32 {
	return h.HashCode(key, 0)
}
