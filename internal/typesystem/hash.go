package typesystem

import "hash/fnv"

// Hash returns a stable 64-bit hash of a term's canonical representation.
// The graph store derives vertex indices from this value, so it must not
// change across inserts of the same term.
func Hash(t Type) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(t.String()))
	return h.Sum64()
}
