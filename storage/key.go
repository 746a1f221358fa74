package storage

import "strconv"

// Key is a stable storage identifier scoped to a TypeID
// Static keys address content (Slot = content hash); dynamic keys address
// a call site plus the ordinal of the visit within one pass
type Key struct {
	Type    TypeID
	Slot    string
	Ordinal int
}

func (k Key) String() string {
	return k.Type.String() + "#" + k.Slot + ":" + strconv.Itoa(k.Ordinal)
}

// KeyGenerator derives keys for one presentation pass
// Dynamic keys remember a fingerprint from the previous pass; a changed
// fingerprint under the same key is drift and the slot must not be reused
type KeyGenerator struct {
	visits  map[callsite]int
	current map[Key]uint64
	prev    map[Key]uint64
	drifted map[Key]struct{}
}

type callsite struct {
	id   TypeID
	slot string
}

// NewKeyGenerator creates a generator ready for the first pass
func NewKeyGenerator() *KeyGenerator {
	return &KeyGenerator{
		visits:  make(map[callsite]int),
		current: make(map[Key]uint64),
		prev:    make(map[Key]uint64),
		drifted: make(map[Key]struct{}),
	}
}

// Reset starts a new pass; this pass's fingerprints become the reference
func (g *KeyGenerator) Reset() {
	g.prev, g.current = g.current, g.prev
	clear(g.current)
	clear(g.visits)
	clear(g.drifted)
}

// Static returns the content-addressed key for hash
func (g *KeyGenerator) Static(id TypeID, hash uint64) Key {
	return Key{Type: id, Slot: strconv.FormatUint(hash, 16)}
}

// Dynamic returns the next key for a call site and reports drift
func (g *KeyGenerator) Dynamic(id TypeID, site string, fingerprint uint64) (Key, bool) {
	cs := callsite{id: id, slot: site}
	k := Key{Type: id, Slot: site, Ordinal: g.visits[cs]}
	g.visits[cs]++

	g.current[k] = fingerprint
	prev, seen := g.prev[k]
	if seen && prev != fingerprint {
		g.drifted[k] = struct{}{}
		return k, true
	}
	return k, false
}

// Drifted reports whether k was flagged during this pass
func (g *KeyGenerator) Drifted(k Key) bool {
	_, ok := g.drifted[k]
	return ok
}
