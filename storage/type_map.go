package storage

import (
	"errors"
	"fmt"
	"sort"
)

// ErrFrameOpen marks a prepare pass started before the previous frame expired
var ErrFrameOpen = errors.New("previous frame not expired")

// TypeID identifies a (worldline kind, variant) pair
type TypeID struct {
	Kind    string
	Variant string
}

func (id TypeID) String() string {
	return id.Kind + "/" + id.Variant
}

// TypeMap lazily creates one store per TypeID
// Each sub-store is independent, so per-type preparation may be sharded safely
type TypeMap struct {
	stores map[TypeID]Storage
	frame  uint64
	open   bool
}

// NewTypeMap creates an empty registry
func NewTypeMap() *TypeMap {
	return &TypeMap{stores: make(map[TypeID]Storage)}
}

// Lookup returns the store for id, creating it with newFn on first use
// A stored value of another concrete type panics: the registry is corrupt
func Lookup[S Storage](m *TypeMap, id TypeID, newFn func() S) S {
	if s, ok := m.stores[id]; ok {
		typed, ok := s.(S)
		if !ok {
			panic(fmt.Sprintf("storage %s holds %T", id, s))
		}
		return typed
	}
	s := newFn()
	m.stores[id] = s
	return s
}

// BeginFrame opens a prepare pass; it fails if the previous one never expired
func (m *TypeMap) BeginFrame() error {
	if m.open {
		return fmt.Errorf("%w: frame %d", ErrFrameOpen, m.frame)
	}
	m.open = true
	return nil
}

// Expire closes the frame and expires every store exactly once
func (m *TypeMap) Expire() {
	for _, s := range m.stores {
		s.Expire()
	}
	m.open = false
	m.frame++
}

// Frame returns the number of expired frames
func (m *TypeMap) Frame() uint64 {
	return m.frame
}

// Len returns live slots across all stores
func (m *TypeMap) Len() int {
	n := 0
	for _, s := range m.stores {
		n += s.Len()
	}
	return n
}

// Types returns registered ids in sorted order
func (m *TypeMap) Types() []TypeID {
	ids := make([]TypeID, 0, len(m.stores))
	for id := range m.stores {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return ids[i].String() < ids[j].String()
	})
	return ids
}
