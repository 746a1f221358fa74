// Package storage holds prepared presentation resources across frames
package storage

// Storage is the type-erased lifecycle contract every presentation store implements
// This lets TypeMap expire all stores uniformly without knowing the concrete type
type Storage interface {
	// Expire runs at each frame boundary, after render reads and before the next prepare pass
	Expire()

	// Len returns the number of live slots
	Len() int
}

// Read holds at most one shared resource
type Read[R any] struct {
	value R
	ok    bool
}

// NewRead creates an empty single-slot store
func NewRead[R any]() *Read[R] {
	return &Read[R]{}
}

// Get returns the held resource
func (s *Read[R]) Get() (R, bool) {
	return s.value, s.ok
}

// Set replaces the held resource
func (s *Read[R]) Set(val R) {
	s.value = val
	s.ok = true
}

// Expire clears the slot
func (s *Read[R]) Expire() {
	var zero R
	s.value = zero
	s.ok = false
}

// Len returns 1 when a resource is held
func (s *Read[R]) Len() int {
	if s.ok {
		return 1
	}
	return 0
}

// ReadWrite is an append-only list of independent resources indexed by integer
type ReadWrite[R any] struct {
	slots []R
}

// NewReadWrite creates an empty list store
func NewReadWrite[R any]() *ReadWrite[R] {
	return &ReadWrite[R]{slots: make([]R, 0, 4)}
}

// Push appends a resource and returns its index
func (s *ReadWrite[R]) Push(val R) int {
	s.slots = append(s.slots, val)
	return len(s.slots) - 1
}

// Get returns the resource at index i
func (s *ReadWrite[R]) Get(i int) (R, bool) {
	if i < 0 || i >= len(s.slots) {
		var zero R
		return zero, false
	}
	return s.slots[i], true
}

// Set replaces the resource at index i
func (s *ReadWrite[R]) Set(i int, val R) bool {
	if i < 0 || i >= len(s.slots) {
		return false
	}
	s.slots[i] = val
	return true
}

// All returns a copy of the slots in index order
func (s *ReadWrite[R]) All() []R {
	out := make([]R, len(s.slots))
	copy(out, s.slots)
	return out
}

// Expire clears the whole list, keeping capacity
func (s *ReadWrite[R]) Expire() {
	clear(s.slots)
	s.slots = s.slots[:0]
}

// Len returns the number of slots
func (s *ReadWrite[R]) Len() int {
	return len(s.slots)
}

// Swap double-buffers an inner store
// Expire rotates buffers: last frame's allocations stay readable as Inactive
// while the new frame populates a fresh Active
type Swap[S Storage] struct {
	active   S
	inactive S
}

// NewSwap creates a double buffer from a factory
func NewSwap[S Storage](newFn func() S) *Swap[S] {
	return &Swap[S]{active: newFn(), inactive: newFn()}
}

// Active returns the buffer being populated this frame
func (s *Swap[S]) Active() S {
	return s.active
}

// Inactive returns the previous frame's buffer
func (s *Swap[S]) Inactive() S {
	return s.inactive
}

// Expire drops the older buffer and swaps
func (s *Swap[S]) Expire() {
	s.inactive.Expire()
	s.active, s.inactive = s.inactive, s.active
}

// Len returns live slots in the active buffer
func (s *Swap[S]) Len() int {
	return s.active.Len()
}

// Map partitions an inner store by an arbitrary comparable key
type Map[K comparable, S Storage] struct {
	parts map[K]S
	newFn func() S
}

// NewMap creates a keyed store whose partitions come from newFn
func NewMap[K comparable, S Storage](newFn func() S) *Map[K, S] {
	return &Map[K, S]{parts: make(map[K]S), newFn: newFn}
}

// Get returns the partition for k, creating it on first use
func (m *Map[K, S]) Get(k K) S {
	if s, ok := m.parts[k]; ok {
		return s
	}
	s := m.newFn()
	m.parts[k] = s
	return s
}

// Lookup returns the partition for k without creating it
func (m *Map[K, S]) Lookup(k K) (S, bool) {
	s, ok := m.parts[k]
	return s, ok
}

// Delete removes the partition for k
func (m *Map[K, S]) Delete(k K) {
	delete(m.parts, k)
}

// Expire expires every partition and drops the ones left empty
func (m *Map[K, S]) Expire() {
	for k, s := range m.parts {
		s.Expire()
		if s.Len() == 0 {
			delete(m.parts, k)
		}
	}
}

// Len returns the live slots across partitions
func (m *Map[K, S]) Len() int {
	n := 0
	for _, s := range m.parts {
		n += s.Len()
	}
	return n
}

// Partitions returns the number of partitions
func (m *Map[K, S]) Partitions() int {
	return len(m.parts)
}
