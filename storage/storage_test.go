package storage

import (
	"errors"
	"testing"
)

func TestReadSingleSlot(t *testing.T) {
	s := NewRead[*int]()
	if _, ok := s.Get(); ok {
		t.Error("Expected empty slot")
	}

	v := 7
	s.Set(&v)
	got, ok := s.Get()
	if !ok || got != &v {
		t.Errorf("Expected shared pointer back, got %v", got)
	}

	s.Expire()
	if s.Len() != 0 {
		t.Errorf("Expected empty after expire, got %d", s.Len())
	}
}

func TestReadWriteAppendOnly(t *testing.T) {
	s := NewReadWrite[string]()
	if i := s.Push("a"); i != 0 {
		t.Errorf("Expected index 0, got %d", i)
	}
	if i := s.Push("b"); i != 1 {
		t.Errorf("Expected index 1, got %d", i)
	}
	if v, ok := s.Get(1); !ok || v != "b" {
		t.Errorf("Expected b, got %q", v)
	}
	if _, ok := s.Get(2); ok {
		t.Error("Expected out of range miss")
	}

	s.Expire()
	if s.Len() != 0 {
		t.Errorf("Expected empty list next frame, got %d", s.Len())
	}
}

func TestSwapKeepsPreviousFrame(t *testing.T) {
	s := NewSwap(NewReadWrite[int])

	s.Active().Push(1)
	s.Expire()

	if s.Active().Len() != 0 {
		t.Errorf("Expected fresh active buffer, got %d", s.Active().Len())
	}
	if v, ok := s.Inactive().Get(0); !ok || v != 1 {
		t.Errorf("Expected previous frame inspectable, got %d %v", v, ok)
	}

	s.Active().Push(2)
	s.Expire()
	if v, _ := s.Inactive().Get(0); v != 2 {
		t.Errorf("Expected frame two in inactive, got %d", v)
	}
	if s.Active().Len() != 0 {
		t.Error("Expected two-frame-old data dropped")
	}
}

func TestMapPartitions(t *testing.T) {
	m := NewMap[string](NewReadWrite[int])

	m.Get("square").Push(1)
	m.Get("square").Push(2)
	m.Get("circle").Push(3)

	if m.Partitions() != 2 || m.Len() != 3 {
		t.Errorf("Expected 2 partitions with 3 slots, got %d/%d", m.Partitions(), m.Len())
	}
	if _, ok := m.Lookup("triangle"); ok {
		t.Error("Expected lookup not to create")
	}

	m.Expire()
	if m.Partitions() != 0 {
		t.Errorf("Expected empty partitions dropped, got %d", m.Partitions())
	}
}

func TestTypeMapLazyAndTyped(t *testing.T) {
	tm := NewTypeMap()
	id := TypeID{Kind: "shape", Variant: "dynamic"}

	created := 0
	newFn := func() *ReadWrite[int] {
		created++
		return NewReadWrite[int]()
	}

	a := Lookup(tm, id, newFn)
	b := Lookup(tm, id, newFn)
	if a != b || created != 1 {
		t.Errorf("Expected one lazily created store, created %d", created)
	}

	defer func() {
		if recover() == nil {
			t.Error("Expected panic on type mismatch")
		}
	}()
	Lookup(tm, id, NewRead[int])
}

func TestTypeMapFrameGuard(t *testing.T) {
	tm := NewTypeMap()
	rw := Lookup(tm, TypeID{Kind: "tone", Variant: "dynamic"}, NewReadWrite[int])

	if err := tm.BeginFrame(); err != nil {
		t.Fatalf("BeginFrame: %v", err)
	}
	rw.Push(1)
	if err := tm.BeginFrame(); !errors.Is(err, ErrFrameOpen) {
		t.Errorf("Expected ErrFrameOpen, got %v", err)
	}

	tm.Expire()
	if rw.Len() != 0 || tm.Frame() != 1 {
		t.Errorf("Expected expired store at frame 1, got len %d frame %d", rw.Len(), tm.Frame())
	}
	if err := tm.BeginFrame(); err != nil {
		t.Errorf("Expected new frame to open, got %v", err)
	}
}

func TestKeyGeneratorStaticContentAddressed(t *testing.T) {
	g := NewKeyGenerator()
	id := TypeID{Kind: "shape", Variant: "static"}

	if g.Static(id, 42) != g.Static(id, 42) {
		t.Error("Expected identical content to share a key")
	}
	if g.Static(id, 42) == g.Static(id, 43) {
		t.Error("Expected differing content to get distinct keys")
	}
}

func TestKeyGeneratorDynamicOrdinalsAndDrift(t *testing.T) {
	g := NewKeyGenerator()
	id := TypeID{Kind: "shape", Variant: "dynamic"}

	k0, _ := g.Dynamic(id, "0", 1)
	k1, _ := g.Dynamic(id, "0", 1)
	other, _ := g.Dynamic(id, "1", 1)
	if k0.Ordinal != 0 || k1.Ordinal != 1 {
		t.Errorf("Expected ordinals 0 and 1, got %d and %d", k0.Ordinal, k1.Ordinal)
	}
	if other == k0 {
		t.Error("Expected distinct call sites to get distinct keys with identical content")
	}

	g.Reset()
	again, drift := g.Dynamic(id, "0", 1)
	if again != k0 || drift {
		t.Errorf("Expected stable key without drift, got %v drift=%v", again, drift)
	}

	g.Reset()
	moved, drift := g.Dynamic(id, "0", 99)
	if moved != k0 || !drift || !g.Drifted(moved) {
		t.Error("Expected fingerprint change to be flagged as drift")
	}
}
