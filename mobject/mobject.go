// Package mobject defines the renderable objects tracked on a timeline
package mobject

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Mobject is a renderable object state
// Concrete types are pointer types registered by Kind for tagged decoding
type Mobject interface {
	Kind() string
}

// Interpolator blends toward a target of the same kind
type Interpolator interface {
	Mobject
	Interpolate(target Mobject, t float64) (Mobject, error)
}

// ErrIncompatible is returned when two states cannot be blended or updated
var ErrIncompatible = errors.New("incompatible mobjects")

// Interpolate blends a into b at t; t=0 yields a, t=1 yields b
func Interpolate(a, b Mobject, t float64) (Mobject, error) {
	ia, ok := a.(Interpolator)
	if !ok {
		return nil, fmt.Errorf("%w: %s does not interpolate", ErrIncompatible, a.Kind())
	}
	if a.Kind() != b.Kind() {
		return nil, fmt.Errorf("%w: %s -> %s", ErrIncompatible, a.Kind(), b.Kind())
	}
	return ia.Interpolate(b, t)
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

func lerp32(a, b float32, t float64) float32 {
	return a + (b-a)*float32(t)
}

// === Registry ===

// Factory returns a pointer to a zero mobject ready for decoding
type Factory func() Mobject

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

func init() {
	Register(KindShape, func() Mobject { return &Shape{} })
	Register(KindTone, func() Mobject { return &Tone{} })
	Register(KindGroup, func() Mobject { return &Group{} })
}

// Register adds a mobject factory by kind
func Register(kind string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[kind] = factory
}

// New returns a zero mobject of kind
func New(kind string) (Mobject, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	f, ok := registry[kind]
	if !ok {
		return nil, fmt.Errorf("unknown mobject kind %q", kind)
	}
	return f(), nil
}

// Kinds returns registered kinds in sorted order
func Kinds() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	kinds := make([]string, 0, len(registry))
	for k := range registry {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}
