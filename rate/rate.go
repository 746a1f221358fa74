// Package rate holds pure parameter remapping functions applied during collapse
package rate

import (
	"fmt"
	"math"
	"sort"
	"sync"
)

// Rate maps a time parameter to a reshaped parameter
// Implementations are stateless; Increasing reports monotone non-decreasing output
type Rate interface {
	Kind() string
	Apply(p float64) float64
	Increasing() bool
}

// Chain applies rates in order
type Chain []Rate

// Apply runs p through every rate in the chain
func (c Chain) Apply(p float64) float64 {
	for _, r := range c {
		p = r.Apply(p)
	}
	return p
}

// Increasing reports whether every link is monotone; an empty chain is identity
func (c Chain) Increasing() bool {
	for _, r := range c {
		if !r.Increasing() {
			return false
		}
	}
	return true
}

// Then returns a new chain with r appended
func (c Chain) Then(r Rate) Chain {
	out := make(Chain, len(c), len(c)+1)
	copy(out, c)
	return append(out, r)
}

// === Built-in rates ===

// Identity leaves the parameter untouched
type Identity struct{}

func (Identity) Kind() string            { return "identity" }
func (Identity) Apply(p float64) float64 { return p }
func (Identity) Increasing() bool        { return true }

// Speed scales the parameter
type Speed struct {
	Factor float64 `json:"factor" msgpack:"factor"`
}

func (Speed) Kind() string              { return "speed" }
func (s Speed) Apply(p float64) float64 { return p * s.Factor }
func (s Speed) Increasing() bool        { return s.Factor >= 0 }

// Clamp bounds the parameter to [Min, Max]
type Clamp struct {
	Min float64 `json:"min" msgpack:"min"`
	Max float64 `json:"max" msgpack:"max"`
}

func (Clamp) Kind() string { return "clamp" }
func (c Clamp) Apply(p float64) float64 {
	return math.Max(c.Min, math.Min(c.Max, p))
}
func (Clamp) Increasing() bool { return true }

// Smooth is the smoothstep easing on [0, 1], clamped outside
type Smooth struct{}

func (Smooth) Kind() string { return "smooth" }
func (Smooth) Apply(p float64) float64 {
	p = math.Max(0, math.Min(1, p))
	return p * p * (3 - 2*p)
}
func (Smooth) Increasing() bool { return true }

// EaseInOutSine follows half a cosine period on [0, 1]
type EaseInOutSine struct{}

func (EaseInOutSine) Kind() string { return "ease_in_out_sine" }
func (EaseInOutSine) Apply(p float64) float64 {
	p = math.Max(0, math.Min(1, p))
	return -(math.Cos(math.Pi*p) - 1) / 2
}
func (EaseInOutSine) Increasing() bool { return true }

// ThereAndBack rises to 1 at the midpoint then returns to 0
type ThereAndBack struct{}

func (ThereAndBack) Kind() string { return "there_and_back" }
func (ThereAndBack) Apply(p float64) float64 {
	if p < 0.5 {
		return 2 * p
	}
	return 2 * (1 - p)
}
func (ThereAndBack) Increasing() bool { return false }

// Reverse plays the parameter backwards
type Reverse struct{}

func (Reverse) Kind() string            { return "reverse" }
func (Reverse) Apply(p float64) float64 { return 1 - p }
func (Reverse) Increasing() bool        { return false }

// === Registry ===

// Factory returns a pointer to a zero rate ready for decoding
type Factory func() Rate

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

func init() {
	Register("identity", func() Rate { return &Identity{} })
	Register("speed", func() Rate { return &Speed{} })
	Register("clamp", func() Rate { return &Clamp{} })
	Register("smooth", func() Rate { return &Smooth{} })
	Register("ease_in_out_sine", func() Rate { return &EaseInOutSine{} })
	Register("there_and_back", func() Rate { return &ThereAndBack{} })
	Register("reverse", func() Rate { return &Reverse{} })
}

// Register adds a rate factory by kind, replacing any previous one
func Register(kind string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[kind] = factory
}

// New returns a zero rate for kind
func New(kind string) (Rate, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	f, ok := registry[kind]
	if !ok {
		return nil, fmt.Errorf("unknown rate kind %q", kind)
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
