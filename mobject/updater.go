package mobject

import (
	"fmt"
	"sort"
	"sync"
)

// Updater is a closed-form state function evaluated at a rated parameter
// Update must not mutate m; it returns the state at parameter p
type Updater interface {
	Kind() string
	Update(m Mobject, p float64) (Mobject, error)
}

// Apply runs u on m, mapping over group members
func Apply(u Updater, m Mobject, p float64) (Mobject, error) {
	g, ok := m.(*Group)
	if !ok {
		return u.Update(m, p)
	}
	out := &Group{Members: make([]Mobject, len(g.Members))}
	for i, member := range g.Members {
		next, err := Apply(u, member, p)
		if err != nil {
			return nil, fmt.Errorf("member %d: %w", i, err)
		}
		out.Members[i] = next
	}
	return out, nil
}

func asShape(kind string, m Mobject) (*Shape, error) {
	s, ok := m.(*Shape)
	if !ok {
		return nil, fmt.Errorf("%w: %s updater on %s", ErrIncompatible, kind, m.Kind())
	}
	return s, nil
}

// Shift translates by (DX, DY) per unit parameter
type Shift struct {
	DX float32 `json:"dx" msgpack:"dx"`
	DY float32 `json:"dy" msgpack:"dy"`
}

func (Shift) Kind() string { return "shift" }
func (u Shift) Update(m Mobject, p float64) (Mobject, error) {
	s, err := asShape(u.Kind(), m)
	if err != nil {
		return nil, err
	}
	return s.Translated(u.DX*float32(p), u.DY*float32(p)), nil
}

// Rotate spins by Radians per unit parameter
type Rotate struct {
	Radians float32 `json:"radians" msgpack:"radians"`
}

func (Rotate) Kind() string { return "rotate" }
func (u Rotate) Update(m Mobject, p float64) (Mobject, error) {
	s, err := asShape(u.Kind(), m)
	if err != nil {
		return nil, err
	}
	return s.Rotated(u.Radians * float32(p)), nil
}

// Scale grows linearly from 1 toward Factor as p goes 0 -> 1
type Scale struct {
	Factor float32 `json:"factor" msgpack:"factor"`
}

func (Scale) Kind() string { return "scale" }
func (u Scale) Update(m Mobject, p float64) (Mobject, error) {
	s, err := asShape(u.Kind(), m)
	if err != nil {
		return nil, err
	}
	return s.Scaled(lerp32(1, u.Factor, p)), nil
}

// Fade moves alpha toward Alpha as p goes 0 -> 1
type Fade struct {
	Alpha float32 `json:"alpha" msgpack:"alpha"`
}

func (Fade) Kind() string { return "fade" }
func (u Fade) Update(m Mobject, p float64) (Mobject, error) {
	s, err := asShape(u.Kind(), m)
	if err != nil {
		return nil, err
	}
	out := s.Clone()
	out.Color.A = lerp32(s.Color.A, u.Alpha, p)
	return out, nil
}

// ToneSweep raises frequency by Hertz per unit parameter
type ToneSweep struct {
	Hertz float64 `json:"hertz" msgpack:"hertz"`
}

func (ToneSweep) Kind() string { return "tone_sweep" }
func (u ToneSweep) Update(m Mobject, p float64) (Mobject, error) {
	tn, ok := m.(*Tone)
	if !ok {
		return nil, fmt.Errorf("%w: tone_sweep updater on %s", ErrIncompatible, m.Kind())
	}
	out := *tn
	out.Frequency += u.Hertz * p
	return &out, nil
}

// === Registry ===

// UpdaterFactory returns a pointer to a zero updater ready for decoding
type UpdaterFactory func() Updater

var (
	updatersMu sync.RWMutex
	updaters   = map[string]UpdaterFactory{}
)

func init() {
	RegisterUpdater("shift", func() Updater { return &Shift{} })
	RegisterUpdater("rotate", func() Updater { return &Rotate{} })
	RegisterUpdater("scale", func() Updater { return &Scale{} })
	RegisterUpdater("fade", func() Updater { return &Fade{} })
	RegisterUpdater("tone_sweep", func() Updater { return &ToneSweep{} })
}

// RegisterUpdater adds an updater factory by kind
func RegisterUpdater(kind string, factory UpdaterFactory) {
	updatersMu.Lock()
	defer updatersMu.Unlock()
	updaters[kind] = factory
}

// NewUpdater returns a zero updater of kind
func NewUpdater(kind string) (Updater, error) {
	updatersMu.RLock()
	defer updatersMu.RUnlock()
	f, ok := updaters[kind]
	if !ok {
		return nil, fmt.Errorf("unknown updater kind %q", kind)
	}
	return f(), nil
}

// UpdaterKinds returns registered updater kinds in sorted order
func UpdaterKinds() []string {
	updatersMu.RLock()
	defer updatersMu.RUnlock()
	kinds := make([]string, 0, len(updaters))
	for k := range updaters {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}
