package mobject

import "fmt"

const KindGroup = "group"

// Group bundles member states, e.g. the collapse of a discrete sub-timeline
type Group struct {
	Members []Mobject `json:"-" msgpack:"members"`
}

func (*Group) Kind() string { return KindGroup }

// Interpolate blends member-wise; member counts must match
func (g *Group) Interpolate(target Mobject, t float64) (Mobject, error) {
	o, ok := target.(*Group)
	if !ok {
		return nil, fmt.Errorf("%w: group -> %s", ErrIncompatible, target.Kind())
	}
	if len(o.Members) != len(g.Members) {
		return nil, fmt.Errorf("%w: group size %d -> %d", ErrIncompatible, len(g.Members), len(o.Members))
	}
	out := &Group{Members: make([]Mobject, len(g.Members))}
	for i := range g.Members {
		m, err := Interpolate(g.Members[i], o.Members[i], t)
		if err != nil {
			return nil, fmt.Errorf("member %d: %w", i, err)
		}
		out.Members[i] = m
	}
	return out, nil
}
