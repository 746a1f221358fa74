package timeline

import (
	"fmt"

	"github.com/YishiMichael/morphing-sub001/core"
	"github.com/YishiMichael/morphing-sub001/mobject"
)

// ContentKind tags the closed set of content shapes
type ContentKind string

const (
	KindStatic     ContentKind = "static"
	KindAction     ContentKind = "action"
	KindContinuous ContentKind = "continuous"
	KindDiscrete   ContentKind = "discrete"
)

// Content reconstructs state from a rated parameter
type Content interface {
	Kind() ContentKind
	collapse(e Entry, t core.Time) (mobject.Mobject, error)
}

// Static holds a mobject that does not change over the entry
type Static struct {
	Mobject mobject.Mobject
}

func (*Static) Kind() ContentKind { return KindStatic }

func (s *Static) collapse(Entry, core.Time) (mobject.Mobject, error) {
	return s.Mobject, nil
}

// Action interpolates from Source to Target
type Action struct {
	Source mobject.Mobject
	Target mobject.Mobject
}

func (*Action) Kind() ContentKind { return KindAction }

func (a *Action) collapse(e Entry, t core.Time) (mobject.Mobject, error) {
	return mobject.Interpolate(a.Source, a.Target, e.Parameter(t))
}

// Continuous evaluates an updater in closed form
type Continuous struct {
	Mobject mobject.Mobject
	Updater mobject.Updater
}

func (*Continuous) Kind() ContentKind { return KindContinuous }

func (c *Continuous) collapse(e Entry, t core.Time) (mobject.Mobject, error) {
	return mobject.Apply(c.Updater, c.Mobject, e.Parameter(t))
}

// Discrete is a nested sub-timeline recorded by a child recorder
// Span is the child session; child entries carry times on the same clock
type Discrete struct {
	Span    core.TimeInterval
	Entries []Entry
}

func (*Discrete) Kind() ContentKind { return KindDiscrete }

// ChildTime maps a parent query time into the child session clock
func (d *Discrete) ChildTime(e Entry, t core.Time) core.Time {
	p := e.Parameter(t)
	if e.Metric == Relative {
		return d.Span.Start.Add(p * d.Span.Duration())
	}
	return d.Span.Start.Add(p)
}

// Active returns indices of child entries alive at child time ct
func (d *Discrete) Active(ct core.Time) []int {
	var idx []int
	for i, child := range d.Entries {
		if child.Interval.Contains(ct) {
			idx = append(idx, i)
		}
	}
	return idx
}

func (d *Discrete) collapse(e Entry, t core.Time) (mobject.Mobject, error) {
	ct := d.ChildTime(e, t)
	g := &mobject.Group{}
	for _, i := range d.Active(ct) {
		m, err := Collapse(d.Entries[i], ct)
		if err != nil {
			return nil, fmt.Errorf("child %d: %w", i, err)
		}
		g.Members = append(g.Members, m)
	}
	return g, nil
}

// Collapse reconstructs the entry's state at t
// Pure: the same (entry, t) always yields an equal state
func Collapse(e Entry, t core.Time) (mobject.Mobject, error) {
	if e.Content == nil {
		return nil, fmt.Errorf("collapse %v: no content", e.Interval)
	}
	m, err := e.Content.collapse(e, t)
	if err != nil {
		return nil, fmt.Errorf("collapse %s at %g: %w", e.Content.Kind(), float64(t), err)
	}
	return m, nil
}

// Leading returns the mobject that seeds an entry's state, used for storage typing
// Discrete content has no single seed and returns a group
func Leading(c Content) mobject.Mobject {
	switch v := c.(type) {
	case *Static:
		return v.Mobject
	case *Action:
		return v.Source
	case *Continuous:
		return v.Mobject
	default:
		return &mobject.Group{}
	}
}
