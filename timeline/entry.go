// Package timeline holds archived timeline entries and their collapse at query times
package timeline

import (
	"fmt"

	"github.com/YishiMichael/morphing-sub001/core"
	"github.com/YishiMichael/morphing-sub001/rate"
)

// Metric selects how a query time becomes a local parameter
type Metric string

const (
	// Relative maps [t0, t1) onto [0, 1)
	Relative Metric = "relative"
	// Absolute yields seconds since t0
	Absolute Metric = "absolute"
)

// Remap converts t into the local parameter of iv
// Entries are never zero-length, so Relative never divides by zero
func (m Metric) Remap(iv core.TimeInterval, t core.Time) float64 {
	switch m {
	case Absolute:
		return t.Sub(iv.Start)
	default:
		return t.Sub(iv.Start) / iv.Duration()
	}
}

// Valid reports a known metric
func (m Metric) Valid() bool {
	return m == Relative || m == Absolute
}

// Entry is the immutable archive of one handle's lifetime
type Entry struct {
	Interval core.TimeInterval
	Metric   Metric
	Rates    rate.Chain
	Content  Content
}

// Parameter remaps t and runs it through the rate chain
func (e Entry) Parameter(t core.Time) float64 {
	return e.Rates.Apply(e.Metric.Remap(e.Interval, t))
}

// Validate checks the invariants archives must satisfy after decoding
func (e Entry) Validate() error {
	if err := e.Interval.Validate(); err != nil {
		return err
	}
	if e.Interval.IsEmpty() {
		return fmt.Errorf("zero-length entry %v", e.Interval)
	}
	if !e.Metric.Valid() {
		return fmt.Errorf("unknown metric %q", e.Metric)
	}
	if e.Content == nil {
		return fmt.Errorf("entry %v has no content", e.Interval)
	}
	if d, ok := e.Content.(*Discrete); ok {
		for i, child := range d.Entries {
			if err := child.Validate(); err != nil {
				return fmt.Errorf("child %d: %w", i, err)
			}
		}
	}
	return nil
}
