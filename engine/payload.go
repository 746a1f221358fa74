package engine

import (
	"github.com/YishiMichael/morphing-sub001/core"
	"github.com/YishiMichael/morphing-sub001/mobject"
	"github.com/YishiMichael/morphing-sub001/rate"
	"github.com/YishiMichael/morphing-sub001/timeline"
)

// Steady records a mobject that stays unchanged while alive
type Steady struct {
	Mobject mobject.Mobject
}

// Archive implements Archiver
func (s *Steady) Archive(iv core.TimeInterval) timeline.Entry {
	return timeline.Entry{
		Interval: iv,
		Metric:   timeline.Relative,
		Content:  &timeline.Static{Mobject: s.Mobject},
	}
}

// Action records an interpolation from Source to Target over the handle's lifetime
type Action struct {
	Source mobject.Mobject
	Target mobject.Mobject
	Rates  rate.Chain
	Metric timeline.Metric
}

// Archive implements Archiver; Metric defaults to relative
func (a *Action) Archive(iv core.TimeInterval) timeline.Entry {
	return timeline.Entry{
		Interval: iv,
		Metric:   orMetric(a.Metric, timeline.Relative),
		Rates:    a.Rates,
		Content:  &timeline.Action{Source: a.Source, Target: a.Target},
	}
}

// Continuous records a closed-form updater applied to Mobject
type Continuous struct {
	Mobject mobject.Mobject
	Updater mobject.Updater
	Rates   rate.Chain
	Metric  timeline.Metric
}

// Archive implements Archiver; Metric defaults to absolute seconds
func (c *Continuous) Archive(iv core.TimeInterval) timeline.Entry {
	return timeline.Entry{
		Interval: iv,
		Metric:   orMetric(c.Metric, timeline.Absolute),
		Rates:    c.Rates,
		Content:  &timeline.Continuous{Mobject: c.Mobject, Updater: c.Updater},
	}
}

// State returns the updater's result at the end of a run of d seconds
// Used to chain a steady continuation after the handle ends
func (c *Continuous) State(d float64) (mobject.Mobject, error) {
	p := d
	if orMetric(c.Metric, timeline.Absolute) == timeline.Relative {
		p = 1
	}
	return mobject.Apply(c.Updater, c.Mobject, c.Rates.Apply(p))
}

// Discrete records a composite whose members are recorded by a nested recorder
// The child shares the parent's clock; its entries are collected when the handle ends
type Discrete struct {
	child  *Recorder
	Rates  rate.Chain
	Metric timeline.Metric
}

// NewDiscrete creates a composite payload recording on parent's clock
func NewDiscrete(parent *Recorder) *Discrete {
	parent.mustBeLive()
	return &Discrete{child: NewRecorder(&spanClock{clock: parent.clock, start: parent.clock.Now()})}
}

// Recorder returns the nested recorder for member handles
func (d *Discrete) Recorder() *Recorder {
	return d.child
}

// Archive implements Archiver; collects the nested recorder
func (d *Discrete) Archive(iv core.TimeInterval) timeline.Entry {
	span, entries := d.child.Collect()
	return timeline.Entry{
		Interval: iv,
		Metric:   orMetric(d.Metric, timeline.Absolute),
		Rates:    d.Rates,
		Content:  &timeline.Discrete{Span: span, Entries: entries},
	}
}

func orMetric(m, def timeline.Metric) timeline.Metric {
	if m == "" {
		return def
	}
	return m
}

// spanClock narrows a parent clock's session to start at a nested spawn
type spanClock struct {
	clock core.Clock
	start core.Time
}

func (c *spanClock) Now() core.Time {
	return c.clock.Now()
}

func (c *spanClock) SessionInterval() core.TimeInterval {
	return core.TimeInterval{Start: c.start, End: c.clock.Now()}
}
