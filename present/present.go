// Package present runs presentation passes over archived timelines
package present

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"math"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/YishiMichael/morphing-sub001/audio"
	"github.com/YishiMichael/morphing-sub001/core"
	"github.com/YishiMichael/morphing-sub001/device"
	"github.com/YishiMichael/morphing-sub001/status"
	"github.com/YishiMichael/morphing-sub001/storage"
	"github.com/YishiMichael/morphing-sub001/timeline"
	"github.com/YishiMichael/morphing-sub001/worldline"
)

// Item is one prepared resource visible in a frame
type Item struct {
	Callsite string
	Key      storage.Key
	Variant  worldline.Variant
	Resource worldline.Resource
}

// Frame is the prepared state of a timeline at one instant
// Resources stay valid until the presenter's next EndFrame
type Frame struct {
	Index int
	Time  core.Time
	Items []Item
}

// Shapes returns shape resources in entry order, flattening groups
func (f *Frame) Shapes() []*device.ShapeResource {
	var out []*device.ShapeResource
	for _, it := range f.Items {
		out = collect(out, it.Resource)
	}
	return out
}

// Tones returns tone resources in entry order, flattening groups
func (f *Frame) Tones() []*audio.ToneResource {
	var out []*audio.ToneResource
	for _, it := range f.Items {
		out = collect(out, it.Resource)
	}
	return out
}

func collect[T worldline.Resource](out []T, res worldline.Resource) []T {
	switch r := res.(type) {
	case T:
		return append(out, r)
	case *GroupResource:
		for _, m := range r.Members {
			out = collect(out, m)
		}
	}
	return out
}

// Presenter owns the storage of one presentation session
type Presenter struct {
	ctx    *worldline.Context
	frames int
	open   bool

	frameCount *atomic.Int64
	frameMs    *status.AtomicFloat
}

// New creates a presenter preparing into dev and synth
func New(dev device.Device, synth *audio.Synth, reg *status.Registry, logger *slog.Logger) *Presenter {
	if reg == nil {
		reg = status.NewRegistry()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Presenter{
		ctx: &worldline.Context{
			Storage:  storage.NewTypeMap(),
			Keys:     storage.NewKeyGenerator(),
			Bindings: NewBindings(synth),
			Device:   dev,
			Status:   reg,
			Logger:   logger,
		},
		frameCount: reg.Ints.Get("present.frames"),
		frameMs:    reg.Floats.Get("present.frame_ms"),
	}
}

// Storage exposes the type map for inspection
func (p *Presenter) Storage() *storage.TypeMap {
	return p.ctx.Storage
}

// Present prepares every entry alive at t
// The caller reads the frame and then calls EndFrame
func (p *Presenter) Present(entries []timeline.Entry, t core.Time) (*Frame, error) {
	if err := p.ctx.Storage.BeginFrame(); err != nil {
		return nil, err
	}
	p.open = true
	p.ctx.Keys.Reset()

	start := time.Now()
	f := &Frame{Index: p.frames, Time: t}
	if err := p.walk(f, entries, t, ""); err != nil {
		p.EndFrame()
		return nil, err
	}
	p.frameMs.Set(float64(time.Since(start).Microseconds()) / 1000)
	return f, nil
}

// EndFrame expires storage once all reads of the current frame are done
func (p *Presenter) EndFrame() {
	if !p.open {
		return
	}
	p.ctx.Storage.Expire()
	p.open = false
	p.frames++
	p.frameCount.Add(1)
}

func (p *Presenter) walk(f *Frame, entries []timeline.Entry, t core.Time, prefix string) error {
	for i, e := range entries {
		if !e.Interval.Contains(t) {
			continue
		}
		site := prefix + strconv.Itoa(i)

		if d, ok := e.Content.(*timeline.Discrete); ok {
			if err := p.walk(f, d.Entries, d.ChildTime(e, t), site+"/"); err != nil {
				return err
			}
			continue
		}

		w := worldline.For(e, site)
		key, err := worldline.Allocate(w, p.ctx.Keys)
		if err != nil {
			return fmt.Errorf("entry %s: %w", site, err)
		}
		res, err := worldline.Prepare(p.ctx, w, key, t)
		if err != nil {
			return fmt.Errorf("entry %s: %w", site, err)
		}
		f.Items = append(f.Items, Item{Callsite: site, Key: key, Variant: w.Variant, Resource: res})
	}
	return nil
}

// Render presents t, hands the frame to fn and ends the frame
func (p *Presenter) Render(entries []timeline.Entry, t core.Time, fn func(*Frame) error) error {
	f, err := p.Present(entries, t)
	if err != nil {
		return err
	}
	defer p.EndFrame()
	return fn(f)
}

// FrameTimes returns the sample instants of iv at fps
func FrameTimes(iv core.TimeInterval, fps float64) []core.Time {
	if fps <= 0 || iv.IsEmpty() {
		return nil
	}
	n := int(math.Ceil(iv.Duration() * fps))
	out := make([]core.Time, 0, n)
	for k := 0; k < n; k++ {
		t := iv.Start.Add(float64(k) / fps)
		if !iv.Contains(t) {
			break
		}
		out = append(out, t)
	}
	return out
}

// Frames presents iv at fps; each frame ends when the loop body returns
func (p *Presenter) Frames(entries []timeline.Entry, iv core.TimeInterval, fps float64) iter.Seq2[*Frame, error] {
	return func(yield func(*Frame, error) bool) {
		for _, t := range FrameTimes(iv, fps) {
			f, err := p.Present(entries, t)
			if err != nil {
				yield(nil, err)
				return
			}
			more := yield(f, nil)
			p.EndFrame()
			if !more {
				return
			}
		}
	}
}

// Play presents against a live clock until the session ends or ctx is done
func (p *Presenter) Play(ctx context.Context, clock core.Clock, entries []timeline.Entry, fps float64, fn func(*Frame) error) error {
	if fps <= 0 {
		return fmt.Errorf("fps must be positive, got %g", fps)
	}
	ticker := time.NewTicker(time.Duration(float64(time.Second) / fps))
	defer ticker.Stop()

	for {
		now := clock.Now()
		end := clock.SessionInterval().End
		if now >= end {
			return nil
		}
		if err := p.Render(entries, now, fn); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
