package present

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/YishiMichael/morphing-sub001/audio"
	"github.com/YishiMichael/morphing-sub001/core"
	"github.com/YishiMichael/morphing-sub001/device"
	"github.com/YishiMichael/morphing-sub001/engine"
	"github.com/YishiMichael/morphing-sub001/mobject"
	"github.com/YishiMichael/morphing-sub001/status"
	"github.com/YishiMichael/morphing-sub001/storage"
	"github.com/YishiMichael/morphing-sub001/timeline"
	"github.com/YishiMichael/morphing-sub001/worldline"
)

var white = mobject.Color{R: 1, G: 1, B: 1, A: 1}

func span(s, e core.Time) core.TimeInterval { return core.TimeInterval{Start: s, End: e} }

func sampleEntries() []timeline.Entry {
	return []timeline.Entry{
		{
			Interval: span(0, 10),
			Metric:   timeline.Relative,
			Content:  &timeline.Static{Mobject: mobject.Rect(0, 0, 2, 2, white)},
		},
		{
			Interval: span(0, 5),
			Metric:   timeline.Relative,
			Content: &timeline.Action{
				Source: mobject.Rect(0, 0, 1, 1, white),
				Target: mobject.Rect(10, 0, 1, 1, white),
			},
		},
		{
			Interval: span(2, 8),
			Metric:   timeline.Relative,
			Content:  &timeline.Static{Mobject: &mobject.Tone{Frequency: 440, Amplitude: 0.5, Wave: mobject.WaveSine}},
		},
	}
}

func newPresenter() (*Presenter, *status.Registry) {
	reg := status.NewRegistry()
	return New(device.NewMemory(), audio.NewSynth(8000, 160), reg, nil), reg
}

func TestPresentSelectsAliveEntries(t *testing.T) {
	p, _ := newPresenter()
	entries := sampleEntries()

	tests := []struct {
		at     core.Time
		items  int
		shapes int
		tones  int
	}{
		{0, 2, 2, 0},
		{3, 3, 2, 1},
		{6, 2, 1, 1},
		{9.5, 1, 1, 0},
		{10, 0, 0, 0},
	}
	for _, tt := range tests {
		err := p.Render(entries, tt.at, func(f *Frame) error {
			if len(f.Items) != tt.items {
				t.Errorf("t=%g: expected %d items, got %d", float64(tt.at), tt.items, len(f.Items))
			}
			if n := len(f.Shapes()); n != tt.shapes {
				t.Errorf("t=%g: expected %d shapes, got %d", float64(tt.at), tt.shapes, n)
			}
			if n := len(f.Tones()); n != tt.tones {
				t.Errorf("t=%g: expected %d tones, got %d", float64(tt.at), tt.tones, n)
			}
			return nil
		})
		if err != nil {
			t.Fatalf("t=%g: %v", float64(tt.at), err)
		}
	}
}

func TestPresentActionInterpolates(t *testing.T) {
	p, _ := newPresenter()
	f, err := p.Present(sampleEntries(), 2.5)
	if err != nil {
		t.Fatalf("Present: %v", err)
	}
	defer p.EndFrame()

	var moving *device.ShapeResource
	for _, it := range f.Items {
		if it.Callsite == "1" {
			moving = it.Resource.(*device.ShapeResource)
			if it.Variant != worldline.Dynamic {
				t.Errorf("Expected dynamic variant, got %s", it.Variant)
			}
		}
	}
	if moving == nil {
		t.Fatal("Expected item for call site 1")
	}
	want := mobject.Rect(5, 0, 1, 1, white).Points[0]
	if got := moving.Points()[0]; got != want {
		t.Errorf("Expected halfway vertex %v, got %v", want, got)
	}
}

func TestPresentDiscreteCallsites(t *testing.T) {
	child := func(s, e core.Time, x float32) timeline.Entry {
		return timeline.Entry{
			Interval: span(s, e),
			Metric:   timeline.Relative,
			Content: &timeline.Action{
				Source: mobject.Rect(x, 0, 1, 1, white),
				Target: mobject.Rect(x, 5, 1, 1, white),
			},
		}
	}
	entries := []timeline.Entry{{
		Interval: span(0, 4),
		Metric:   timeline.Absolute,
		Content: &timeline.Discrete{
			Span:    span(0, 4),
			Entries: []timeline.Entry{child(0, 4, 0), child(1, 3, 3)},
		},
	}}

	p, _ := newPresenter()
	err := p.Render(entries, 2, func(f *Frame) error {
		if len(f.Items) != 2 {
			t.Fatalf("Expected 2 items, got %d", len(f.Items))
		}
		if f.Items[0].Callsite != "0/0" || f.Items[1].Callsite != "0/1" {
			t.Errorf("Expected call sites 0/0 and 0/1, got %s and %s", f.Items[0].Callsite, f.Items[1].Callsite)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
}

func TestPresentGroupBinding(t *testing.T) {
	entries := []timeline.Entry{{
		Interval: span(0, 1),
		Metric:   timeline.Relative,
		Content: &timeline.Static{Mobject: &mobject.Group{Members: []mobject.Mobject{
			mobject.Rect(0, 0, 1, 1, white),
			&mobject.Tone{Frequency: 220, Amplitude: 1, Wave: mobject.WaveSquare},
		}}},
	}}
	p, _ := newPresenter()
	err := p.Render(entries, 0, func(f *Frame) error {
		if len(f.Shapes()) != 1 || len(f.Tones()) != 1 {
			t.Errorf("Expected group flattened to 1 shape and 1 tone, got %d and %d", len(f.Shapes()), len(f.Tones()))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
}

func TestPresentFrameGuard(t *testing.T) {
	p, _ := newPresenter()
	if _, err := p.Present(sampleEntries(), 0); err != nil {
		t.Fatalf("Present: %v", err)
	}
	if _, err := p.Present(sampleEntries(), 0); !errors.Is(err, storage.ErrFrameOpen) {
		t.Errorf("Expected ErrFrameOpen, got %v", err)
	}
	p.EndFrame()
	if _, err := p.Present(sampleEntries(), 0); err != nil {
		t.Errorf("Expected present after EndFrame, got %v", err)
	}
}

func TestFrameTimes(t *testing.T) {
	got := FrameTimes(span(0, 1), 4)
	want := []core.Time{0, 0.25, 0.5, 0.75}
	if len(got) != len(want) {
		t.Fatalf("Expected %d frames, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Frame %d: expected %g, got %g", i, float64(want[i]), float64(got[i]))
		}
	}
	if FrameTimes(span(1, 1), 30) != nil {
		t.Error("Expected no frames for an empty interval")
	}
}

func TestFramesReuseDynamicResources(t *testing.T) {
	p, reg := newPresenter()
	entries := sampleEntries()[1:2]

	n := 0
	for f, err := range p.Frames(entries, span(0, 5), 2) {
		if err != nil {
			t.Fatalf("Frames: %v", err)
		}
		if f.Index != n {
			t.Errorf("Expected frame index %d, got %d", n, f.Index)
		}
		n++
	}
	if n != 10 {
		t.Errorf("Expected 10 frames, got %d", n)
	}
	if got := reg.Int(worldline.MetricPrepareNew); got != 1 {
		t.Errorf("Expected a single full prepare, got %d", got)
	}
	if got := reg.Int(worldline.MetricIncremental); got != 9 {
		t.Errorf("Expected 9 incremental updates, got %d", got)
	}
	if got := reg.Int("present.frames"); got != 10 {
		t.Errorf("Expected present.frames 10, got %d", got)
	}
}

func TestPlayFollowsClock(t *testing.T) {
	mock := engine.NewMockTimeProvider(time.Unix(0, 0))
	clock := engine.NewPlaybackClock(span(0, 3), mock)
	p, _ := newPresenter()

	var seen []core.Time
	err := p.Play(context.Background(), clock, sampleEntries(), 1000, func(f *Frame) error {
		seen = append(seen, f.Time)
		mock.Advance(time.Second)
		return nil
	})
	if err != nil {
		t.Fatalf("Play: %v", err)
	}
	if len(seen) != 3 || seen[2] != 2 {
		t.Errorf("Expected frames at 0, 1, 2, got %v", seen)
	}
}
