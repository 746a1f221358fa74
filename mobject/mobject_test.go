package mobject

import (
	"errors"
	"math"
	"testing"
)

var white = Color{1, 1, 1, 1}

func near(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-5
}

func TestShapeInterpolate(t *testing.T) {
	a := Rect(0, 0, 2, 2, Color{0, 0, 0, 1})
	b := Rect(4, 0, 2, 2, white)

	mid, err := Interpolate(a, b, 0.5)
	if err != nil {
		t.Fatalf("Interpolate: %v", err)
	}
	s := mid.(*Shape)
	if c := s.Centroid(); !near(c.X, 2) || !near(c.Y, 0) {
		t.Errorf("Expected centroid (2,0), got (%g,%g)", c.X, c.Y)
	}
	if !near(s.Color.R, 0.5) {
		t.Errorf("Expected red 0.5, got %g", s.Color.R)
	}

	start, _ := Interpolate(a, b, 0)
	if start.(*Shape).Points[0] != a.Points[0] {
		t.Error("Expected t=0 to reproduce the source")
	}
}

func TestInterpolateIncompatible(t *testing.T) {
	tests := []struct {
		name string
		a, b Mobject
	}{
		{"kind", Rect(0, 0, 1, 1, white), &Tone{Frequency: 440, Wave: WaveSine}},
		{"points", Rect(0, 0, 1, 1, white), RegularPolygon(0, 0, 1, 5, white)},
		{"wave", &Tone{Wave: WaveSine}, &Tone{Wave: WaveSaw}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Interpolate(tt.a, tt.b, 0.5); !errors.Is(err, ErrIncompatible) {
				t.Errorf("Expected ErrIncompatible, got %v", err)
			}
		})
	}
}

func TestShapeTransformsDoNotMutate(t *testing.T) {
	s := Rect(0, 0, 2, 2, white)
	orig := s.Points[0]

	_ = s.Translated(1, 1)
	_ = s.Rotated(1)
	_ = s.Scaled(3)

	if s.Points[0] != orig {
		t.Errorf("Expected source untouched, got %+v", s.Points[0])
	}
}

func TestUpdaters(t *testing.T) {
	s := Rect(0, 0, 2, 2, white)

	moved, err := Shift{DX: 2}.Update(s, 0.5)
	if err != nil {
		t.Fatalf("Shift: %v", err)
	}
	if c := moved.(*Shape).Centroid(); !near(c.X, 1) {
		t.Errorf("Expected centroid x 1, got %g", c.X)
	}

	rotated, _ := Rotate{Radians: math.Pi}.Update(s, 1)
	p := rotated.(*Shape).Points[0]
	if !near(p.X, 1) || !near(p.Y, 1) {
		t.Errorf("Expected half turn to map (-1,-1) to (1,1), got (%g,%g)", p.X, p.Y)
	}

	faded, _ := Fade{Alpha: 0}.Update(s, 0.25)
	if !near(faded.(*Shape).Color.A, 0.75) {
		t.Errorf("Expected alpha 0.75, got %g", faded.(*Shape).Color.A)
	}

	tone := &Tone{Frequency: 220, Amplitude: 0.5, Wave: WaveSine}
	swept, _ := ToneSweep{Hertz: 220}.Update(tone, 1)
	if swept.(*Tone).Frequency != 440 || tone.Frequency != 220 {
		t.Errorf("Expected sweep to 440 without mutation, got %g (src %g)", swept.(*Tone).Frequency, tone.Frequency)
	}

	if _, err := (Shift{}).Update(tone, 1); !errors.Is(err, ErrIncompatible) {
		t.Errorf("Expected ErrIncompatible for shift on tone, got %v", err)
	}
}

func TestApplyMapsGroupMembers(t *testing.T) {
	g := &Group{Members: []Mobject{Rect(0, 0, 1, 1, white), Rect(5, 0, 1, 1, white)}}

	out, err := Apply(Shift{DY: 4}, g, 1)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	members := out.(*Group).Members
	if c := members[1].(*Shape).Centroid(); !near(c.X, 5) || !near(c.Y, 4) {
		t.Errorf("Expected member centroid (5,4), got (%g,%g)", c.X, c.Y)
	}
}

func TestRegistries(t *testing.T) {
	for _, kind := range Kinds() {
		m, err := New(kind)
		if err != nil {
			t.Fatalf("New(%q): %v", kind, err)
		}
		if m.Kind() != kind {
			t.Errorf("Expected kind %q, got %q", kind, m.Kind())
		}
	}
	for _, kind := range UpdaterKinds() {
		u, err := NewUpdater(kind)
		if err != nil {
			t.Fatalf("NewUpdater(%q): %v", kind, err)
		}
		if u.Kind() != kind {
			t.Errorf("Expected updater kind %q, got %q", kind, u.Kind())
		}
	}
	if _, err := New("missing"); err == nil {
		t.Error("Expected error for unknown kind")
	}
}
