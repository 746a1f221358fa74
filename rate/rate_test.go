package rate

import (
	"math"
	"testing"
)

func TestBuiltinRates(t *testing.T) {
	tests := []struct {
		name string
		r    Rate
		in   float64
		want float64
	}{
		{"identity", Identity{}, 0.3, 0.3},
		{"speed", Speed{Factor: 2}, 0.25, 0.5},
		{"clamp_low", Clamp{Min: 0, Max: 1}, -0.5, 0},
		{"clamp_high", Clamp{Min: 0, Max: 1}, 1.5, 1},
		{"smooth_mid", Smooth{}, 0.5, 0.5},
		{"smooth_end", Smooth{}, 1, 1},
		{"sine_start", EaseInOutSine{}, 0, 0},
		{"sine_mid", EaseInOutSine{}, 0.5, 0.5},
		{"there_and_back_mid", ThereAndBack{}, 0.5, 1},
		{"reverse", Reverse{}, 0.25, 0.75},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.r.Apply(tt.in)
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("Expected %g, got %g", tt.want, got)
			}
		})
	}
}

func TestChainIncreasing(t *testing.T) {
	if !(Chain{}).Increasing() {
		t.Error("Expected empty chain to be increasing")
	}
	if !(Chain{Speed{Factor: 2}, Smooth{}}).Increasing() {
		t.Error("Expected speed+smooth to be increasing")
	}
	if (Chain{Smooth{}, ThereAndBack{}}).Increasing() {
		t.Error("Expected chain with there_and_back to be non-increasing")
	}
	if (Speed{Factor: -1}).Increasing() {
		t.Error("Expected negative speed to be non-increasing")
	}
}

func TestIncreasingRatesAreMonotone(t *testing.T) {
	for _, kind := range Kinds() {
		r, err := New(kind)
		if err != nil {
			t.Fatalf("New(%q): %v", kind, err)
		}
		if s, ok := r.(*Speed); ok {
			s.Factor = 1.5
		}
		if c, ok := r.(*Clamp); ok {
			c.Max = 0.8
		}
		if !r.Increasing() {
			continue
		}
		prev := r.Apply(0)
		for i := 1; i <= 100; i++ {
			v := r.Apply(float64(i) / 100)
			if v < prev {
				t.Errorf("%s: not monotone at %d: %g < %g", kind, i, v, prev)
				break
			}
			prev = v
		}
	}
}

func TestChainApplyOrder(t *testing.T) {
	c := Chain{Speed{Factor: 2}}.Then(Clamp{Min: 0, Max: 1})
	if got := c.Apply(0.75); got != 1 {
		t.Errorf("Expected clamp after speed to give 1, got %g", got)
	}
	if len(c) != 2 {
		t.Errorf("Expected chain length 2, got %d", len(c))
	}
}

func TestNewUnknownKind(t *testing.T) {
	if _, err := New("nope"); err == nil {
		t.Error("Expected error for unknown kind")
	}
}
