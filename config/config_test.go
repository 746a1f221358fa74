package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	v := New(nil).View(nil)
	if got := v.Int(KeyFPS, 0); got != 30 {
		t.Errorf("Expected fps 30, got %d", got)
	}
	if got := v.String(KeyRecordFormat, ""); got != "json" {
		t.Errorf("Expected json format, got %q", got)
	}
}

func TestParseFlattensTables(t *testing.T) {
	s, err := Parse([]byte(`
[present]
fps = 60
width = 120

[scene]
parallelism = 2

[custom.nested]
ratio = 0.75
enabled = true
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	v := s.View(nil)

	tests := []struct {
		key  string
		want int
	}{
		{KeyFPS, 60},
		{KeyWidth, 120},
		{KeyHeight, 24},
		{KeyParallelism, 2},
	}
	for _, tt := range tests {
		if got := v.Int(tt.key, -1); got != tt.want {
			t.Errorf("%s: expected %d, got %d", tt.key, tt.want, got)
		}
	}
	if got := v.Float("custom.nested.ratio", 0); got != 0.75 {
		t.Errorf("Expected ratio 0.75, got %f", got)
	}
	if !v.Bool("custom.nested.enabled", false) {
		t.Error("Expected enabled true")
	}
}

func TestViewOverridesDoNotLeak(t *testing.T) {
	shared := New(map[string]any{"present": map[string]any{"fps": int64(24)}})
	a := shared.View(map[string]any{KeyFPS: 12})
	b := shared.View(nil)

	if got := a.Int(KeyFPS, 0); got != 12 {
		t.Errorf("Expected override 12, got %d", got)
	}
	if got := b.Int(KeyFPS, 0); got != 24 {
		t.Errorf("Expected shared 24, got %d", got)
	}
}

func TestTypeMismatchFallsBack(t *testing.T) {
	v := New(map[string]any{"x": "ten", "y": 1.5}).View(nil)
	if got := v.Int("x", 7); got != 7 {
		t.Errorf("Expected default 7, got %d", got)
	}
	if got := v.Int("y", 7); got != 7 {
		t.Errorf("Expected default 7 for non-integral, got %d", got)
	}
	if got := v.String("missing", "d"); got != "d" {
		t.Errorf("Expected default d, got %q", got)
	}
}

func TestLoadAndMarshal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "morphing.toml")
	if err := os.WriteFile(path, []byte("[audio]\nblock = 512\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	data, err := s.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	again, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := again.View(nil).Int(KeyBlock, 0); got != 512 {
		t.Errorf("Expected block 512 after round trip, got %d", got)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("Expected error for missing file")
	}
}
