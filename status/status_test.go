package status

import (
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricMapCachesPointer(t *testing.T) {
	m := NewMetricMap[AtomicFloat]()
	a := m.Get("x")
	a.Set(1.5)
	if b := m.Get("x"); b != a {
		t.Error("Expected cached pointer on second Get")
	}
	if got := m.Get("x").Get(); got != 1.5 {
		t.Errorf("Expected 1.5, got %f", got)
	}
}

func TestRegistryConcurrentInc(t *testing.T) {
	reg := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				reg.Inc("worldline.prepare_new")
			}
		}()
	}
	wg.Wait()
	if got := reg.Int("worldline.prepare_new"); got != 800 {
		t.Errorf("Expected 800, got %d", got)
	}
	if got := reg.Int("missing"); got != 0 || reg.Ints.Has("missing") {
		t.Errorf("Expected unregistered zero read, got %d", got)
	}
}

func TestAtomicFloatAdd(t *testing.T) {
	var f AtomicFloat
	f.Add(0.25)
	if got := f.Add(0.5); got != 0.75 {
		t.Errorf("Expected 0.75, got %f", got)
	}
}

func TestAtomicStringTruncates(t *testing.T) {
	var s AtomicString
	s.Store(strings.Repeat("a", MaxStringLen+10))
	if got := len(s.Load()); got != MaxStringLen {
		t.Errorf("Expected length %d, got %d", MaxStringLen, got)
	}
}

func TestCollectorExport(t *testing.T) {
	reg := NewRegistry()
	reg.Ints.Get("storage.drift").Store(2)
	reg.Bools.Get("present.paused").Store(true)
	reg.Floats.Get("present.frame_ms").Set(4.5)

	c := NewCollector(reg, "morphing")
	if n := testutil.CollectAndCount(c); n != 3 {
		t.Errorf("Expected 3 metrics, got %d", n)
	}

	want := `
# HELP morphing_storage_drift engine metric storage.drift
# TYPE morphing_storage_drift gauge
morphing_storage_drift 2
`
	if err := testutil.CollectAndCompare(c, strings.NewReader(want), "morphing_storage_drift"); err != nil {
		t.Errorf("Unexpected collector output: %v", err)
	}
}

func TestSnapshot(t *testing.T) {
	reg := NewRegistry()
	reg.Inc("a")
	reg.Bools.Get("b").Store(true)
	snap := reg.Snapshot()
	if snap["a"] != 1 || snap["b"] != 1 {
		t.Errorf("Expected a=1 b=1, got %v", snap)
	}
}
