package worldline

import (
	"errors"
	"testing"

	"github.com/YishiMichael/morphing-sub001/core"
	"github.com/YishiMichael/morphing-sub001/device"
	"github.com/YishiMichael/morphing-sub001/mobject"
	"github.com/YishiMichael/morphing-sub001/status"
	"github.com/YishiMichael/morphing-sub001/storage"
	"github.com/YishiMichael/morphing-sub001/timeline"
)

var white = mobject.Color{R: 1, G: 1, B: 1, A: 1}

// grow doubles the vertex count of a square once p reaches 0.5
type grow struct{}

func (grow) Kind() string { return "grow" }
func (grow) Update(m mobject.Mobject, p float64) (mobject.Mobject, error) {
	n := 4
	if p >= 0.5 {
		n = 8
	}
	return mobject.RegularPolygon(0, 0, 1, n, white), nil
}

func newTestContext(dev *device.Memory) *Context {
	return &Context{
		Storage: storage.NewTypeMap(),
		Keys:    storage.NewKeyGenerator(),
		Device:  dev,
		Status:  status.NewRegistry(),
		Bindings: Bindings{
			mobject.KindShape: {
				PrepareNew: func(ctx *Context, m mobject.Mobject) (Resource, error) {
					return device.PrepareShape(ctx.Device, m.(*mobject.Shape))
				},
				PrepareIncremental: func(ctx *Context, m mobject.Mobject, res Resource) error {
					return device.UpdateShape(ctx.Device, m.(*mobject.Shape), res.(*device.ShapeResource))
				},
			},
		},
	}
}

// frame runs fn as one prepare pass bracketed by BeginFrame and Expire
func frame(t *testing.T, ctx *Context, fn func()) {
	t.Helper()
	if err := ctx.Storage.BeginFrame(); err != nil {
		t.Fatalf("BeginFrame: %v", err)
	}
	ctx.Keys.Reset()
	fn()
	ctx.Storage.Expire()
}

func staticEntry(s *mobject.Shape) timeline.Entry {
	return timeline.Entry{
		Interval: core.TimeInterval{Start: 0, End: 4},
		Metric:   timeline.Relative,
		Content:  &timeline.Static{Mobject: s},
	}
}

func growEntry(end core.Time) timeline.Entry {
	return timeline.Entry{
		Interval: core.TimeInterval{Start: 0, End: end},
		Metric:   timeline.Relative,
		Content:  &timeline.Continuous{Mobject: mobject.RegularPolygon(0, 0, 1, 4, white), Updater: grow{}},
	}
}

func mustPrepare(t *testing.T, ctx *Context, w Worldline, at core.Time) Resource {
	t.Helper()
	key, err := Allocate(w, ctx.Keys)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	res, err := Prepare(ctx, w, key, at)
	if err != nil {
		t.Fatalf("Prepare %s: %v", key, err)
	}
	return res
}

func TestForPicksVariant(t *testing.T) {
	if w := For(staticEntry(mobject.Rect(0, 0, 1, 1, white)), "0"); w.Variant != Static {
		t.Errorf("Expected static variant, got %s", w.Variant)
	}
	if w := For(growEntry(2), "0"); w.Variant != Dynamic || w.Kind != mobject.KindShape {
		t.Errorf("Expected dynamic shape worldline, got %s %s", w.Variant, w.Kind)
	}
}

func TestStaticSharingByContent(t *testing.T) {
	gen := storage.NewKeyGenerator()
	a := NewStatic(staticEntry(mobject.Rect(0, 0, 1, 1, white)))
	b := NewStatic(staticEntry(mobject.Rect(0, 0, 1, 1, white)))
	c := NewStatic(staticEntry(mobject.Rect(5, 0, 1, 1, white)))

	ka, _ := Allocate(a, gen)
	kb, _ := Allocate(b, gen)
	kc, _ := Allocate(c, gen)
	if ka != kb {
		t.Errorf("Expected identical content to share a key, got %s and %s", ka, kb)
	}
	if ka == kc {
		t.Errorf("Expected distinct content to get distinct keys, both %s", ka)
	}

	dev := device.NewMemory()
	ctx := newTestContext(dev)
	frame(t, ctx, func() {
		ra := mustPrepare(t, ctx, a, 1)
		rb := mustPrepare(t, ctx, b, 1)
		if ra != rb {
			t.Error("Expected shared resource for identical static content")
		}
	})
	if created, _, _ := dev.Stats(); created != 2 {
		t.Errorf("Expected one shape (2 buffers), got %d buffers", created)
	}
	if got := ctx.Status.Int(MetricStaticShared); got != 1 {
		t.Errorf("Expected 1 shared hit, got %d", got)
	}
}

func TestStaticCarriedAcrossFrames(t *testing.T) {
	dev := device.NewMemory()
	ctx := newTestContext(dev)
	w := NewStatic(staticEntry(mobject.Rect(0, 0, 1, 1, white)))

	var first Resource
	frame(t, ctx, func() { first = mustPrepare(t, ctx, w, 0) })
	frame(t, ctx, func() {
		if got := mustPrepare(t, ctx, w, 2); got != first {
			t.Error("Expected static resource carried over")
		}
	})
	frame(t, ctx, func() { mustPrepare(t, ctx, w, 3) })

	if created, writes, _ := dev.Stats(); created != 2 || writes != 0 {
		t.Errorf("Expected a single build and no writes, got %d created / %d writes", created, writes)
	}
	if got := ctx.Status.Int(MetricStaticCarried); got != 2 {
		t.Errorf("Expected 2 carries, got %d", got)
	}
}

func TestStaticCorruptSlot(t *testing.T) {
	ctx := newTestContext(device.NewMemory())
	w := NewStatic(staticEntry(mobject.Rect(0, 0, 1, 1, white)))
	key, _ := Allocate(w, ctx.Keys)

	// An allocated slot with no body
	storage.Lookup(ctx.Storage, w.TypeID(), newStaticStore).Active().Get(key)

	_, err := Prepare(ctx, w, key, 0)
	if !core.IsReuseFailure(err) {
		t.Errorf("Expected ReuseFailure for empty static slot, got %v", err)
	}
}

func TestDynamicSeparatedByCallsite(t *testing.T) {
	gen := storage.NewKeyGenerator()
	a := NewDynamic(growEntry(2), "0")
	b := NewDynamic(growEntry(2), "1")

	ka, _ := Allocate(a, gen)
	kb, _ := Allocate(b, gen)
	if ka == kb {
		t.Fatalf("Expected distinct keys for distinct call sites, both %s", ka)
	}

	ctx := newTestContext(device.NewMemory())
	frame(t, ctx, func() {
		ra := mustPrepare(t, ctx, a, 0)
		rb := mustPrepare(t, ctx, b, 0)
		if ra == rb {
			t.Error("Expected separate resources for separate call sites")
		}
	})
}

func TestDynamicRepeatedCallsiteGetsOrdinals(t *testing.T) {
	gen := storage.NewKeyGenerator()
	w := NewDynamic(growEntry(2), "0")
	k0, _ := Allocate(w, gen)
	k1, _ := Allocate(w, gen)
	if k0.Ordinal != 0 || k1.Ordinal != 1 {
		t.Errorf("Expected ordinals 0 and 1, got %d and %d", k0.Ordinal, k1.Ordinal)
	}
}

func TestDynamicIncrementalReuse(t *testing.T) {
	dev := device.NewMemory()
	ctx := newTestContext(dev)
	w := NewDynamic(growEntry(4), "0")

	var first Resource
	frame(t, ctx, func() { first = mustPrepare(t, ctx, w, 0) })
	frame(t, ctx, func() {
		if got := mustPrepare(t, ctx, w, 1); got != first {
			t.Error("Expected incremental update in place")
		}
	})

	if got := ctx.Status.Int(MetricIncremental); got != 1 {
		t.Errorf("Expected 1 incremental update, got %d", got)
	}
	if _, writes, _ := dev.Stats(); writes != 2 {
		t.Errorf("Expected vertex and style writes, got %d", writes)
	}
}

func TestDynamicDoubledSizeFallsBack(t *testing.T) {
	dev := device.NewMemory()
	ctx := newTestContext(dev)
	w := NewDynamic(growEntry(2), "0")

	var small, big Resource
	frame(t, ctx, func() { small = mustPrepare(t, ctx, w, 0) })
	before := append([]byte(nil), small.(*device.ShapeResource).Vertices.Bytes()...)

	frame(t, ctx, func() { big = mustPrepare(t, ctx, w, 1.5) })

	if big == small {
		t.Fatal("Expected a rebuilt resource after reuse failure")
	}
	if n := big.(*device.ShapeResource).VertexCount(); n != 8 {
		t.Errorf("Expected 8 vertices, got %d", n)
	}
	if big.ByteSize() != small.ByteSize()+32 {
		t.Errorf("Expected vertex bytes doubled, got %d vs %d", big.ByteSize(), small.ByteSize())
	}
	if string(small.(*device.ShapeResource).Vertices.Bytes()) != string(before) {
		t.Error("Expected the old buffer untouched")
	}
	if got := ctx.Status.Int(MetricReuseFailure); got != 1 {
		t.Errorf("Expected 1 reuse failure, got %d", got)
	}
	if got := ctx.Status.Int(MetricPrepareNew); got != 2 {
		t.Errorf("Expected 2 full prepares, got %d", got)
	}
}

func TestDynamicDriftForcesRebuild(t *testing.T) {
	ctx := newTestContext(device.NewMemory())

	var first, second Resource
	frame(t, ctx, func() { first = mustPrepare(t, ctx, NewDynamic(growEntry(2), "0"), 0) })
	frame(t, ctx, func() { second = mustPrepare(t, ctx, NewDynamic(growEntry(3), "0"), 0) })

	if first == second {
		t.Error("Expected drifted key not to reuse the old slot")
	}
	if got := ctx.Status.Int(MetricDrift); got != 1 {
		t.Errorf("Expected 1 drift, got %d", got)
	}
	if got := ctx.Status.Int(MetricIncremental); got != 0 {
		t.Errorf("Expected no incremental update, got %d", got)
	}
}

func TestDynamicKeyConflict(t *testing.T) {
	ctx := newTestContext(device.NewMemory())
	w := NewDynamic(growEntry(2), "0")
	key := storage.Key{Type: w.TypeID(), Slot: "0", Ordinal: 1}

	_, err := Prepare(ctx, w, key, 0)
	if !errors.Is(err, ErrKeyConflict) {
		t.Errorf("Expected ErrKeyConflict, got %v", err)
	}
}

func TestMissingBinding(t *testing.T) {
	ctx := newTestContext(device.NewMemory())
	e := timeline.Entry{
		Interval: core.TimeInterval{Start: 0, End: 1},
		Metric:   timeline.Relative,
		Content:  &timeline.Static{Mobject: &mobject.Tone{Frequency: 440, Amplitude: 1, Wave: mobject.WaveSine}},
	}
	w := NewStatic(e)
	key, _ := Allocate(w, ctx.Keys)
	if _, err := Prepare(ctx, w, key, 0); !errors.Is(err, ErrNoBinding) {
		t.Errorf("Expected ErrNoBinding, got %v", err)
	}
}
