package worldline

import (
	"fmt"
	"log/slog"

	"github.com/YishiMichael/morphing-sub001/core"
	"github.com/YishiMichael/morphing-sub001/device"
	"github.com/YishiMichael/morphing-sub001/mobject"
	"github.com/YishiMichael/morphing-sub001/status"
	"github.com/YishiMichael/morphing-sub001/storage"
)

// Metric keys written by Prepare
const (
	MetricPrepareNew    = "worldline.prepare_new"
	MetricIncremental   = "worldline.incremental"
	MetricReuseFailure  = "worldline.reuse_failure"
	MetricStaticShared  = "worldline.static_shared"
	MetricStaticCarried = "worldline.static_carried"
	MetricDrift         = "storage.drift"
)

// Resource is a prepared presentation owned by storage
type Resource interface {
	ByteSize() int
}

// Binding builds and updates resources for one mobject kind
// PrepareIncremental returns core.ReuseFailure when res cannot absorb m
type Binding struct {
	PrepareNew         func(ctx *Context, m mobject.Mobject) (Resource, error)
	PrepareIncremental func(ctx *Context, m mobject.Mobject, res Resource) error
}

// Bindings is the dispatch table from mobject kind to binding
type Bindings map[string]Binding

// Context carries the collaborators of one prepare pass
type Context struct {
	Storage  *storage.TypeMap
	Keys     *storage.KeyGenerator
	Bindings Bindings
	Device   device.Device
	Status   *status.Registry
	Logger   *slog.Logger
}

type (
	staticStore  = storage.Swap[*storage.Map[storage.Key, *storage.Read[Resource]]]
	dynamicStore = storage.Swap[*storage.Map[string, *storage.ReadWrite[Resource]]]
)

func newStaticStore() *staticStore {
	return storage.NewSwap(func() *storage.Map[storage.Key, *storage.Read[Resource]] {
		return storage.NewMap[storage.Key](storage.NewRead[Resource])
	})
}

func newDynamicStore() *dynamicStore {
	return storage.NewSwap(func() *storage.Map[string, *storage.ReadWrite[Resource]] {
		return storage.NewMap[string](storage.NewReadWrite[Resource])
	})
}

// Prepare makes the resource for w at t available under key
// A ReuseFailure returned from here means storage is corrupt; incremental
// failures are absorbed by rebuilding
func Prepare(ctx *Context, w Worldline, key storage.Key, t core.Time) (Resource, error) {
	switch w.Variant {
	case Static:
		return prepareStatic(ctx, w, key, t)
	case Dynamic:
		return prepareDynamic(ctx, w, key, t)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownVariant, w.Variant)
	}
}

func prepareStatic(ctx *Context, w Worldline, key storage.Key, t core.Time) (Resource, error) {
	sw := storage.Lookup(ctx.Storage, w.TypeID(), newStaticStore)

	if slot, ok := sw.Active().Lookup(key); ok {
		res, ok := slot.Get()
		if !ok {
			return nil, core.NewReuseFailure("static slot %s has no resource", key)
		}
		ctx.inc(MetricStaticShared)
		return res, nil
	}

	if slot, ok := sw.Inactive().Lookup(key); ok {
		res, ok := slot.Get()
		if !ok {
			return nil, core.NewReuseFailure("static slot %s has no resource in previous frame", key)
		}
		sw.Active().Get(key).Set(res)
		ctx.inc(MetricStaticCarried)
		return res, nil
	}

	res, err := prepareNew(ctx, w, t)
	if err != nil {
		return nil, err
	}
	sw.Active().Get(key).Set(res)
	return res, nil
}

func prepareDynamic(ctx *Context, w Worldline, key storage.Key, t core.Time) (Resource, error) {
	sw := storage.Lookup(ctx.Storage, w.TypeID(), newDynamicStore)

	slots := sw.Active().Get(key.Slot)
	if slots.Len() != key.Ordinal {
		return nil, fmt.Errorf("%w: %s, next ordinal is %d", ErrKeyConflict, key, slots.Len())
	}

	b, err := ctx.binding(w.Kind)
	if err != nil {
		return nil, err
	}
	m, err := w.Observe(t)
	if err != nil {
		return nil, err
	}

	var res Resource
	if prev, ok := previous(sw, key); ok {
		if ctx.Keys != nil && ctx.Keys.Drifted(key) {
			ctx.inc(MetricDrift)
			ctx.logger().Warn("storage key drift, rebuilding", "key", key.String())
		} else {
			err := b.PrepareIncremental(ctx, m, prev)
			switch {
			case err == nil:
				res = prev
				ctx.inc(MetricIncremental)
			case core.IsReuseFailure(err):
				ctx.inc(MetricReuseFailure)
				ctx.logger().Debug("incremental prepare rejected", "key", key.String(), "reason", err.Error())
			default:
				return nil, fmt.Errorf("prepare %s: %w", key, err)
			}
		}
	}

	if res == nil {
		if res, err = b.PrepareNew(ctx, m); err != nil {
			return nil, fmt.Errorf("prepare %s: %w", key, err)
		}
		ctx.inc(MetricPrepareNew)
	}
	slots.Push(res)
	return res, nil
}

func previous(sw *dynamicStore, key storage.Key) (Resource, bool) {
	slots, ok := sw.Inactive().Lookup(key.Slot)
	if !ok {
		return nil, false
	}
	return slots.Get(key.Ordinal)
}

func prepareNew(ctx *Context, w Worldline, t core.Time) (Resource, error) {
	b, err := ctx.binding(w.Kind)
	if err != nil {
		return nil, err
	}
	m, err := w.Observe(t)
	if err != nil {
		return nil, err
	}
	res, err := b.PrepareNew(ctx, m)
	if err != nil {
		return nil, fmt.Errorf("prepare %s: %w", w.Kind, err)
	}
	ctx.inc(MetricPrepareNew)
	return res, nil
}

func (ctx *Context) binding(kind string) (Binding, error) {
	b, ok := ctx.Bindings[kind]
	if !ok || b.PrepareNew == nil {
		return Binding{}, fmt.Errorf("%w: %s", ErrNoBinding, kind)
	}
	if b.PrepareIncremental == nil {
		b.PrepareIncremental = func(*Context, mobject.Mobject, Resource) error {
			return core.NewReuseFailure("%s has no incremental path", kind)
		}
	}
	return b, nil
}

func (ctx *Context) inc(key string) {
	if ctx.Status != nil {
		ctx.Status.Inc(key)
	}
}

func (ctx *Context) logger() *slog.Logger {
	if ctx.Logger != nil {
		return ctx.Logger
	}
	return slog.Default()
}
