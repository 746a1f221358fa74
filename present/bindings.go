package present

import (
	"fmt"

	"github.com/YishiMichael/morphing-sub001/audio"
	"github.com/YishiMichael/morphing-sub001/core"
	"github.com/YishiMichael/morphing-sub001/device"
	"github.com/YishiMichael/morphing-sub001/mobject"
	"github.com/YishiMichael/morphing-sub001/worldline"
)

// GroupResource holds one prepared resource per group member
type GroupResource struct {
	Members []worldline.Resource
}

// ByteSize sums member sizes
func (g *GroupResource) ByteSize() int {
	n := 0
	for _, m := range g.Members {
		n += m.ByteSize()
	}
	return n
}

// NewBindings returns the dispatch table for every built-in mobject kind
func NewBindings(synth *audio.Synth) worldline.Bindings {
	return worldline.Bindings{
		mobject.KindShape: {
			PrepareNew: func(ctx *worldline.Context, m mobject.Mobject) (worldline.Resource, error) {
				s, err := as[*mobject.Shape](m)
				if err != nil {
					return nil, err
				}
				return device.PrepareShape(ctx.Device, s)
			},
			PrepareIncremental: func(ctx *worldline.Context, m mobject.Mobject, res worldline.Resource) error {
				s, err := as[*mobject.Shape](m)
				if err != nil {
					return err
				}
				r, ok := res.(*device.ShapeResource)
				if !ok {
					return core.NewReuseFailure("shape into %T", res)
				}
				return device.UpdateShape(ctx.Device, s, r)
			},
		},
		mobject.KindTone: {
			PrepareNew: func(_ *worldline.Context, m mobject.Mobject) (worldline.Resource, error) {
				tn, err := as[*mobject.Tone](m)
				if err != nil {
					return nil, err
				}
				return synth.PrepareTone(tn)
			},
			PrepareIncremental: func(_ *worldline.Context, m mobject.Mobject, res worldline.Resource) error {
				tn, err := as[*mobject.Tone](m)
				if err != nil {
					return err
				}
				r, ok := res.(*audio.ToneResource)
				if !ok {
					return core.NewReuseFailure("tone into %T", res)
				}
				return synth.UpdateTone(tn, r)
			},
		},
		mobject.KindGroup: {
			PrepareNew:         prepareGroup,
			PrepareIncremental: updateGroup,
		},
	}
}

func prepareGroup(ctx *worldline.Context, m mobject.Mobject) (worldline.Resource, error) {
	g, err := as[*mobject.Group](m)
	if err != nil {
		return nil, err
	}
	out := &GroupResource{Members: make([]worldline.Resource, len(g.Members))}
	for i, member := range g.Members {
		b, err := memberBinding(ctx, member)
		if err != nil {
			return nil, err
		}
		if out.Members[i], err = b.PrepareNew(ctx, member); err != nil {
			return nil, fmt.Errorf("member %d: %w", i, err)
		}
	}
	return out, nil
}

// updateGroup rejects membership changes so the whole group is rebuilt
func updateGroup(ctx *worldline.Context, m mobject.Mobject, res worldline.Resource) error {
	g, err := as[*mobject.Group](m)
	if err != nil {
		return err
	}
	r, ok := res.(*GroupResource)
	if !ok {
		return core.NewReuseFailure("group into %T", res)
	}
	if len(r.Members) != len(g.Members) {
		return core.NewReuseFailure("group of %d members, resource holds %d", len(g.Members), len(r.Members))
	}
	for i, member := range g.Members {
		b, err := memberBinding(ctx, member)
		if err != nil {
			return err
		}
		if b.PrepareIncremental == nil {
			return core.NewReuseFailure("%s has no incremental path", member.Kind())
		}
		if err := b.PrepareIncremental(ctx, member, r.Members[i]); err != nil {
			return err
		}
	}
	return nil
}

func memberBinding(ctx *worldline.Context, m mobject.Mobject) (worldline.Binding, error) {
	b, ok := ctx.Bindings[m.Kind()]
	if !ok || b.PrepareNew == nil {
		return worldline.Binding{}, fmt.Errorf("%w: %s", worldline.ErrNoBinding, m.Kind())
	}
	return b, nil
}

func as[T mobject.Mobject](m mobject.Mobject) (T, error) {
	v, ok := m.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: binding for %T got %s", mobject.ErrIncompatible, zero, m.Kind())
	}
	return v, nil
}
