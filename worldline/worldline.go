// Package worldline binds timeline entries to presentation storage
package worldline

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/YishiMichael/morphing-sub001/core"
	"github.com/YishiMichael/morphing-sub001/mobject"
	"github.com/YishiMichael/morphing-sub001/storage"
	"github.com/YishiMichael/morphing-sub001/timeline"
)

// Variant selects the storage discipline of a worldline
type Variant uint8

const (
	// Static is content-addressed, shared and built once
	Static Variant = iota
	// Dynamic is call-site addressed and refreshed at every query
	Dynamic
)

func (v Variant) String() string {
	switch v {
	case Static:
		return "static"
	case Dynamic:
		return "dynamic"
	default:
		return fmt.Sprintf("variant(%d)", uint8(v))
	}
}

var (
	ErrUnknownVariant = errors.New("unknown variant")
	ErrKeyConflict    = errors.New("storage key conflict")
	ErrNoBinding      = errors.New("no binding for mobject kind")
)

// Worldline is the declared observation of one entry
// Kind is the leading mobject kind and picks the binding; Callsite is the
// entry path inside the record and only addresses Dynamic worldlines
type Worldline struct {
	Kind     string
	Variant  Variant
	Callsite string
	Entry    timeline.Entry
}

// NewStatic declares a content-addressed worldline over e
func NewStatic(e timeline.Entry) Worldline {
	return Worldline{Kind: timeline.Leading(e.Content).Kind(), Variant: Static, Entry: e}
}

// NewDynamic declares a worldline over e addressed by callsite
func NewDynamic(e timeline.Entry, callsite string) Worldline {
	return Worldline{Kind: timeline.Leading(e.Content).Kind(), Variant: Dynamic, Callsite: callsite, Entry: e}
}

// For picks the variant from the entry content: static content is shared
func For(e timeline.Entry, callsite string) Worldline {
	if e.Content != nil && e.Content.Kind() == timeline.KindStatic {
		return NewStatic(e)
	}
	return NewDynamic(e, callsite)
}

// TypeID returns the storage partition for this worldline
func (w Worldline) TypeID() storage.TypeID {
	return storage.TypeID{Kind: w.Kind, Variant: w.Variant.String()}
}

// Observe refreshes the logical state at t
func (w Worldline) Observe(t core.Time) (mobject.Mobject, error) {
	return timeline.Collapse(w.Entry, t)
}

type dynamicInput struct {
	Callsite string            `msgpack:"callsite"`
	Content  string            `msgpack:"content"`
	Kind     string            `msgpack:"kind"`
	Interval core.TimeInterval `msgpack:"interval"`
}

// KeyInput is the canonical projection hashed into the storage key
// Static worldlines project their content; Dynamic ones project identity only
func (w Worldline) KeyInput() ([]byte, error) {
	if w.Entry.Content == nil {
		return nil, fmt.Errorf("worldline %q has no content", w.Callsite)
	}
	var v any
	switch w.Variant {
	case Static:
		m := timeline.Leading(w.Entry.Content)
		v = []any{m.Kind(), m}
	case Dynamic:
		v = dynamicInput{
			Callsite: w.Callsite,
			Content:  string(w.Entry.Content.Kind()),
			Kind:     w.Kind,
			Interval: w.Entry.Interval,
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownVariant, w.Variant)
	}

	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetSortMapKeys(true)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("encode key input: %w", err)
	}
	return buf.Bytes(), nil
}

// Allocate derives the storage key for w from gen
func Allocate(w Worldline, gen *storage.KeyGenerator) (storage.Key, error) {
	input, err := w.KeyInput()
	if err != nil {
		return storage.Key{}, err
	}
	sum := xxhash.Sum64(input)
	switch w.Variant {
	case Static:
		return gen.Static(w.TypeID(), sum), nil
	case Dynamic:
		k, _ := gen.Dynamic(w.TypeID(), w.Callsite, sum)
		return k, nil
	default:
		return storage.Key{}, fmt.Errorf("%w: %s", ErrUnknownVariant, w.Variant)
	}
}
