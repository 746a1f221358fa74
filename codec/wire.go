package codec

import (
	"encoding/json"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/YishiMichael/morphing-sub001/core"
	"github.com/YishiMichael/morphing-sub001/mobject"
	"github.com/YishiMichael/morphing-sub001/rate"
	"github.com/YishiMichael/morphing-sub001/timeline"
)

// tagged is the envelope of every polymorphic value on the wire
// R is the raw form of the payload in the active format
type tagged[R ~[]byte] struct {
	Kind string `json:"kind" msgpack:"kind"`
	Data R      `json:"data,omitempty" msgpack:"data,omitempty"`
}

type wireRecord[R ~[]byte] struct {
	ID       string            `json:"id" msgpack:"id"`
	Scene    string            `json:"scene" msgpack:"scene"`
	Interval core.TimeInterval `json:"interval" msgpack:"interval"`
	Entries  []wireEntry[R]    `json:"entries" msgpack:"entries"`
}

type wireEntry[R ~[]byte] struct {
	Interval core.TimeInterval `json:"interval" msgpack:"interval"`
	Metric   timeline.Metric   `json:"metric" msgpack:"metric"`
	Rates    []tagged[R]       `json:"rates,omitempty" msgpack:"rates,omitempty"`
	Content  tagged[R]         `json:"content" msgpack:"content"`
}

type staticData[R ~[]byte] struct {
	Mobject tagged[R] `json:"mobject" msgpack:"mobject"`
}

type actionData[R ~[]byte] struct {
	Source tagged[R] `json:"source" msgpack:"source"`
	Target tagged[R] `json:"target" msgpack:"target"`
}

type continuousData[R ~[]byte] struct {
	Mobject tagged[R] `json:"mobject" msgpack:"mobject"`
	Updater tagged[R] `json:"updater" msgpack:"updater"`
}

type discreteData[R ~[]byte] struct {
	Span    core.TimeInterval `json:"span" msgpack:"span"`
	Entries []wireEntry[R]    `json:"entries" msgpack:"entries"`
}

type groupData[R ~[]byte] struct {
	Members []tagged[R] `json:"members" msgpack:"members"`
}

// wire converts between domain values and their tagged wire form
type wire[R ~[]byte] struct {
	marshal   func(any) ([]byte, error)
	unmarshal func([]byte, any) error
}

var (
	jsonWire    = wire[json.RawMessage]{marshal: json.Marshal, unmarshal: json.Unmarshal}
	msgpackWire = wire[msgpack.RawMessage]{marshal: msgpack.Marshal, unmarshal: msgpack.Unmarshal}
)

func (w wire[R]) tag(kind string, v any) (tagged[R], error) {
	b, err := w.marshal(v)
	if err != nil {
		return tagged[R]{}, fmt.Errorf("encode %s: %w", kind, err)
	}
	return tagged[R]{Kind: kind, Data: R(b)}, nil
}

func (w wire[R]) untag(t tagged[R], v any) error {
	if len(t.Data) == 0 {
		return fmt.Errorf("%s: missing data", t.Kind)
	}
	if err := w.unmarshal([]byte(t.Data), v); err != nil {
		return fmt.Errorf("decode %s: %w", t.Kind, err)
	}
	return nil
}

// === Encoding ===

func (w wire[R]) record(rec *Record) (*wireRecord[R], error) {
	out := &wireRecord[R]{ID: rec.ID.String(), Scene: rec.Scene, Interval: rec.Interval}
	entries, err := w.entries(rec.Entries)
	if err != nil {
		return nil, err
	}
	out.Entries = entries
	return out, nil
}

func (w wire[R]) entries(in []timeline.Entry) ([]wireEntry[R], error) {
	out := make([]wireEntry[R], len(in))
	for i, e := range in {
		we, err := w.entry(e)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		out[i] = we
	}
	return out, nil
}

func (w wire[R]) entry(e timeline.Entry) (wireEntry[R], error) {
	out := wireEntry[R]{Interval: e.Interval, Metric: e.Metric}
	for _, r := range e.Rates {
		t, err := w.tag(r.Kind(), r)
		if err != nil {
			return out, err
		}
		out.Rates = append(out.Rates, t)
	}
	content, err := w.content(e.Content)
	if err != nil {
		return out, err
	}
	out.Content = content
	return out, nil
}

func (w wire[R]) content(c timeline.Content) (tagged[R], error) {
	kind := ""
	var data any
	switch v := c.(type) {
	case *timeline.Static:
		m, err := w.mobject(v.Mobject)
		if err != nil {
			return tagged[R]{}, err
		}
		kind, data = string(timeline.KindStatic), staticData[R]{Mobject: m}
	case *timeline.Action:
		src, err := w.mobject(v.Source)
		if err != nil {
			return tagged[R]{}, err
		}
		dst, err := w.mobject(v.Target)
		if err != nil {
			return tagged[R]{}, err
		}
		kind, data = string(timeline.KindAction), actionData[R]{Source: src, Target: dst}
	case *timeline.Continuous:
		m, err := w.mobject(v.Mobject)
		if err != nil {
			return tagged[R]{}, err
		}
		u, err := w.tag(v.Updater.Kind(), v.Updater)
		if err != nil {
			return tagged[R]{}, err
		}
		kind, data = string(timeline.KindContinuous), continuousData[R]{Mobject: m, Updater: u}
	case *timeline.Discrete:
		children, err := w.entries(v.Entries)
		if err != nil {
			return tagged[R]{}, err
		}
		kind, data = string(timeline.KindDiscrete), discreteData[R]{Span: v.Span, Entries: children}
	default:
		return tagged[R]{}, fmt.Errorf("unsupported content %T", c)
	}
	return w.tag(kind, data)
}

func (w wire[R]) mobject(m mobject.Mobject) (tagged[R], error) {
	if m == nil {
		return tagged[R]{}, fmt.Errorf("nil mobject")
	}
	g, ok := m.(*mobject.Group)
	if !ok {
		return w.tag(m.Kind(), m)
	}
	data := groupData[R]{Members: make([]tagged[R], len(g.Members))}
	for i, member := range g.Members {
		t, err := w.mobject(member)
		if err != nil {
			return tagged[R]{}, fmt.Errorf("member %d: %w", i, err)
		}
		data.Members[i] = t
	}
	return w.tag(mobject.KindGroup, data)
}

// === Decoding ===

func (w wire[R]) fromEntries(in []wireEntry[R]) ([]timeline.Entry, error) {
	out := make([]timeline.Entry, len(in))
	for i, we := range in {
		e, err := w.fromEntry(we)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		out[i] = e
	}
	return out, nil
}

func (w wire[R]) fromEntry(we wireEntry[R]) (timeline.Entry, error) {
	e := timeline.Entry{Interval: we.Interval, Metric: we.Metric}
	for _, t := range we.Rates {
		r, err := rate.New(t.Kind)
		if err != nil {
			return e, err
		}
		if len(t.Data) > 0 {
			if err := w.untag(t, r); err != nil {
				return e, err
			}
		}
		e.Rates = append(e.Rates, r)
	}
	c, err := w.fromContent(we.Content)
	if err != nil {
		return e, err
	}
	e.Content = c
	return e, nil
}

func (w wire[R]) fromContent(t tagged[R]) (timeline.Content, error) {
	switch timeline.ContentKind(t.Kind) {
	case timeline.KindStatic:
		var d staticData[R]
		if err := w.untag(t, &d); err != nil {
			return nil, err
		}
		m, err := w.fromMobject(d.Mobject)
		if err != nil {
			return nil, err
		}
		return &timeline.Static{Mobject: m}, nil
	case timeline.KindAction:
		var d actionData[R]
		if err := w.untag(t, &d); err != nil {
			return nil, err
		}
		src, err := w.fromMobject(d.Source)
		if err != nil {
			return nil, err
		}
		dst, err := w.fromMobject(d.Target)
		if err != nil {
			return nil, err
		}
		return &timeline.Action{Source: src, Target: dst}, nil
	case timeline.KindContinuous:
		var d continuousData[R]
		if err := w.untag(t, &d); err != nil {
			return nil, err
		}
		m, err := w.fromMobject(d.Mobject)
		if err != nil {
			return nil, err
		}
		u, err := mobject.NewUpdater(d.Updater.Kind)
		if err != nil {
			return nil, err
		}
		if len(d.Updater.Data) > 0 {
			if err := w.untag(d.Updater, u); err != nil {
				return nil, err
			}
		}
		return &timeline.Continuous{Mobject: m, Updater: u}, nil
	case timeline.KindDiscrete:
		var d discreteData[R]
		if err := w.untag(t, &d); err != nil {
			return nil, err
		}
		children, err := w.fromEntries(d.Entries)
		if err != nil {
			return nil, err
		}
		return &timeline.Discrete{Span: d.Span, Entries: children}, nil
	default:
		return nil, fmt.Errorf("unknown content kind %q", t.Kind)
	}
}

func (w wire[R]) fromMobject(t tagged[R]) (mobject.Mobject, error) {
	if t.Kind == mobject.KindGroup {
		var d groupData[R]
		if err := w.untag(t, &d); err != nil {
			return nil, err
		}
		g := &mobject.Group{Members: make([]mobject.Mobject, len(d.Members))}
		for i, mt := range d.Members {
			m, err := w.fromMobject(mt)
			if err != nil {
				return nil, fmt.Errorf("member %d: %w", i, err)
			}
			g.Members[i] = m
		}
		return g, nil
	}
	m, err := mobject.New(t.Kind)
	if err != nil {
		return nil, err
	}
	if err := w.untag(t, m); err != nil {
		return nil, err
	}
	return m, nil
}
