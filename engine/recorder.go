package engine

import (
	"errors"
	"fmt"

	"github.com/YishiMichael/morphing-sub001/core"
	"github.com/YishiMichael/morphing-sub001/timeline"
)

// ErrDoubleEnd marks a handle ended more than once; raised as a panic
var ErrDoubleEnd = errors.New("alive handle ended twice")

// ErrRecorderConsumed marks use of a recorder after Collect; raised as a panic
var ErrRecorderConsumed = errors.New("recorder already collected")

// Archiver is the archive-in-progress payload of an alive handle
// Archive freezes it into an immutable entry over interval
type Archiver interface {
	Archive(interval core.TimeInterval) timeline.Entry
}

type slotState uint8

const (
	slotPending slotState = iota
	slotArchived
	slotDiscarded
)

// slot is one spawn in creation order
type slot struct {
	spawn core.Time
	state slotState
	entry timeline.Entry
	drop  func() // implicit end for still-pending handles
}

// Recorder collects alive handles of one recording session in spawn order
// Confined to a single goroutine; no locking
type Recorder struct {
	clock     core.Clock
	slots     []slot
	pending   int
	collected bool
}

// NewRecorder creates a recorder over clock
func NewRecorder(clock core.Clock) *Recorder {
	return &Recorder{
		clock: clock,
		slots: make([]slot, 0, 16),
	}
}

// Clock returns the recorder's time source
func (r *Recorder) Clock() core.Clock {
	return r.clock
}

// Len returns the number of spawned handles
func (r *Recorder) Len() int {
	return len(r.slots)
}

// Outstanding returns the number of handles not yet ended
func (r *Recorder) Outstanding() int {
	return r.pending
}

func (r *Recorder) mustBeLive() {
	if r.collected {
		panic(ErrRecorderConsumed)
	}
}

// AliveHandle is the in-progress recording of one object's lifetime
// Exclusively owned by the spawner; end exactly once via End, Close or Collect
type AliveHandle[P Archiver] struct {
	rec     *Recorder
	index   int
	spawn   core.Time
	payload P
	ended   bool
}

// Start registers a pending entry at the current time and returns its handle
func Start[P Archiver](r *Recorder, payload P) *AliveHandle[P] {
	r.mustBeLive()

	h := &AliveHandle[P]{
		rec:     r,
		index:   len(r.slots),
		spawn:   r.clock.Now(),
		payload: payload,
	}
	r.slots = append(r.slots, slot{spawn: h.spawn, drop: h.Close})
	r.pending++
	return h
}

// Index returns the position of the handle's entry in creation order
func (h *AliveHandle[P]) Index() int {
	return h.index
}

// Spawn returns the time the handle was started
func (h *AliveHandle[P]) Spawn() core.Time {
	return h.spawn
}

// Payload returns the archive-in-progress for in-flight mutation
func (h *AliveHandle[P]) Payload() P {
	return h.payload
}

// Ended reports whether the handle has been archived
func (h *AliveHandle[P]) Ended() bool {
	return h.ended
}

// End archives the handle at the current time and returns its payload
// A zero-length lifetime leaves no archive. Ending twice panics with ErrDoubleEnd
func (h *AliveHandle[P]) End() P {
	if h.ended {
		panic(fmt.Errorf("%w: handle %d spawned at %g", ErrDoubleEnd, h.index, float64(h.spawn)))
	}
	h.rec.mustBeLive()
	h.ended = true

	s := &h.rec.slots[h.index]
	s.drop = nil
	h.rec.pending--

	end := h.rec.clock.Now()
	if end == h.spawn {
		s.state = slotDiscarded
		return h.payload
	}
	s.entry = h.payload.Archive(core.TimeInterval{Start: h.spawn, End: end})
	s.state = slotArchived
	return h.payload
}

// Close ends the handle if still alive; safe to defer on every exit path
func (h *AliveHandle[P]) Close() {
	if !h.ended {
		h.End()
	}
}

// Scope starts a handle, runs fn, and ends the handle however fn exits
func Scope[P Archiver](r *Recorder, payload P, fn func(h *AliveHandle[P])) P {
	h := Start(r, payload)
	defer h.Close()
	fn(h)
	return h.payload
}

// Collect consumes the recorder, ending outstanding handles at the current time
// Returns the session interval and archived entries in creation order
func (r *Recorder) Collect() (core.TimeInterval, []timeline.Entry) {
	r.mustBeLive()

	for i := range r.slots {
		if r.slots[i].state == slotPending && r.slots[i].drop != nil {
			r.slots[i].drop()
		}
	}
	r.collected = true

	entries := make([]timeline.Entry, 0, len(r.slots))
	for _, s := range r.slots {
		if s.state == slotArchived {
			entries = append(entries, s.entry)
		}
	}
	r.slots = nil
	return r.clock.SessionInterval(), entries
}
