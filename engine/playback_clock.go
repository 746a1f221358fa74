package engine

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/YishiMichael/morphing-sub001/core"
)

// PlaybackClock maps wall time onto scene time for live preview
// Pausing freezes scene time; the session is the recorded interval
type PlaybackClock struct {
	mu sync.RWMutex

	provider  TimeProvider
	session   core.TimeInterval
	realStart time.Time
	offset    core.Time // scene time at realStart

	isPaused        atomic.Bool
	pauseStartTime  time.Time
	totalPausedTime time.Duration
}

// NewPlaybackClock starts playback of session at its start
func NewPlaybackClock(session core.TimeInterval, provider TimeProvider) *PlaybackClock {
	if provider == nil {
		provider = NewMonotonicTimeProvider()
	}
	return &PlaybackClock{
		provider:  provider,
		session:   session,
		realStart: provider.Now(),
		offset:    session.Start,
	}
}

// Now returns the current scene time, clamped to the session end
func (pc *PlaybackClock) Now() core.Time {
	pc.mu.RLock()
	defer pc.mu.RUnlock()

	ref := pc.provider.Now()
	if pc.isPaused.Load() {
		ref = pc.pauseStartTime
	}
	elapsed := ref.Sub(pc.realStart) - pc.totalPausedTime
	t := pc.offset.Add(elapsed.Seconds())
	if t > pc.session.End {
		return pc.session.End
	}
	return t
}

// SessionInterval returns the recorded session being played
func (pc *PlaybackClock) SessionInterval() core.TimeInterval {
	return pc.session
}

// Finished reports whether playback reached the session end
func (pc *PlaybackClock) Finished() bool {
	return pc.Now() >= pc.session.End
}

// Pause stops scene time advancement
func (pc *PlaybackClock) Pause() {
	if pc.isPaused.CompareAndSwap(false, true) {
		pc.mu.Lock()
		defer pc.mu.Unlock()
		pc.pauseStartTime = pc.provider.Now()
	}
}

// Resume continues scene time advancement
func (pc *PlaybackClock) Resume() {
	if pc.isPaused.CompareAndSwap(true, false) {
		pc.mu.Lock()
		defer pc.mu.Unlock()
		if !pc.pauseStartTime.IsZero() {
			pc.totalPausedTime += pc.provider.Now().Sub(pc.pauseStartTime)
			pc.pauseStartTime = time.Time{}
		}
	}
}

// Toggle flips the pause state and returns the new state
func (pc *PlaybackClock) Toggle() bool {
	if pc.isPaused.Load() {
		pc.Resume()
		return false
	}
	pc.Pause()
	return true
}

// IsPaused returns current pause state
func (pc *PlaybackClock) IsPaused() bool {
	return pc.isPaused.Load()
}

// Seek restarts playback from scene time t
func (pc *PlaybackClock) Seek(t core.Time) {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	if t < pc.session.Start {
		t = pc.session.Start
	}
	now := pc.provider.Now()
	pc.realStart = now
	pc.offset = t
	pc.totalPausedTime = 0
	if pc.isPaused.Load() {
		pc.pauseStartTime = now
	}
}
