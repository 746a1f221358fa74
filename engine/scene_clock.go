package engine

import (
	"fmt"
	"math"
	"sync"

	"github.com/YishiMichael/morphing-sub001/core"
)

// SceneClock is the controllable recording clock of one scene
// Time only moves forward through Wait/Set
type SceneClock struct {
	mu    sync.RWMutex
	start core.Time
	now   core.Time
}

// NewSceneClock creates a clock at scene time 0
func NewSceneClock() *SceneClock {
	return NewSceneClockAt(0)
}

// NewSceneClockAt creates a clock whose session starts at start
func NewSceneClockAt(start core.Time) *SceneClock {
	return &SceneClock{start: start, now: start}
}

// Now returns the current scene time
func (c *SceneClock) Now() core.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.now
}

// SessionInterval returns [start, now)
func (c *SceneClock) SessionInterval() core.TimeInterval {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return core.TimeInterval{Start: c.start, End: c.now}
}

// Wait advances time by d seconds; negative or NaN durations panic
func (c *SceneClock) Wait(d float64) {
	if d < 0 || math.IsNaN(d) || math.IsInf(d, 0) {
		panic(fmt.Sprintf("scene clock: invalid wait %g", d))
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Set jumps to t, refusing to move backwards
func (c *SceneClock) Set(t core.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t < c.now {
		return fmt.Errorf("scene clock: cannot rewind from %g to %g", float64(c.now), float64(t))
	}
	c.now = t
	return nil
}
