package scene

import (
	"context"
	"log/slog"

	"github.com/YishiMichael/morphing-sub001/config"
	"github.com/YishiMichael/morphing-sub001/core"
	"github.com/YishiMichael/morphing-sub001/engine"
	"github.com/YishiMichael/morphing-sub001/mobject"
	"github.com/YishiMichael/morphing-sub001/rate"
)

// Context is the recording surface handed to a scene function
// Confined to the scene's goroutine
type Context struct {
	ctx    context.Context
	clock  *engine.SceneClock
	rec    *engine.Recorder
	cfg    *config.View
	logger *slog.Logger
}

// Context returns the run's cancellation context
func (c *Context) Context() context.Context { return c.ctx }

// Config returns the scene's config view
func (c *Context) Config() *config.View { return c.cfg }

// Logger returns the scene logger
func (c *Context) Logger() *slog.Logger { return c.logger }

// Recorder returns the recorder handles are spawned into
func (c *Context) Recorder() *engine.Recorder { return c.rec }

// Now returns the scene time
func (c *Context) Now() core.Time { return c.clock.Now() }

// Wait advances scene time by d seconds
func (c *Context) Wait(d float64) { c.clock.Wait(d) }

// Show keeps m on screen until the handle ends or the scene returns
func (c *Context) Show(m mobject.Mobject) *engine.AliveHandle[*engine.Steady] {
	return engine.Start(c.rec, &engine.Steady{Mobject: m})
}

// Hold shows m for d seconds
func (c *Context) Hold(m mobject.Mobject, d float64) {
	engine.Scope(c.rec, &engine.Steady{Mobject: m}, func(*engine.AliveHandle[*engine.Steady]) {
		c.Wait(d)
	})
}

// Play interpolates src into dst over d seconds and returns dst
func (c *Context) Play(src, dst mobject.Mobject, d float64, rates ...rate.Rate) mobject.Mobject {
	engine.Scope(c.rec, &engine.Action{Source: src, Target: dst, Rates: rates}, func(*engine.AliveHandle[*engine.Action]) {
		c.Wait(d)
	})
	return dst
}

// Animate runs u on m for d seconds and returns the final state
func (c *Context) Animate(m mobject.Mobject, u mobject.Updater, d float64, rates ...rate.Rate) (mobject.Mobject, error) {
	p := engine.Scope(c.rec, &engine.Continuous{Mobject: m, Updater: u, Rates: rates}, func(*engine.AliveHandle[*engine.Continuous]) {
		c.Wait(d)
	})
	return p.State(d)
}

// Group records fn's handles as one composite entry sharing this clock
func (c *Context) Group(fn func(*Context) error) error {
	d := engine.NewDiscrete(c.rec)
	h := engine.Start(c.rec, d)
	defer h.Close()

	child := *c
	child.rec = d.Recorder()
	return fn(&child)
}
