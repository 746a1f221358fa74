// Package scene drives scene functions into records
// Scenes are an explicit list; each runs isolated with its own clock and recorder
package scene

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/YishiMichael/morphing-sub001/codec"
	"github.com/YishiMichael/morphing-sub001/config"
	"github.com/YishiMichael/morphing-sub001/core"
	"github.com/YishiMichael/morphing-sub001/engine"
	"github.com/YishiMichael/morphing-sub001/status"
)

// Func records a scene through its context
type Func func(sc *Context) error

// Scene is a named entry point with optional config overrides
type Scene struct {
	Name   string
	Func   Func
	Config map[string]any
}

// Result is the outcome of one scene
type Result struct {
	Scene   string
	Record  *codec.Record
	Err     error
	Elapsed time.Duration
}

// Options configures a run; zero values fall back to defaults
type Options struct {
	Config *config.Store
	Logger *slog.Logger
	Status *status.Registry
}

func (o Options) withDefaults() Options {
	if o.Config == nil {
		o.Config = config.New(nil)
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Status == nil {
		o.Status = status.NewRegistry()
	}
	return o
}

// Run records every scene concurrently and returns results in input order
// A failing or panicking scene only fails its own result
func Run(ctx context.Context, scenes []Scene, opts Options) []Result {
	opts = opts.withDefaults()
	results := make([]Result, len(scenes))

	g, gctx := errgroup.WithContext(ctx)
	if n := opts.Config.View(nil).Int(config.KeyParallelism, 4); n > 0 {
		g.SetLimit(n)
	}
	for i, s := range scenes {
		g.Go(func() error {
			results[i] = RunOne(gctx, s, opts)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// RunOne records a single scene
func RunOne(ctx context.Context, s Scene, opts Options) Result {
	opts = opts.withDefaults()
	res := Result{Scene: s.Name}
	start := time.Now()
	logger := opts.Logger.With("scene", s.Name)

	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}
	if s.Func == nil {
		res.Err = fmt.Errorf("scene %q has no function", s.Name)
		return res
	}

	clock := engine.NewSceneClock()
	rec := engine.NewRecorder(clock)
	sc := &Context{
		ctx:    ctx,
		clock:  clock,
		rec:    rec,
		cfg:    opts.Config.View(s.Config),
		logger: logger,
	}

	err := core.Isolate(func() error {
		if err := s.Func(sc); err != nil {
			return err
		}
		iv, entries := rec.Collect()
		res.Record = codec.NewRecord(s.Name, iv, entries)
		return nil
	})
	res.Elapsed = time.Since(start)

	if err != nil {
		res.Err = fmt.Errorf("scene %q: %w", s.Name, err)
		res.Record = nil
		opts.Status.Inc("scene.failed")
		opts.Status.Strings.Get("scene.last_failed").Store(s.Name)
		logger.Error("scene failed", "error", err)
		return res
	}
	opts.Status.Inc("scene.recorded")
	logger.Debug("scene recorded",
		"entries", len(res.Record.Entries),
		"duration", res.Record.Interval.Duration(),
		"elapsed", res.Elapsed)
	return res
}

// Find returns the scene named name
func Find(scenes []Scene, name string) (Scene, bool) {
	for _, s := range scenes {
		if s.Name == name {
			return s, true
		}
	}
	return Scene{}, false
}
