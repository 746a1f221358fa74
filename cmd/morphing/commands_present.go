package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gdamore/tcell/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/YishiMichael/morphing-sub001/audio"
	"github.com/YishiMichael/morphing-sub001/codec"
	"github.com/YishiMichael/morphing-sub001/config"
	"github.com/YishiMichael/morphing-sub001/core"
	"github.com/YishiMichael/morphing-sub001/device"
	"github.com/YishiMichael/morphing-sub001/engine"
	"github.com/YishiMichael/morphing-sub001/present"
	"github.com/YishiMichael/morphing-sub001/recordstore"
	"github.com/YishiMichael/morphing-sub001/render"
	"github.com/YishiMichael/morphing-sub001/status"
)

// errQuit ends a preview on user request
var errQuit = errors.New("preview closed")

type presentOptions struct {
	scene       string
	format      string
	fps         float64
	at          float64
	units       float64
	preview     bool
	watch       bool
	metricsAddr string
}

func buildPresentCmd(root *rootOptions) *cobra.Command {
	opts := &presentOptions{}
	cmd := &cobra.Command{
		Use:   "present [file]",
		Short: "Present recorded timelines frame by frame",
		Long: `Present decodes records from a file (or the record store when --db is set
and no file is given) and prepares every frame against an emulated device.

Without --preview a per-record summary is printed. --at prints the items of a
single frame. --watch re-presents the file whenever it changes.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return runPresent(cmd, root, opts, path)
		},
	}
	cmd.Flags().StringVarP(&opts.scene, "scene", "s", "", "Only present this scene")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "Record format: json or msgpack (default from extension)")
	cmd.Flags().Float64Var(&opts.fps, "fps", 0, "Frames per second (default from config)")
	cmd.Flags().Float64Var(&opts.at, "at", -1, "Present a single frame at this time")
	cmd.Flags().Float64Var(&opts.units, "units", 0.75, "World units per terminal cell in preview")
	cmd.Flags().BoolVar(&opts.preview, "preview", false, "Play in the terminal (space pauses, q quits)")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "Re-present when the file changes")
	cmd.Flags().StringVar(&opts.metricsAddr, "metrics-addr", "", "Serve prometheus metrics on this address")
	return cmd
}

func runPresent(cmd *cobra.Command, root *rootOptions, opts *presentOptions, path string) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	view := cfg.View(nil)
	if opts.fps <= 0 {
		opts.fps = view.Float(config.KeyFPS, 30)
	}
	if path == "" && root.dbPath == "" {
		return errors.New("a record file or --db is required")
	}
	if opts.watch && path == "" {
		return errors.New("--watch needs a record file")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := status.NewRegistry()
	if opts.metricsAddr != "" {
		srv, err := serveMetrics(opts.metricsAddr, reg)
		if err != nil {
			return err
		}
		defer srv.Close()
	}

	load := func() ([]*codec.Record, error) {
		if path == "" {
			return loadFromStore(ctx, root.dbPath, opts.scene)
		}
		return loadFromFile(cmd.ErrOrStderr(), path, opts)
	}
	run := func() error {
		recs, err := load()
		if err != nil {
			return err
		}
		synth := audio.NewSynth(view.Int(config.KeySampleRate, 44100), view.Int(config.KeyBlock, 1470))
		if opts.preview {
			return previewRecords(ctx, recs, synth, reg, opts)
		}
		return summarize(cmd.OutOrStdout(), recs, synth, reg, opts)
	}

	if err := run(); err != nil && !errors.Is(err, errQuit) {
		return err
	}
	if !opts.watch {
		return nil
	}
	return watchFile(ctx, path, func() {
		if err := run(); err != nil && !errors.Is(err, errQuit) {
			fmt.Fprintf(cmd.ErrOrStderr(), "present failed: %v\n", err)
		}
	})
}

// formatFor picks the explicit format, else the one implied by the extension
func formatFor(path, explicit string) (codec.Format, error) {
	if explicit != "" {
		return codec.ParseFormat(explicit)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".msgpack", ".mp":
		return codec.FormatMsgpack, nil
	default:
		return codec.FormatJSON, nil
	}
}

func loadFromFile(stderr io.Writer, path string, opts *presentOptions) ([]*codec.Record, error) {
	format, err := formatFor(path, opts.format)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open records: %w", err)
	}
	defer f.Close()

	recs, errs, err := codec.DecodeAll(f, format)
	if err != nil {
		return nil, err
	}
	for _, e := range errs {
		fmt.Fprintf(stderr, "skipping record: %v\n", e)
	}
	return filterScene(recs, opts.scene)
}

func loadFromStore(ctx context.Context, dbPath, sceneName string) ([]*codec.Record, error) {
	store, err := recordstore.Open(dbPath, codec.FormatJSON)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	if sceneName != "" {
		rec, err := store.Latest(ctx, sceneName)
		if err != nil {
			return nil, err
		}
		return []*codec.Record{rec}, nil
	}
	sums, err := store.Scenes(ctx)
	if err != nil {
		return nil, err
	}
	recs := make([]*codec.Record, 0, len(sums))
	for _, s := range sums {
		rec, err := store.Latest(ctx, s.Scene)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

func filterScene(recs []*codec.Record, name string) ([]*codec.Record, error) {
	if name == "" {
		return recs, nil
	}
	for _, r := range recs {
		if r.Scene == name {
			return []*codec.Record{r}, nil
		}
	}
	return nil, fmt.Errorf("scene %q not found", name)
}

// summarize presents every record and prints frame and device counters
func summarize(w io.Writer, recs []*codec.Record, synth *audio.Synth, reg *status.Registry, opts *presentOptions) error {
	for _, rec := range recs {
		dev := device.NewMemory()
		p := present.New(dev, synth, reg, slog.Default().With("scene", rec.Scene))

		if opts.at >= 0 {
			err := p.Render(rec.Entries, core.Time(opts.at), func(f *present.Frame) error {
				fmt.Fprintf(w, "%s @ %.3fs: %d items\n", rec.Scene, float64(f.Time), len(f.Items))
				for _, it := range f.Items {
					fmt.Fprintf(w, "  %-12s %-8s %T %dB\n", it.Callsite, it.Variant, it.Resource, it.Resource.ByteSize())
				}
				return nil
			})
			if err != nil {
				return fmt.Errorf("scene %q: %w", rec.Scene, err)
			}
			continue
		}

		frames, shapes, tones := 0, 0, 0
		for f, err := range p.Frames(rec.Entries, rec.Interval, opts.fps) {
			if err != nil {
				return fmt.Errorf("scene %q: %w", rec.Scene, err)
			}
			frames++
			shapes += len(f.Shapes())
			tones += len(f.Tones())
		}
		created, writes, bytes := dev.Stats()
		fmt.Fprintf(w, "%s %s: %d frames, %d shape draws, %d tone blocks, %d buffers, %d writes, %d bytes\n",
			rec.Scene, rec.Interval, frames, shapes, tones, created, writes, bytes)
	}
	return nil
}

// previewRecords plays each record in the terminal against a pausable clock
func previewRecords(ctx context.Context, recs []*codec.Record, synth *audio.Synth, reg *status.Registry, opts *presentOptions) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	// Deferred so a panic in the frame loop still restores the terminal
	defer screen.Fini()

	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			events <- ev
		}
	}()

	term := render.NewTerminal(screen, float32(opts.units))
	paused := reg.Bools.Get("present.paused")
	for _, rec := range recs {
		clock := engine.NewPlaybackClock(rec.Interval, engine.NewMonotonicTimeProvider())
		p := present.New(device.NewMemory(), synth, reg, slog.Default().With("scene", rec.Scene))

		draw := func(f *present.Frame) error {
			if err := handleEvents(events, term, clock); err != nil {
				return err
			}
			paused.Store(clock.IsPaused())
			state := "playing"
			if clock.IsPaused() {
				state = "paused"
			}
			term.Draw(f, fmt.Sprintf(" %s %6.2fs / %.2fs  %s  [space] pause [q] quit ",
				rec.Scene, float64(f.Time), float64(rec.Interval.End), state))
			return nil
		}
		if err := p.Play(ctx, clock, rec.Entries, opts.fps, draw); err != nil {
			return err
		}
	}

	// Hold the final frame until the user quits
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-events:
			if quitKey(ev) {
				return errQuit
			}
			if _, ok := ev.(*tcell.EventResize); ok {
				term.Resize()
			}
		}
	}
}

// handleEvents drains pending input without blocking the frame loop
func handleEvents(events <-chan tcell.Event, term *render.Terminal, clock *engine.PlaybackClock) error {
	for {
		select {
		case ev := <-events:
			if quitKey(ev) {
				return errQuit
			}
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if ev.Key() == tcell.KeyRune && ev.Rune() == ' ' {
					clock.Toggle()
				}
			case *tcell.EventResize:
				term.Resize()
			}
		default:
			return nil
		}
	}
}

func quitKey(ev tcell.Event) bool {
	k, ok := ev.(*tcell.EventKey)
	if !ok {
		return false
	}
	return k.Key() == tcell.KeyEscape || k.Key() == tcell.KeyCtrlC ||
		(k.Key() == tcell.KeyRune && k.Rune() == 'q')
}

// serveMetrics exposes the status registry at /metrics
func serveMetrics(addr string, reg *status.Registry) (*http.Server, error) {
	promReg := prometheus.NewRegistry()
	if err := promReg.Register(status.NewCollector(reg, "morphing")); err != nil {
		return nil, fmt.Errorf("failed to register collector: %w", err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(promReg, promhttp.HandlerOpts{}))

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics server failed", "addr", addr, "error", err)
		}
	}()
	slog.Info("serving metrics", "addr", addr)
	return srv, nil
}

// watchFile calls fn after path changes until ctx is done
// The parent directory is watched so editors that replace the file are seen
func watchFile(ctx context.Context, path string, fn func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}

	const debounce = 200 * time.Millisecond
	var timer *time.Timer
	fire := make(chan struct{}, 1)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || !ev.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})
		case <-fire:
			slog.Debug("record file changed", "path", abs)
			fn()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watch error", "error", err)
		}
	}
}
