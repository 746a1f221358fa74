package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/YishiMichael/morphing-sub001/codec"
	"github.com/YishiMichael/morphing-sub001/config"
	"github.com/YishiMichael/morphing-sub001/recordstore"
	"github.com/YishiMichael/morphing-sub001/scene"
	"github.com/YishiMichael/morphing-sub001/status"
)

func buildRecordCmd(root *rootOptions) *cobra.Command {
	var (
		outPath string
		format  string
	)
	cmd := &cobra.Command{
		Use:   "record [scene...]",
		Short: "Record scenes into serialized timelines",
		Long: `Record runs every named scene (all built-in scenes when none are given)
concurrently and writes one record per successful scene.

Records go to --out ("-" for stdout) and, when --db is set, into the record store.
A failing scene is reported and does not stop the others.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecord(cmd, root, args, outPath, format)
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "-", "Output file, - for stdout")
	cmd.Flags().StringVarP(&format, "format", "f", "", "Record format: json or msgpack (default from config)")
	return cmd
}

func runRecord(cmd *cobra.Command, root *rootOptions, names []string, outPath, formatName string) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	scenes, err := selectScenes(scene.Demo(), names)
	if err != nil {
		return err
	}
	if formatName == "" {
		formatName = cfg.View(nil).String(config.KeyRecordFormat, string(codec.FormatJSON))
	}
	format, err := codec.ParseFormat(formatName)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := status.NewRegistry()
	results := scene.Run(ctx, scenes, scene.Options{
		Config: cfg,
		Logger: slog.Default(),
		Status: reg,
	})

	out, closeOut, err := openOutput(cmd, outPath)
	if err != nil {
		return err
	}
	defer closeOut()

	enc, err := codec.NewEncoder(out, format)
	if err != nil {
		return err
	}

	var store *recordstore.Store
	if root.dbPath != "" {
		store, err = recordstore.Open(root.dbPath, format)
		if err != nil {
			return err
		}
		defer store.Close()
	}

	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
			fmt.Fprintf(cmd.ErrOrStderr(), "scene %s failed: %v\n", res.Scene, res.Err)
			continue
		}
		if err := enc.Encode(res.Record); err != nil {
			return fmt.Errorf("failed to encode %s: %w", res.Scene, err)
		}
		if store != nil {
			if err := store.Put(ctx, res.Record); err != nil {
				return fmt.Errorf("failed to store %s: %w", res.Scene, err)
			}
		}
		slog.Info("scene recorded",
			"scene", res.Scene,
			"entries", len(res.Record.Entries),
			"interval", res.Record.Interval.String(),
			"elapsed", res.Elapsed)
	}

	if outPath != "-" {
		fmt.Fprintf(cmd.ErrOrStderr(), "recorded %d/%d scenes to %s\n", len(results)-failed, len(results), outPath)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d scenes failed", failed, len(results))
	}
	return nil
}

// selectScenes keeps the named scenes in argument order, or all of them
func selectScenes(all []scene.Scene, names []string) ([]scene.Scene, error) {
	if len(names) == 0 {
		return all, nil
	}
	out := make([]scene.Scene, 0, len(names))
	for _, name := range names {
		s, ok := scene.Find(all, name)
		if !ok {
			return nil, fmt.Errorf("unknown scene %q", name)
		}
		out = append(out, s)
	}
	return out, nil
}

func openOutput(cmd *cobra.Command, path string) (io.Writer, func(), error) {
	if path == "-" || path == "" {
		return cmd.OutOrStdout(), func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output: %w", err)
	}
	return f, func() { f.Close() }, nil
}
