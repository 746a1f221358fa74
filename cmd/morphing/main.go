// Package main provides the CLI entry point for the morphing timeline engine.
//
// Scenes are recorded into archived timelines, serialized, and presented
// frame by frame against an emulated device.
//
// # Basic Usage
//
// Record the built-in scenes:
//
//	morphing record --out scenes.jsonl
//
// Present a recorded file, or preview it in the terminal:
//
//	morphing present scenes.jsonl --fps 30
//	morphing present scenes.jsonl --scene moving_square --preview
//
// List known scenes:
//
//	morphing scenes --db morphing.db
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/YishiMichael/morphing-sub001/config"
)

// rootOptions holds flags shared by every subcommand
type rootOptions struct {
	configPath string
	dbPath     string
	debug      bool
}

func main() {
	if err := buildRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func buildRootCmd() *cobra.Command {
	opts := &rootOptions{}
	var logFile *os.File

	rootCmd := &cobra.Command{
		Use:          "morphing",
		Short:        "Record and present animation timelines",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logFile = setupLogging(opts.debug)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logFile != nil {
				logFile.Close()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Path to TOML configuration file")
	rootCmd.PersistentFlags().StringVar(&opts.dbPath, "db", "", "Path to sqlite record store")
	rootCmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Write debug logs to "+logDir+"/"+logFileName)

	rootCmd.AddCommand(
		buildRecordCmd(opts),
		buildPresentCmd(opts),
		buildScenesCmd(opts),
	)
	return rootCmd
}

// loadConfig returns the shared configuration store
func (o *rootOptions) loadConfig() (*config.Store, error) {
	if o.configPath == "" {
		return config.New(nil), nil
	}
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	slog.Debug("config loaded", "path", o.configPath, "keys", len(cfg.Keys()))
	return cfg, nil
}
