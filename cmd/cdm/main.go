package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/viant/afs"
	"github.com/viant/cdm/config"
	"github.com/viant/cdm/diagnostic"
	"github.com/viant/cdm/loader"
	"github.com/viant/cdm/resolved"
	"github.com/viant/cdm/validate"
)

var (
	configURL string
	verbose   bool

	cfg    *config.Config
	logger *slog.Logger
	fs     = afs.New()
)

var rootCmd = &cobra.Command{
	Use:           "cdm <command>",
	Short:         "Compare and check resolved schema snapshots",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
		cfg = config.Default()
		if configURL == "" {
			return nil
		}
		loaded, err := config.Load(cmd.Context(), configURL)
		if err != nil {
			return err
		}
		cfg = loaded
		logger.Debug("loaded config", "url", configURL)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configURL, "config", "", "project configuration (YAML)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(diffCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(snapshotCmd)
}

func newSession() *validate.Session {
	return validate.NewSession(cfg.Options()...)
}

// readSnapshot loads a snapshot, a missing file is an error unless optional is set
func readSnapshot(ctx context.Context, URL string, optional bool) (*resolved.Schema, error) {
	view, err := loader.NewSnapshotStore(fs, URL).Load(ctx)
	if err != nil {
		return nil, err
	}
	if view == nil && !optional {
		return nil, fmt.Errorf("snapshot %v not found", URL)
	}
	if view == nil {
		logger.Debug("no previous snapshot", "url", URL)
	}
	return view, nil
}

// report prints diagnostics to stderr and fails on errors
func report(cmd *cobra.Command, diagnostics diagnostic.List) error {
	for _, d := range diagnostics {
		fmt.Fprintln(cmd.ErrOrStderr(), d.String())
	}
	if errors := diagnostics.Errors(); len(errors) > 0 {
		return fmt.Errorf("%d error(s) found", len(errors))
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
