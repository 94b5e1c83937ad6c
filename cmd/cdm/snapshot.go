package main

import (
	"github.com/spf13/cobra"
	"github.com/viant/cdm/loader"
	"github.com/viant/cdm/resolved"
)

var saveSnapshot bool

var snapshotCmd = &cobra.Command{
	Use:   "snapshot <previous> <current>",
	Short: "Print the next snapshot with retired entity ids",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		previous, err := readSnapshot(ctx, args[0], true)
		if err != nil {
			return err
		}
		current, err := readSnapshot(ctx, args[1], false)
		if err != nil {
			return err
		}
		migration := newSession().Migrate(previous, current)
		if err = report(cmd, migration.Diagnostics); err != nil {
			return err
		}
		logger.Debug("retired ids", "count", len(migration.Snapshot.Retired))
		if !saveSnapshot {
			return resolved.Encode(cmd.OutOrStdout(), migration.Snapshot)
		}
		root := cfg.ProjectRoot
		if root == "" {
			project, err := loader.NewDetector(fs, cfg.Markers...).Detect(ctx, args[1])
			if err != nil {
				return err
			}
			root = project.Root
		}
		URL := cfg.SnapshotURL(root)
		if err = loader.NewSnapshotStore(fs, URL).Save(ctx, migration.Snapshot); err != nil {
			return err
		}
		logger.Info("saved snapshot", "url", URL)
		return nil
	},
}

func init() {
	snapshotCmd.Flags().BoolVar(&saveSnapshot, "save", false, "save to the project snapshot location instead of printing")
}
