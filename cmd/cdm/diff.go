package main

import (
	"encoding/json"

	"github.com/spf13/cobra"
	"github.com/viant/cdm/delta"
)

var diffCmd = &cobra.Command{
	Use:   "diff <previous> <current>",
	Short: "Print deltas between two snapshots as JSON",
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
		deltas := migration.Deltas
		if deltas == nil {
			deltas = []*delta.Delta{}
		}
		logger.Debug("computed deltas", "count", len(deltas))
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(deltas)
	},
}
