package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/viant/cdm/identity"
)

var checkCmd = &cobra.Command{
	Use:   "check <snapshot>",
	Short: "Check entity ids of a snapshot for duplicates",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		view, err := readSnapshot(cmd.Context(), args[0], false)
		if err != nil {
			return err
		}
		entries := view.Entries()
		diagnostics := identity.CheckDuplicates(entries)
		if cfg.Identity.WarnMissingIDs {
			diagnostics = append(diagnostics, identity.CheckMissing(entries)...)
		}
		if err = report(cmd, diagnostics); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d entities checked\n", len(entries))
		return nil
	},
}
