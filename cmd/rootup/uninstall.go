package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/rootup/internal/cliutil"
)

func init() {
	rootCmd.AddCommand(uninstallCmd)
}

var uninstallCmd = &cobra.Command{
	Use:   "uninstall <selector>|all",
	Short: "Uninstall one or more archives, restoring prior content",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDepot(13)
		if err != nil {
			return err
		}
		defer d.Close()

		archives, err := resolveArchives(d, args[0])
		if err != nil {
			return err
		}
		for _, a := range archives {
			if err := d.Uninstall(a); err != nil {
				return fmt.Errorf("uninstall %s: %w", a.UUID, err)
			}
			if err := cliutil.Emit(fmt.Sprintf("uninstalled %s %s", a.UUID, a.Name)); err != nil {
				return err
			}
		}
		return nil
	},
}
