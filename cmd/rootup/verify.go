package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/rootup/internal/cliutil"
	"github.com/Dicklesworthstone/rootup/internal/depot"
)

func init() {
	rootCmd.AddCommand(verifyCmd)
}

var verifyCmd = &cobra.Command{
	Use:   "verify <selector>|all",
	Short: "Compare an archive's recorded files against the live overlay",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDepot(15)
		if err != nil {
			return err
		}
		defer d.Close()

		archives, err := resolveArchives(d, args[0])
		if err != nil {
			return err
		}
		var all []depot.FileListing
		modified := 0
		for _, a := range archives {
			listings, err := d.Verify(a)
			if err != nil {
				return err
			}
			for _, l := range listings {
				if l.Status != "" {
					modified++
				}
			}
			all = append(all, listings...)
		}
		if cliutil.IsStructured() {
			return cliutil.Emit(all)
		}
		depot.PrintFiles(all)
		if modified > 0 {
			return fmt.Errorf("verify: %d file(s) differ from their recorded state", modified)
		}
		return nil
	},
}
