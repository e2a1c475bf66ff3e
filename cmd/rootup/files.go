package main

import (
	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/rootup/internal/cliutil"
	"github.com/Dicklesworthstone/rootup/internal/depot"
)

func init() {
	rootCmd.AddCommand(filesCmd)
}

var filesCmd = &cobra.Command{
	Use:   "files <selector>|all",
	Short: "List the files recorded for one or more archives",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDepot(14)
		if err != nil {
			return err
		}
		defer d.Close()

		archives, err := resolveArchives(d, args[0])
		if err != nil {
			return err
		}
		var all []depot.FileListing
		for _, a := range archives {
			listings, err := d.Files(a)
			if err != nil {
				return err
			}
			all = append(all, listings...)
		}
		if cliutil.IsStructured() {
			return cliutil.Emit(all)
		}
		depot.PrintFiles(all)
		return nil
	},
}
