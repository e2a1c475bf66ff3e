package main

import (
	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/rootup/internal/cliutil"
	"github.com/Dicklesworthstone/rootup/internal/depot"
	"github.com/Dicklesworthstone/rootup/internal/tui"
)

var flagListInteractive bool

func init() {
	listCmd.Flags().BoolVar(&flagListInteractive, "interactive", false, "browse archives in a full-screen TUI")
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List installed archives, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDepot(16)
		if err != nil {
			return err
		}
		defer d.Close()

		if flagListInteractive {
			return tui.Run(d)
		}

		listings, err := d.List(false)
		if err != nil {
			return err
		}
		if cliutil.IsStructured() {
			return cliutil.Emit(listings)
		}
		depot.PrintArchives(listings)
		return nil
	},
}
