package main

import (
	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/rootup/internal/cliutil"
	"github.com/Dicklesworthstone/rootup/internal/depot"
	"github.com/Dicklesworthstone/rootup/internal/store"
)

func init() {
	rootCmd.AddCommand(dumpCmd)
}

// dumpEntry is one archive's listing paired with its files, dump's debug
// view of the full database contents, rollbacks included.
type dumpEntry struct {
	Archive depot.ArchiveListing `json:"archive" yaml:"archive"`
	Files   []depot.FileListing  `json:"files" yaml:"files"`
}

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Dump every archive and file record, including rollbacks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDepot(16)
		if err != nil {
			return err
		}
		defer d.Close()

		listings, err := d.List(true)
		if err != nil {
			return err
		}
		entries := make([]dumpEntry, 0, len(listings))
		for _, l := range listings {
			a, err := d.GetArchive(store.Selector{Serial: l.Serial})
			if err != nil {
				return err
			}
			files, err := d.Files(a)
			if err != nil {
				return err
			}
			entries = append(entries, dumpEntry{Archive: l, Files: files})
		}

		if cliutil.IsStructured() {
			return cliutil.Emit(entries)
		}
		for _, e := range entries {
			depot.PrintArchives([]depot.ArchiveListing{e.Archive})
			depot.PrintFiles(e.Files)
		}
		return nil
	},
}
