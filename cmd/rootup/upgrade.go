package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/rootup/internal/cliutil"
	"github.com/Dicklesworthstone/rootup/internal/store"
)

func init() {
	rootCmd.AddCommand(upgradeCmd)
}

var upgradeCmd = &cobra.Command{
	Use:   "upgrade <path-or-url>",
	Short: "Install a new archive, then uninstall the prior archive sharing its name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDepot(12)
		if err != nil {
			return err
		}
		defer d.Close()

		targetName := filepath.Base(args[0])
		listings, err := d.List(false)
		if err != nil {
			return err
		}
		var targetSerial int64
		found := false
		for _, l := range listings {
			if l.Name == targetName {
				targetSerial = l.Serial
				found = true
				break
			}
		}
		if !found {
			return upgradeTargetNotFoundErrorf("upgrade: no prior archive named %q", targetName)
		}
		target, err := d.GetArchive(store.Selector{Serial: targetSerial})
		if err != nil {
			return err
		}

		a, extractor, err := prepareArchive(d, args[0])
		if err != nil {
			return err
		}
		if err := d.Install(a, extractor); err != nil {
			return storageErrorf(2, "install %s: %v", args[0], err)
		}
		if err := d.Uninstall(target); err != nil {
			return fmt.Errorf("upgrade: uninstall prior archive %d: %w", target.Serial, err)
		}
		return cliutil.Emit(fmt.Sprintf("upgraded %s: %d -> %s", targetName, target.Serial, a.UUID))
	},
}
