package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Dicklesworthstone/rootup/internal/archive"
	"github.com/Dicklesworthstone/rootup/internal/cliutil"
	"github.com/Dicklesworthstone/rootup/internal/depot"
	"github.com/Dicklesworthstone/rootup/internal/fetch"
)

func init() {
	rootCmd.AddCommand(installCmd)
}

var installCmd = &cobra.Command{
	Use:   "install <path-or-url>",
	Short: "Install an archive onto the overlay prefix",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDepot(11)
		if err != nil {
			return err
		}
		defer d.Close()

		a, extractor, err := prepareArchive(d, args[0])
		if err != nil {
			return err
		}
		if err := d.Install(a, extractor); err != nil {
			return storageErrorf(2, "install %s: %v", args[0], err)
		}
		return cliutil.Emit(fmt.Sprintf("installed %s %s", a.UUID, a.Name))
	},
}

// prepareArchive fetches a remote source if needed, detects its format,
// and builds the Archive value and Extractor install will consume.
func prepareArchive(d *depot.Depot, source string) (archive.Archive, archive.Extractor, error) {
	local := source
	if fetch.IsRemote(source) {
		fetched, err := fetch.Fetch(context.Background(), source, d.DownloadDir(), d.Runner)
		if err != nil {
			return archive.Archive{}, nil, fmt.Errorf("fetch %s: %w", source, err)
		}
		local = fetched
	}

	format, err := archive.DetectFormat(local)
	if err != nil {
		return archive.Archive{}, nil, usageErrorf("%v", err)
	}
	extractor, err := archive.NewExtractor(format, d.Runner)
	if err != nil {
		return archive.Archive{}, nil, usageErrorf("%v", err)
	}

	a := archive.New(local)
	a.Name = filepath.Base(source)
	return a, extractor, nil
}
