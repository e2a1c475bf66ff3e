package main

import (
	"strconv"

	"github.com/google/uuid"

	"github.com/Dicklesworthstone/rootup/internal/archive"
	"github.com/Dicklesworthstone/rootup/internal/depot"
	"github.com/Dicklesworthstone/rootup/internal/store"
)

// parseSelector turns a selector argument into a store.Selector for the
// singular forms (uuid, serial, name, newest, oldest); "all" and
// "superseded" are handled by resolveArchives before reaching here.
func parseSelector(raw string) store.Selector {
	switch raw {
	case "newest":
		return store.Selector{Newest: true}
	case "oldest":
		return store.Selector{Oldest: true}
	}
	if serial, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return store.Selector{Serial: serial}
	}
	if _, err := uuid.Parse(raw); err == nil {
		return store.Selector{UUID: raw}
	}
	return store.Selector{Name: raw}
}

// resolveArchives expands a CLI selector argument into the concrete
// archives it names: "all" is every non-rollback archive, "superseded"
// is every archive every one of whose files has since been replaced,
// anything else resolves through parseSelector to exactly one archive.
func resolveArchives(d *depot.Depot, raw string) ([]archive.Archive, error) {
	switch raw {
	case "all":
		listings, err := d.List(false)
		if err != nil {
			return nil, err
		}
		out := make([]archive.Archive, 0, len(listings))
		for _, l := range listings {
			a, err := d.GetArchive(store.Selector{Serial: l.Serial})
			if err != nil {
				return nil, err
			}
			out = append(out, a)
		}
		return out, nil
	case "superseded":
		return d.SupersededArchives()
	default:
		a, err := d.GetArchive(parseSelector(raw))
		if err != nil {
			return nil, err
		}
		return []archive.Archive{a}, nil
	}
}
