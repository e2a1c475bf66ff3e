package depot

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/Dicklesworthstone/rootup/internal/store"
)

// CheckConsistency enumerates archives left active=0 by a crashed install
// or uninstall. If any exist, it reports them via report and, when
// confirm returns true, uninstalls each in serial order. It returns an
// error if the caller declines and any are still inconsistent, since
// further mutating commands must then refuse.
func (d *Depot) CheckConsistency(report func(serial int64, uuid, date, name string), confirm func() bool) error {
	if err := d.Lock(); err != nil {
		return err
	}
	defer d.Downgrade() //nolint:errcheck

	serials, err := d.Store.GetInactiveArchiveSerials(d.Store)
	if err != nil {
		return fmt.Errorf("depot: check consistency: %w", err)
	}
	if len(serials) == 0 {
		return nil
	}

	rows := make([]store.ArchiveRow, 0, len(serials))
	for _, s := range serials {
		row, err := d.Store.GetArchive(d.Store, store.Selector{Serial: s})
		if err != nil {
			return err
		}
		rows = append(rows, *row)
	}
	for _, row := range rows {
		l := listingFromRow(row)
		report(l.Serial, l.UUID, l.Date, l.Name)
	}

	if !confirm() {
		return fmt.Errorf("depot: %d archive(s) left in an inconsistent state; refusing further mutations until resolved", len(rows))
	}

	for _, row := range rows {
		a, err := archiveFromRow(row)
		if err != nil {
			return err
		}
		if err := d.Uninstall(a); err != nil {
			return fmt.Errorf("depot: uninstall inconsistent archive %d: %w", a.Serial, err)
		}
	}
	return nil
}

// PromptYesNo reads a single y/n answer from r, matching the original
// tool's single-getchar() confirmation prompt.
func PromptYesNo(r io.Reader, w io.Writer, question string) bool {
	fmt.Fprint(w, question)
	reader := bufio.NewReader(r)
	line, _ := reader.ReadString('\n')
	line = strings.TrimSpace(line)
	return strings.EqualFold(line, "y") || strings.EqualFold(line, "yes")
}
