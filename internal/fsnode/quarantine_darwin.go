//go:build darwin

package fsnode

import (
	"errors"
	"fmt"
	"path/filepath"
	"syscall"
)

const quarantineXattr = "com.apple.quarantine"

// Unquarantine removes the quarantine extended attribute from n's
// destination, best-effort: a missing attribute counts as success.
func (n Node) Unquarantine(destPrefix string) error {
	path := filepath.Join(destPrefix, n.Path)
	err := syscall.Removexattr(path, quarantineXattr)
	if err == nil || errors.Is(err, syscall.ENOATTR) || errors.Is(err, syscall.ENOENT) {
		return nil
	}
	return fmt.Errorf("fsnode: unquarantine %s: %w", path, err)
}
