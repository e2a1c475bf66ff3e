package depot

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Lock acquires the depot's exclusive advisory lock, blocking until
// available. install and uninstall hold it for their full duration.
func (d *Depot) Lock() error {
	return d.flock(unix.LOCK_EX)
}

// RLock acquires the depot's shared advisory lock. list/files/verify hold
// it for their full duration.
func (d *Depot) RLock() error {
	return d.flock(unix.LOCK_SH)
}

// Downgrade converts a held exclusive lock to shared, the final step of
// both the install and uninstall pipelines.
func (d *Depot) Downgrade() error {
	return d.flock(unix.LOCK_SH)
}

// Unlock releases the depot's lock and closes the lock file descriptor.
// It is a no-op if no lock is held.
func (d *Depot) Unlock() error {
	if d.lockFile == nil {
		return nil
	}
	err := unix.Flock(int(d.lockFile.Fd()), unix.LOCK_UN)
	closeErr := d.lockFile.Close()
	d.lockFile = nil
	if err != nil {
		return fmt.Errorf("depot: unlock: %w", err)
	}
	return closeErr
}

func (d *Depot) flock(how int) error {
	if d.lockFile == nil {
		f, err := os.Open(d.Root)
		if err != nil {
			return fmt.Errorf("depot: open %s for locking: %w", d.Root, err)
		}
		d.lockFile = f
	}
	if err := unix.Flock(int(d.lockFile.Fd()), how); err != nil {
		return fmt.Errorf("depot: flock %s: %w", d.Root, err)
	}
	return nil
}
