//go:build windows

package fsnode

// Windows has no uid/gid ownership model; these are no-ops so the rest of
// the package stays portable for tests that run on a developer's machine.
func chown(path string, uid, gid int) error  { return nil }
func lchown(path string, uid, gid int) error { return nil }
