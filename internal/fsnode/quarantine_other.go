//go:build !darwin

package fsnode

// Unquarantine is a no-op on platforms with no quarantine xattr concept.
func (n Node) Unquarantine(destPrefix string) error { return nil }
