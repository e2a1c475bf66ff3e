// Command rootup manages an overlay root: installing, uninstalling, and
// inspecting archives layered onto a filesystem prefix with full rollback.
package main

import "os"

func main() {
	if err := Execute(); err != nil {
		os.Exit(exitCodeFor(err))
	}
}
