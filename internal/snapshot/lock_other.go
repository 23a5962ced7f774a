//go:build !unix && !windows

package snapshot

import "os"

// Platforms without advisory locks rely on single-process use.
func lockFile(*os.File) error   { return nil }
func unlockFile(*os.File) error { return nil }
