//go:build !windows

package platform

import "os"

// IsRootPath returns true if path is the filesystem root.
func IsRootPath(path string) bool {
	return path == "/"
}

// Editor returns the command used to open files for editing.
func Editor() string {
	if e := os.Getenv("VISUAL"); e != "" {
		return e
	}
	if e := os.Getenv("EDITOR"); e != "" {
		return e
	}
	return "vi"
}
