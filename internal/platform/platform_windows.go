//go:build windows

package platform

import "os"

// IsRootPath returns true if the path is a drive root like "C:\".
func IsRootPath(path string) bool {
	if len(path) == 3 && path[1] == ':' && (path[2] == '\\' || path[2] == '/') {
		c := path[0]
		return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
	}
	return path == "/"
}

func Editor() string {
	if e := os.Getenv("EDITOR"); e != "" {
		return e
	}
	return "notepad"
}
