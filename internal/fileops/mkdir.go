package fileops

import (
	"fmt"

	"github.com/ZoeBambery/cyberduck/internal/vfs"
)

// MkDir creates dir and its parents. An existing directory is fine; an
// existing file at dir is an error.
func MkDir(fsys vfs.FileSystem, dir string) error {
	info, err := fsys.Stat(dir)
	if err == nil {
		if !info.IsDir {
			return fmt.Errorf("%s exists and is not a directory", dir)
		}
		return nil
	}
	if !vfs.IsNotExist(err) {
		return err
	}
	return fsys.MkdirAll(dir, 0755)
}
