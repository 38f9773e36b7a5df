package fileops

import "github.com/ZoeBambery/cyberduck/internal/vfs"

// Delete removes the given paths in order, stopping at the first failure.
// Directories must be empty by the time they are reached.
func Delete(fs vfs.FileSystem, paths ...string) error {
	for _, p := range paths {
		if err := fs.Remove(p); err != nil && !vfs.IsNotExist(err) {
			return err
		}
	}
	return nil
}
