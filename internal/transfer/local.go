package transfer

import (
	"github.com/ZoeBambery/cyberduck/internal/vfs"
)

// Local is the on-disk counterpart of a transfer item. Attributes are
// read from disk on every call.
type Local struct {
	path string
	fs   vfs.FileSystem
}

func NewLocal(path string) *Local {
	return &Local{path: path, fs: vfs.NewLocalFS()}
}

func (l *Local) Path() string {
	return l.path
}

func (l *Local) Name() string {
	return l.fs.Base(l.path)
}

func (l *Local) FS() vfs.FileSystem {
	return l.fs
}

// Exists reports whether the file is on disk. Stat errors count as absent.
func (l *Local) Exists() bool {
	_, err := l.fs.Stat(l.path)
	return err == nil
}

// Attributes stats the file. A missing file has size 0 and unknown timestamp.
func (l *Local) Attributes() Attributes {
	fi, err := l.fs.Stat(l.path)
	if err != nil {
		return Attributes{Size: 0, Modified: TimestampUnknown, Type: TypeFile}
	}
	return attributesFromInfo(fi)
}

// Child returns the local counterpart for name inside this directory.
func (l *Local) Child(name string) *Local {
	return &Local{path: l.fs.Join(l.path, name), fs: l.fs}
}

func (l *Local) list() ([]vfs.DirEntry, error) {
	return l.fs.ReadDir(l.path)
}

func (l *Local) String() string {
	return l.path
}
