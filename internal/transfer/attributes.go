// Package transfer holds the path, session and transfer types that move
// files between a remote server and the local disk.
package transfer

import (
	"os"

	"github.com/ZoeBambery/cyberduck/internal/vfs"
)

// Sentinels for metadata that has not been read yet.
const (
	SizeUnknown      int64 = -1
	TimestampUnknown int64 = -1
)

type FileType int

const (
	TypeFile FileType = iota + 1
	TypeDirectory
)

func (t FileType) String() string {
	switch t {
	case TypeFile:
		return "file"
	case TypeDirectory:
		return "directory"
	default:
		return "unknown"
	}
}

// Attributes caches what is known about one side of a transfer item.
// Modified is in Unix milliseconds.
type Attributes struct {
	Size     int64
	Modified int64
	Type     FileType
	Mode     os.FileMode
}

// UnknownAttributes returns attributes of the given type with nothing read yet.
func UnknownAttributes(t FileType) Attributes {
	return Attributes{
		Size:     SizeUnknown,
		Modified: TimestampUnknown,
		Type:     t,
	}
}

func (a Attributes) IsFile() bool {
	return a.Type == TypeFile
}

func (a Attributes) IsDir() bool {
	return a.Type == TypeDirectory
}

func typeOf(isDir bool) FileType {
	if isDir {
		return TypeDirectory
	}
	return TypeFile
}

func attributesFromInfo(fi vfs.FileInfo) Attributes {
	a := Attributes{
		Size:     fi.Size,
		Modified: TimestampUnknown,
		Type:     typeOf(fi.IsDir),
		Mode:     fi.Mode,
	}
	if !fi.ModTime.IsZero() {
		a.Modified = fi.ModTime.UnixMilli()
	}
	if fi.IsDir {
		a.Size = 0
	}
	return a
}
