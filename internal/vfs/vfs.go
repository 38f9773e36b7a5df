package vfs

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"time"
)

// ErrNotSupported is returned by operations a backend cannot perform.
var ErrNotSupported = errors.New("operation not supported")

// ErrAuth marks a dial that failed because the server refused the login
// or no credentials were available.
var ErrAuth = errors.New("authentication failed")

// FileInfo holds metadata about a file or directory.
type FileInfo struct {
	Name    string
	Size    int64
	ModTime time.Time
	Mode    os.FileMode
	IsDir   bool
}

// DirEntry represents a single entry when listing a directory.
type DirEntry struct {
	Name    string
	Size    int64
	ModTime time.Time
	Mode    os.FileMode
	IsDir   bool
	IsLink  bool
	LinkTo  string
}

// Info converts a listing entry to the FileInfo a Stat call would return.
func (e DirEntry) Info() FileInfo {
	return FileInfo{
		Name:    e.Name,
		Size:    e.Size,
		ModTime: e.ModTime,
		Mode:    e.Mode,
		IsDir:   e.IsDir,
	}
}

// FileSystem is the abstraction layer for local and remote filesystems.
type FileSystem interface {
	ReadDir(path string) ([]DirEntry, error)
	Stat(path string) (FileInfo, error)
	Open(path string) (io.ReadCloser, error)
	// OpenAt opens path for reading starting at byte offset.
	OpenAt(path string, offset int64) (io.ReadCloser, error)
	Create(path string, mode fs.FileMode) (io.WriteCloser, error)
	// Append opens path for writing after its current end, creating it if needed.
	Append(path string) (io.WriteCloser, error)
	MkdirAll(path string, perm fs.FileMode) error
	Remove(path string) error
	Rename(oldpath, newpath string) error
	Join(elem ...string) string
	Dir(path string) string
	Base(path string) string
	IsLocal() bool
	// TimestampSupported reports whether modification times can be read per file.
	TimestampSupported() bool
	// ResumeSupported reports whether OpenAt and Append work on this backend.
	ResumeSupported() bool
	Close() error
}

// IsNotExist reports whether err means the path is absent, for any backend.
func IsNotExist(err error) bool {
	return isNotExist(err)
}
