package vfs

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"
)

// LocalFS implements FileSystem for the local OS filesystem.
type LocalFS struct{}

// NewLocalFS returns a new LocalFS instance.
func NewLocalFS() *LocalFS {
	return &LocalFS{}
}

// ReadDir lists dir. Symlinks report their target's attributes because
// transfers follow links; entries that vanish while listing are dropped.
func (l *LocalFS) ReadDir(dir string) ([]DirEntry, error) {
	osEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	entries := make([]DirEntry, 0, len(osEntries))
	for _, de := range osEntries {
		info, err := de.Info()
		if err != nil {
			continue
		}
		entry := dirEntryFromOS(info)
		if entry.IsLink {
			p := filepath.Join(dir, de.Name())
			entry.LinkTo, _ = os.Readlink(p)
			if fi, err := os.Stat(p); err == nil {
				target := dirEntryFromOS(fi)
				target.Name, target.IsLink, target.LinkTo = entry.Name, true, entry.LinkTo
				entry = target
			}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (l *LocalFS) Stat(p string) (FileInfo, error) {
	fi, err := os.Stat(p)
	if err != nil {
		return FileInfo{}, err
	}
	return fileInfoFromOS(fi), nil
}

func (l *LocalFS) Open(p string) (io.ReadCloser, error) {
	return os.Open(p)
}

func (l *LocalFS) OpenAt(p string, offset int64) (io.ReadCloser, error) {
	f, err := os.Open(p)
	if err != nil {
		return nil, err
	}
	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

func (l *LocalFS) Create(p string, mode fs.FileMode) (io.WriteCloser, error) {
	return os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode.Perm())
}

func (l *LocalFS) Append(p string) (io.WriteCloser, error) {
	return os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
}

func (l *LocalFS) MkdirAll(p string, perm fs.FileMode) error {
	return os.MkdirAll(p, perm.Perm())
}

func (l *LocalFS) Remove(p string) error {
	return os.Remove(p)
}

// Rename falls back to copy and remove when the paths are on different
// devices, as happens with a temp dir on tmpfs.
func (l *LocalFS) Rename(oldpath, newpath string) error {
	err := os.Rename(oldpath, newpath)
	if !errors.Is(err, syscall.EXDEV) {
		return err
	}
	src, err := os.Open(oldpath)
	if err != nil {
		return err
	}
	defer src.Close()
	dst, err := os.Create(newpath)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return err
	}
	if err := dst.Close(); err != nil {
		return err
	}
	return os.Remove(oldpath)
}

func (l *LocalFS) Join(elem ...string) string { return filepath.Join(elem...) }
func (l *LocalFS) Dir(p string) string        { return filepath.Dir(p) }
func (l *LocalFS) Base(p string) string       { return filepath.Base(p) }
func (l *LocalFS) IsLocal() bool              { return true }
func (l *LocalFS) TimestampSupported() bool   { return true }
func (l *LocalFS) ResumeSupported() bool      { return true }
func (l *LocalFS) Close() error               { return nil }
