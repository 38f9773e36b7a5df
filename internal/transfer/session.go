package transfer

import (
	"github.com/ZoeBambery/cyberduck/internal/logging"
	"github.com/ZoeBambery/cyberduck/internal/platform"
	"github.com/ZoeBambery/cyberduck/internal/vfs"
)

// Session is a connection to one server plus a cache of directory listings.
// It is not safe for concurrent use.
type Session struct {
	name  string
	fs    vfs.FileSystem
	cache map[string][]vfs.DirEntry
}

func NewSession(name string, fs vfs.FileSystem) *Session {
	return &Session{
		name:  name,
		fs:    fs,
		cache: make(map[string][]vfs.DirEntry),
	}
}

func (s *Session) Name() string {
	return s.name
}

func (s *Session) FS() vfs.FileSystem {
	return s.fs
}

// TimestampSupported reports whether per-file modification times can be read.
func (s *Session) TimestampSupported() bool {
	return s.fs.TimestampSupported()
}

func (s *Session) ResumeSupported() bool {
	return s.fs.ResumeSupported()
}

// List returns the cached listing of dir, reading it on first use.
// A missing directory lists as empty.
func (s *Session) List(dir string) ([]vfs.DirEntry, error) {
	if entries, ok := s.cache[dir]; ok {
		return entries, nil
	}
	logging.Debug("list", logging.String("server", s.name), logging.String("dir", dir))
	entries, err := s.fs.ReadDir(dir)
	if err != nil {
		if !vfs.IsNotExist(err) {
			return nil, err
		}
		entries = nil
	}
	s.cache[dir] = entries
	return entries, nil
}

// Lookup finds p in its parent's listing.
func (s *Session) Lookup(p string) (vfs.DirEntry, bool, error) {
	entries, err := s.List(s.fs.Dir(p))
	if err != nil {
		return vfs.DirEntry{}, false, err
	}
	name := s.fs.Base(p)
	for _, e := range entries {
		if e.Name == name {
			return e, true, nil
		}
	}
	return vfs.DirEntry{}, false, nil
}

// Invalidate drops the cached listing of dir.
func (s *Session) Invalidate(dir string) {
	delete(s.cache, dir)
}

func (s *Session) isRoot(p string) bool {
	return platform.IsRootPath(p) || s.fs.Dir(p) == p
}
