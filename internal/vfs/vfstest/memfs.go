// Package vfstest provides an in-memory vfs.FileSystem for tests.
package vfstest

import (
	"bytes"
	"io"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ZoeBambery/cyberduck/internal/vfs"
)

type node struct {
	data []byte
	dir  bool
	mod  time.Time
	mode fs.FileMode
}

// MemFS is a slash-separated in-memory filesystem that counts metadata
// calls and can be told to fail them.
type MemFS struct {
	// Timestamps and Resume are reported as backend capabilities.
	Timestamps bool
	Resume     bool

	mu       sync.Mutex
	nodes    map[string]*node
	statErrs map[string]error
	listErrs map[string]error
	stats    map[string]int
	lists    map[string]int
}

var _ vfs.FileSystem = (*MemFS)(nil)

func New() *MemFS {
	return &MemFS{
		Timestamps: true,
		Resume:     true,
		nodes:      map[string]*node{"/": {dir: true, mode: fs.ModeDir | 0755}},
		statErrs:   make(map[string]error),
		listErrs:   make(map[string]error),
		stats:      make(map[string]int),
		lists:      make(map[string]int),
	}
}

// AddFile stores a file and creates its parent directories.
func (m *MemFS) AddFile(p, content string, mod time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p = path.Clean(p)
	m.mkdirAll(path.Dir(p))
	m.nodes[p] = &node{data: []byte(content), mod: mod, mode: 0644}
}

func (m *MemFS) AddDir(p string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mkdirAll(path.Clean(p))
}

// FailStat makes Stat of p return err.
func (m *MemFS) FailStat(p string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statErrs[path.Clean(p)] = err
}

// FailList makes ReadDir of p return err.
func (m *MemFS) FailList(p string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listErrs[path.Clean(p)] = err
}

// StatCalls returns how often Stat was called for p.
func (m *MemFS) StatCalls(p string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stats[path.Clean(p)]
}

// ListCalls returns how often ReadDir was called for p.
func (m *MemFS) ListCalls(p string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lists[path.Clean(p)]
}

// Content returns the data of the file at p.
func (m *MemFS) Content(p string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.nodes[path.Clean(p)]
	if !ok || n.dir {
		return "", false
	}
	return string(n.data), true
}

func (m *MemFS) mkdirAll(p string) {
	for {
		if _, ok := m.nodes[p]; !ok {
			m.nodes[p] = &node{dir: true, mode: fs.ModeDir | 0755}
		}
		if p == "/" || p == "." {
			return
		}
		p = path.Dir(p)
	}
}

func notExist(op, p string) error {
	return &fs.PathError{Op: op, Path: p, Err: fs.ErrNotExist}
}

func info(name string, n *node) vfs.FileInfo {
	return vfs.FileInfo{
		Name:    name,
		Size:    int64(len(n.data)),
		ModTime: n.mod,
		Mode:    n.mode,
		IsDir:   n.dir,
	}
}

func (m *MemFS) ReadDir(p string) ([]vfs.DirEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p = path.Clean(p)
	m.lists[p]++
	if err, ok := m.listErrs[p]; ok {
		return nil, err
	}
	n, ok := m.nodes[p]
	if !ok || !n.dir {
		return nil, notExist("readdir", p)
	}

	var entries []vfs.DirEntry
	for k, c := range m.nodes {
		if k == p || path.Dir(k) != p {
			continue
		}
		entries = append(entries, vfs.DirEntry{
			Name:    path.Base(k),
			Size:    int64(len(c.data)),
			ModTime: c.mod,
			Mode:    c.mode,
			IsDir:   c.dir,
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

func (m *MemFS) Stat(p string) (vfs.FileInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p = path.Clean(p)
	m.stats[p]++
	if err, ok := m.statErrs[p]; ok {
		return vfs.FileInfo{}, err
	}
	n, ok := m.nodes[p]
	if !ok {
		return vfs.FileInfo{}, notExist("stat", p)
	}
	return info(path.Base(p), n), nil
}

func (m *MemFS) Open(p string) (io.ReadCloser, error) {
	return m.OpenAt(p, 0)
}

func (m *MemFS) OpenAt(p string, offset int64) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.nodes[path.Clean(p)]
	if !ok || n.dir {
		return nil, notExist("open", p)
	}
	if offset > int64(len(n.data)) {
		offset = int64(len(n.data))
	}
	data := append([]byte(nil), n.data[offset:]...)
	return io.NopCloser(bytes.NewReader(data)), nil
}

type writer struct {
	bytes.Buffer
	close func([]byte)
}

func (w *writer) Close() error {
	w.close(w.Bytes())
	return nil
}

func (m *MemFS) Create(p string, mode fs.FileMode) (io.WriteCloser, error) {
	return m.writer(path.Clean(p), mode, nil)
}

func (m *MemFS) Append(p string) (io.WriteCloser, error) {
	p = path.Clean(p)
	m.mu.Lock()
	var prefix []byte
	if n, ok := m.nodes[p]; ok && !n.dir {
		prefix = append(prefix, n.data...)
	}
	m.mu.Unlock()
	return m.writer(p, 0644, prefix)
}

func (m *MemFS) writer(p string, mode fs.FileMode, prefix []byte) (io.WriteCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if parent, ok := m.nodes[path.Dir(p)]; !ok || !parent.dir {
		return nil, notExist("create", p)
	}
	w := &writer{}
	w.Write(prefix)
	w.close = func(data []byte) {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.nodes[p] = &node{data: append([]byte(nil), data...), mod: time.Now(), mode: mode.Perm()}
	}
	return w, nil
}

func (m *MemFS) MkdirAll(p string, perm fs.FileMode) error {
	m.AddDir(p)
	return nil
}

func (m *MemFS) Remove(p string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p = path.Clean(p)
	if _, ok := m.nodes[p]; !ok {
		return notExist("remove", p)
	}
	delete(m.nodes, p)
	return nil
}

func (m *MemFS) Rename(oldpath, newpath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	oldpath, newpath = path.Clean(oldpath), path.Clean(newpath)
	n, ok := m.nodes[oldpath]
	if !ok {
		return notExist("rename", oldpath)
	}
	for k, c := range m.nodes {
		if strings.HasPrefix(k, oldpath+"/") {
			m.nodes[newpath+strings.TrimPrefix(k, oldpath)] = c
			delete(m.nodes, k)
		}
	}
	delete(m.nodes, oldpath)
	m.nodes[newpath] = n
	return nil
}

func (m *MemFS) Join(elem ...string) string {
	return path.Join(elem...)
}

func (m *MemFS) Dir(p string) string {
	return path.Dir(p)
}

func (m *MemFS) Base(p string) string {
	return path.Base(p)
}

func (m *MemFS) IsLocal() bool {
	return false
}

func (m *MemFS) TimestampSupported() bool {
	return m.Timestamps
}

func (m *MemFS) ResumeSupported() bool {
	return m.Resume
}

func (m *MemFS) Close() error {
	return nil
}
