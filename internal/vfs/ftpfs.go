package vfs

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net"
	"net/textproto"
	"os"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/jlaffaye/ftp"

	"github.com/ZoeBambery/cyberduck/internal/config"
	"github.com/ZoeBambery/cyberduck/internal/logging"
)

const (
	ftpDialTimeout = 10 * time.Second
	ftpKeepAlive   = 60 * time.Second
)

// FTPFS implements FileSystem over an FTP/FTPS connection. The control
// connection carries one command at a time, so every call holds mu.
type FTPFS struct {
	conn *ftp.ServerConn
	mu   sync.Mutex
	done chan struct{}
}

// NewFTPFS logs in to the server. FTPS uses explicit TLS and verifies the
// certificate unless the server config says insecure.
func NewFTPFS(ctx context.Context, cfg config.ServerConfig) (*FTPFS, error) {
	port := cfg.Port
	if port == 0 {
		port = 21
	}
	addr := net.JoinHostPort(cfg.Host, fmt.Sprint(port))

	opts := []ftp.DialOption{
		ftp.DialWithContext(ctx),
		ftp.DialWithTimeout(ftpDialTimeout),
	}
	if cfg.Protocol == config.ProtocolFTPS {
		opts = append(opts, ftp.DialWithExplicitTLS(&tls.Config{
			ServerName:         cfg.Host,
			InsecureSkipVerify: cfg.Insecure,
		}))
	}

	conn, err := ftp.Dial(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("ftp dial %s: %w", addr, err)
	}

	user := cfg.User
	if user == "" {
		user = "anonymous"
	}
	if err := conn.Login(user, cfg.Password); err != nil {
		conn.Quit()
		if isLoginRefused(err) {
			return nil, fmt.Errorf("ftp login %s@%s: %w: %w", user, addr, ErrAuth, err)
		}
		return nil, fmt.Errorf("ftp login %s@%s: %w", user, addr, err)
	}

	f := &FTPFS{conn: conn, done: make(chan struct{})}
	go f.keepAlive()
	return f, nil
}

func isLoginRefused(err error) bool {
	var tpErr *textproto.Error
	return errors.As(err, &tpErr) && tpErr.Code == ftp.StatusNotLoggedIn
}

func (f *FTPFS) locked(fn func(c *ftp.ServerConn) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return fn(f.conn)
}

func (f *FTPFS) keepAlive() {
	ticker := time.NewTicker(ftpKeepAlive)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := f.locked(func(c *ftp.ServerConn) error { return c.NoOp() }); err != nil {
				logging.Warn("ftp keepalive failed", logging.Err(err))
			}
		case <-f.done:
			return
		}
	}
}

func (f *FTPFS) ReadDir(dirPath string) ([]DirEntry, error) {
	var list []*ftp.Entry
	err := f.locked(func(c *ftp.ServerConn) (err error) {
		list, err = c.List(dirPath)
		return err
	})
	if err != nil {
		return nil, err
	}

	entries := make([]DirEntry, 0, len(list))
	for _, e := range list {
		if e.Name == "." || e.Name == ".." {
			continue
		}
		entries = append(entries, ftpDirEntry(e))
	}
	return entries, nil
}

// Stat uses MLST when the server has it and falls back to listing the parent.
func (f *FTPFS) Stat(filePath string) (FileInfo, error) {
	var entry *ftp.Entry
	err := f.locked(func(c *ftp.ServerConn) (err error) {
		entry, err = c.GetEntry(filePath)
		return err
	})
	if err == nil {
		info := ftpDirEntry(entry).Info()
		info.Name = path.Base(filePath)
		return info, nil
	}

	if filePath == "/" {
		return FileInfo{Name: "/", Mode: os.ModeDir | 0755, IsDir: true}, nil
	}

	entries, err := f.ReadDir(path.Dir(filePath))
	if err != nil {
		return FileInfo{}, err
	}
	name := path.Base(filePath)
	for _, e := range entries {
		if e.Name == name {
			return e.Info(), nil
		}
	}
	return FileInfo{}, &fs.PathError{Op: "stat", Path: filePath, Err: fs.ErrNotExist}
}

func (f *FTPFS) Open(filePath string) (io.ReadCloser, error) {
	return f.OpenAt(filePath, 0)
}

// OpenAt sends REST before RETR when offset is positive. The control
// connection stays locked until the returned stream is closed.
func (f *FTPFS) OpenAt(filePath string, offset int64) (io.ReadCloser, error) {
	f.mu.Lock()
	resp, err := f.conn.RetrFrom(filePath, uint64(offset))
	if err != nil {
		f.mu.Unlock()
		return nil, err
	}
	return &ftpDownload{ReadCloser: resp, unlock: f.mu.Unlock}, nil
}

// ftpDownload releases the control connection on the first Close.
type ftpDownload struct {
	io.ReadCloser
	once   sync.Once
	unlock func()
}

func (r *ftpDownload) Close() error {
	err := r.ReadCloser.Close()
	r.once.Do(r.unlock)
	return err
}

// ftpUpload feeds a STOR or APPE running in the background. Close
// returns the server's verdict.
type ftpUpload struct {
	*io.PipeWriter
	done chan error
}

func (w *ftpUpload) Close() error {
	w.PipeWriter.Close()
	return <-w.done
}

func (f *FTPFS) upload(store func(c *ftp.ServerConn, r io.Reader) error) io.WriteCloser {
	pr, pw := io.Pipe()
	w := &ftpUpload{PipeWriter: pw, done: make(chan error, 1)}
	go func() {
		err := f.locked(func(c *ftp.ServerConn) error { return store(c, pr) })
		pr.CloseWithError(err)
		w.done <- err
	}()
	return w
}

func (f *FTPFS) Create(filePath string, _ fs.FileMode) (io.WriteCloser, error) {
	return f.upload(func(c *ftp.ServerConn, r io.Reader) error {
		return c.Stor(filePath, r)
	}), nil
}

func (f *FTPFS) Append(filePath string) (io.WriteCloser, error) {
	return f.upload(func(c *ftp.ServerConn, r io.Reader) error {
		return c.Append(filePath, r)
	}), nil
}

// MkdirAll creates each missing component. A failed MKD on a component
// that turns out to be a directory is not an error.
func (f *FTPFS) MkdirAll(dirPath string, _ fs.FileMode) error {
	current := "/"
	for _, part := range strings.Split(strings.Trim(dirPath, "/"), "/") {
		if part == "" {
			continue
		}
		current = path.Join(current, part)
		dir := current
		err := f.locked(func(c *ftp.ServerConn) error { return c.MakeDir(dir) })
		if err == nil {
			continue
		}
		if info, statErr := f.Stat(dir); statErr == nil && info.IsDir {
			continue
		}
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return nil
}

func (f *FTPFS) Remove(filePath string) error {
	return f.locked(func(c *ftp.ServerConn) error { return c.Delete(filePath) })
}

func (f *FTPFS) Rename(oldpath, newpath string) error {
	return f.locked(func(c *ftp.ServerConn) error { return c.Rename(oldpath, newpath) })
}

func (f *FTPFS) Join(elem ...string) string { return path.Join(elem...) }
func (f *FTPFS) Dir(p string) string        { return path.Dir(p) }
func (f *FTPFS) Base(p string) string       { return path.Base(p) }
func (f *FTPFS) IsLocal() bool              { return false }
func (f *FTPFS) ResumeSupported() bool      { return true }

// TimestampSupported is true only when the server answers MDTM.
func (f *FTPFS) TimestampSupported() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.conn.IsGetTimeSupported()
}

func (f *FTPFS) Close() error {
	close(f.done)
	return f.locked(func(c *ftp.ServerConn) error { return c.Quit() })
}

func ftpDirEntry(e *ftp.Entry) DirEntry {
	entry := DirEntry{
		Name:    e.Name,
		Size:    int64(e.Size),
		ModTime: e.Time,
		Mode:    0644,
	}
	switch e.Type {
	case ftp.EntryTypeFolder:
		entry.Mode = os.ModeDir | 0755
		entry.IsDir = true
	case ftp.EntryTypeLink:
		entry.Mode = os.ModeSymlink | 0777
		entry.IsLink = true
		entry.LinkTo = e.Target
	}
	return entry
}
