package vfs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
	"golang.org/x/crypto/ssh/knownhosts"

	"github.com/ZoeBambery/cyberduck/internal/config"
	"github.com/ZoeBambery/cyberduck/internal/logging"
)

const sshDialTimeout = 15 * time.Second

// SFTPFS implements FileSystem over an SSH/SFTP connection.
type SFTPFS struct {
	client    *sftp.Client
	sshClient *ssh.Client
}

// NewSFTPFS dials the server and opens an SFTP session. Authentication
// tries the configured key, then a running ssh-agent, then the password.
func NewSFTPFS(ctx context.Context, cfg config.ServerConfig) (*SFTPFS, error) {
	port := cfg.Port
	if port == 0 {
		port = 22
	}
	addr := net.JoinHostPort(cfg.Host, fmt.Sprint(port))

	auth, closeAgent, err := sshAuth(cfg)
	if err != nil {
		return nil, err
	}
	defer closeAgent()

	sshConfig := &ssh.ClientConfig{
		User:            cfg.User,
		Auth:            auth,
		HostKeyCallback: hostKeyCallback(),
		Timeout:         sshDialTimeout,
	}

	dialer := net.Dialer{Timeout: sshDialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	c, chans, reqs, err := ssh.NewClientConn(conn, addr, sshConfig)
	if err != nil {
		conn.Close()
		if strings.Contains(err.Error(), "unable to authenticate") {
			return nil, fmt.Errorf("ssh handshake %s: %w: %w", addr, ErrAuth, err)
		}
		return nil, fmt.Errorf("ssh handshake %s: %w", addr, err)
	}
	sshClient := ssh.NewClient(c, chans, reqs)

	client, err := sftp.NewClient(sshClient, sftp.UseConcurrentWrites(true))
	if err != nil {
		sshClient.Close()
		return nil, fmt.Errorf("sftp session %s: %w", addr, err)
	}
	return &SFTPFS{client: client, sshClient: sshClient}, nil
}

// sshAuth collects the auth methods for cfg. The returned func releases
// the agent connection once the handshake is done.
func sshAuth(cfg config.ServerConfig) ([]ssh.AuthMethod, func(), error) {
	var methods []ssh.AuthMethod
	release := func() {}

	if cfg.KeyPath != "" {
		keyData, err := os.ReadFile(cfg.KeyPath)
		if err != nil {
			return nil, release, fmt.Errorf("read key %s: %w", cfg.KeyPath, err)
		}
		signer, err := ssh.ParsePrivateKey(keyData)
		if err != nil {
			return nil, release, fmt.Errorf("parse key %s: %w", cfg.KeyPath, err)
		}
		methods = append(methods, ssh.PublicKeys(signer))
	}

	if sock := os.Getenv("SSH_AUTH_SOCK"); sock != "" {
		if conn, err := net.Dial("unix", sock); err == nil {
			methods = append(methods, ssh.PublicKeysCallback(agent.NewClient(conn).Signers))
			release = func() { conn.Close() }
		} else {
			logging.Debug("ssh-agent unavailable", logging.Err(err))
		}
	}

	if cfg.Password != "" {
		methods = append(methods, ssh.Password(cfg.Password))
	}

	if len(methods) == 0 {
		return nil, release, fmt.Errorf("%w: no authentication method configured for %s", ErrAuth, cfg.Name)
	}
	return methods, release, nil
}

// hostKeyCallback checks ~/.ssh/known_hosts when it exists and accepts
// any key otherwise.
func hostKeyCallback() ssh.HostKeyCallback {
	home, err := os.UserHomeDir()
	if err == nil {
		cb, err := knownhosts.New(filepath.Join(home, ".ssh", "known_hosts"))
		if err == nil {
			return cb
		}
		logging.Debug("known_hosts not loaded", logging.Err(err))
	}
	logging.Warn("host key verification disabled")
	return ssh.InsecureIgnoreHostKey()
}

func (s *SFTPFS) ReadDir(dirPath string) ([]DirEntry, error) {
	infos, err := s.client.ReadDir(dirPath)
	if err != nil {
		return nil, err
	}

	entries := make([]DirEntry, 0, len(infos))
	for _, fi := range infos {
		entry := dirEntryFromOS(fi)
		if entry.IsLink {
			s.followLink(path.Join(dirPath, fi.Name()), &entry)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// followLink fills the target and the target's attributes into a
// symlink entry. Dangling links keep their own attributes.
func (s *SFTPFS) followLink(p string, entry *DirEntry) {
	if target, err := s.client.ReadLink(p); err == nil {
		entry.LinkTo = target
	}
	if fi, err := s.client.Stat(p); err == nil {
		entry.IsDir = fi.IsDir()
		entry.Size = fi.Size()
		entry.ModTime = fi.ModTime()
		entry.Mode = fi.Mode()
	}
}

func (s *SFTPFS) Stat(filePath string) (FileInfo, error) {
	fi, err := s.client.Stat(filePath)
	if err != nil {
		return FileInfo{}, err
	}
	return fileInfoFromOS(fi), nil
}

func (s *SFTPFS) Open(filePath string) (io.ReadCloser, error) {
	return s.OpenAt(filePath, 0)
}

func (s *SFTPFS) OpenAt(filePath string, offset int64) (io.ReadCloser, error) {
	f, err := s.client.Open(filePath)
	if err != nil {
		return nil, err
	}
	return seekOrClose(f, offset, io.SeekStart)
}

func (s *SFTPFS) Create(filePath string, mode fs.FileMode) (io.WriteCloser, error) {
	f, err := s.client.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC)
	if err != nil {
		return nil, err
	}
	if err := s.client.Chmod(filePath, mode.Perm()); err != nil {
		logging.Debug("chmod refused", logging.String("path", filePath), logging.Err(err))
	}
	return f, nil
}

// Append seeks to the end itself; many servers ignore O_APPEND.
func (s *SFTPFS) Append(filePath string) (io.WriteCloser, error) {
	f, err := s.client.OpenFile(filePath, os.O_CREATE|os.O_WRONLY)
	if err != nil {
		return nil, err
	}
	return seekOrClose(f, 0, io.SeekEnd)
}

func seekOrClose(f *sftp.File, offset int64, whence int) (io.ReadWriteCloser, error) {
	if offset == 0 && whence == io.SeekStart {
		return f, nil
	}
	if _, err := f.Seek(offset, whence); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

func (s *SFTPFS) MkdirAll(dirPath string, _ fs.FileMode) error {
	return s.client.MkdirAll(dirPath)
}

func (s *SFTPFS) Remove(filePath string) error {
	return s.client.Remove(filePath)
}

// Rename prefers the atomic posix-rename extension.
func (s *SFTPFS) Rename(oldpath, newpath string) error {
	if err := s.client.PosixRename(oldpath, newpath); err == nil {
		return nil
	}
	return s.client.Rename(oldpath, newpath)
}

func (s *SFTPFS) Join(elem ...string) string { return path.Join(elem...) }
func (s *SFTPFS) Dir(p string) string        { return path.Dir(p) }
func (s *SFTPFS) Base(p string) string       { return path.Base(p) }
func (s *SFTPFS) IsLocal() bool              { return false }
func (s *SFTPFS) TimestampSupported() bool   { return true }
func (s *SFTPFS) ResumeSupported() bool      { return true }

func (s *SFTPFS) Close() error {
	s.client.Close()
	return s.sshClient.Close()
}

func fileInfoFromOS(fi os.FileInfo) FileInfo {
	return FileInfo{
		Name:    fi.Name(),
		Size:    fi.Size(),
		ModTime: fi.ModTime(),
		Mode:    fi.Mode(),
		IsDir:   fi.IsDir(),
	}
}

func dirEntryFromOS(fi os.FileInfo) DirEntry {
	return DirEntry{
		Name:    fi.Name(),
		Size:    fi.Size(),
		ModTime: fi.ModTime(),
		Mode:    fi.Mode(),
		IsDir:   fi.IsDir(),
		IsLink:  fi.Mode()&os.ModeSymlink != 0,
	}
}

func isNotExist(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, fs.ErrNotExist) {
		return true
	}
	var statusErr *sftp.StatusError
	if errors.As(err, &statusErr) && statusErr.FxCode() == sftp.ErrSSHFxNoSuchFile {
		return true
	}
	// sftp and ftp servers may only say it in the message
	msg := err.Error()
	return strings.Contains(msg, "not exist") || strings.Contains(msg, "No such file")
}
