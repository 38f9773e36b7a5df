package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/ZoeBambery/cyberduck/internal/fileops"
	"github.com/ZoeBambery/cyberduck/internal/logging"
	"github.com/ZoeBambery/cyberduck/internal/platform"
	"github.com/ZoeBambery/cyberduck/internal/transfer"
	"github.com/ZoeBambery/cyberduck/internal/vfs"
	"github.com/ZoeBambery/cyberduck/internal/watch"
)

// Edit downloads remote into a temporary directory and opens it in the
// editor. Every save is uploaded back until the editor exits or ctx ends.
func (a *App) Edit(ctx context.Context, server, remote string) error {
	defer a.ConnMgr.DisconnectAll()

	s, err := a.connect(ctx, server)
	if err != nil {
		return err
	}

	dir, err := os.MkdirTemp("", "cyberduck-edit-")
	if err != nil {
		return err
	}
	local := filepath.Join(dir, s.FS().Base(remote))
	defer func() {
		if err := fileops.Delete(vfs.NewLocalFS(), local, dir); err != nil {
			logging.Warn("cleanup failed", logging.String("dir", dir), logging.Err(err))
		}
	}()

	down := transfer.New(transfer.Download, s)
	p, err := down.AddRoot(remote, local)
	if err != nil {
		return err
	}
	if p.Attributes().IsDir() {
		return fmt.Errorf("%s is a directory", remote)
	}
	if _, err := down.Run(ctx, transfer.Overwrite, nil); err != nil {
		return fmt.Errorf("download %s: %w", remote, err)
	}

	e := &editSession{session: s, remote: remote, local: local}
	if err := e.markUploaded(); err != nil {
		return err
	}

	watchCtx, stop := context.WithCancel(ctx)
	watchDone := make(chan error, 1)
	go func() {
		watchDone <- watch.New().Watch(watchCtx, local, watch.Listener{
			OnWrite: func(string) {
				if err := e.upload(watchCtx); err != nil {
					logging.Error("upload failed", logging.String("remote", remote), logging.Err(err))
				}
			},
			OnDelete: func(path string) {
				logging.Warn("edited file deleted", logging.String("path", path))
			},
		})
	}()

	editErr := runEditor(ctx, local)
	stop()
	if err := <-watchDone; err != nil && !errors.Is(err, context.Canceled) {
		logging.Warn("watch ended", logging.Err(err))
	}

	// Catch a save the watcher had not reported yet.
	if err := e.upload(context.WithoutCancel(ctx)); err != nil {
		return err
	}
	return editErr
}

type editSession struct {
	session *transfer.Session
	remote  string
	local   string

	mu      sync.Mutex
	modTime time.Time
	size    int64
}

func (e *editSession) markUploaded() error {
	fi, err := os.Stat(e.local)
	if err != nil {
		return err
	}
	e.modTime = fi.ModTime()
	e.size = fi.Size()
	return nil
}

// upload sends the local file when it changed since the last upload.
func (e *editSession) upload(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	fi, err := os.Stat(e.local)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if fi.ModTime().Equal(e.modTime) && fi.Size() == e.size {
		return nil
	}

	e.session.Invalidate(e.session.FS().Dir(e.remote))
	up := transfer.New(transfer.Upload, e.session)
	if _, err := up.AddRoot(e.remote, e.local); err != nil {
		return err
	}
	res, err := up.Run(ctx, transfer.Overwrite, nil)
	if err != nil {
		return fmt.Errorf("upload %s: %w", e.remote, err)
	}
	e.modTime = fi.ModTime()
	e.size = fi.Size()
	logging.Info("uploaded edit", logging.String("remote", e.remote), logging.Int64("bytes", res.Bytes))
	return nil
}

func runEditor(ctx context.Context, path string) error {
	args := strings.Fields(platform.Editor())
	if len(args) == 0 {
		return errors.New("no editor configured")
	}
	cmd := exec.CommandContext(ctx, args[0], append(args[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("editor: %w", err)
	}
	return nil
}
