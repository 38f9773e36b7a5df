// Package watch reports changes to a single file being edited.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ZoeBambery/cyberduck/internal/logging"
)

const DefaultDebounce = 500 * time.Millisecond

// Listener receives file events. Nil callbacks are ignored.
type Listener struct {
	OnWrite  func(path string)
	OnDelete func(path string)
}

type Watcher struct {
	// Debounce is how long the file must stay quiet before OnWrite fires.
	Debounce time.Duration
}

func New() *Watcher {
	return &Watcher{Debounce: DefaultDebounce}
}

// Watch blocks until ctx is done or the file is deleted. The parent
// directory is watched so editors that save by replacing the file are
// seen as writes.
func (w *Watcher) Watch(ctx context.Context, path string, l Listener) error {
	s, err := w.start(path)
	if err != nil {
		return err
	}
	return s.run(ctx, l)
}

type session struct {
	fw       *fsnotify.Watcher
	path     string
	debounce time.Duration
}

func (w *Watcher) start(path string) (*session, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	path = filepath.Clean(path)
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}
	d := w.Debounce
	if d <= 0 {
		d = DefaultDebounce
	}
	return &session{fw: fw, path: path, debounce: d}, nil
}

func (s *session) run(ctx context.Context, l Listener) error {
	defer s.fw.Close()

	var fire <-chan time.Time
	written, gone := false, false
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-s.fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != s.path {
				continue
			}
			logging.Debug("watch event", logging.String("path", s.path), logging.String("op", ev.Op.String()))
			switch {
			case ev.Has(fsnotify.Write), ev.Has(fsnotify.Create):
				written, gone = true, false
			case ev.Has(fsnotify.Rename), ev.Has(fsnotify.Remove):
				gone = true
			default:
				continue
			}
			fire = time.After(s.debounce)

		case err, ok := <-s.fw.Errors:
			if !ok {
				return nil
			}
			logging.Warn("watch error", logging.String("path", s.path), logging.Err(err))

		case <-fire:
			fire = nil
			if gone {
				if _, err := os.Stat(s.path); err != nil {
					if l.OnDelete != nil {
						l.OnDelete(s.path)
					}
					return nil
				}
				// replaced by a new file
				written = true
			}
			if written && l.OnWrite != nil {
				l.OnWrite(s.path)
			}
			written, gone = false, false
		}
	}
}
