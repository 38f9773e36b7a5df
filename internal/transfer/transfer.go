package transfer

import (
	"fmt"
	"regexp"
	"sort"
	"time"

	"github.com/ZoeBambery/cyberduck/internal/logging"
	"github.com/ZoeBambery/cyberduck/internal/vfs"
)

// Transfer is a set of root items moved in one direction between a
// session and the local disk, together with the listings of their children.
type Transfer struct {
	dir      Direction
	session  *Session
	roots    []*Path
	children map[*Path][]*Path
	exclude  *regexp.Regexp
	now      func() time.Time
}

func New(dir Direction, s *Session) *Transfer {
	return &Transfer{
		dir:      dir,
		session:  s,
		children: make(map[*Path][]*Path),
		now:      time.Now,
	}
}

func (t *Transfer) Direction() Direction {
	return t.dir
}

func (t *Transfer) Session() *Session {
	return t.session
}

func (t *Transfer) Roots() []*Path {
	return t.roots
}

// SetExclude hides children whose name matches re from listings.
func (t *Transfer) SetExclude(re *regexp.Regexp) {
	t.exclude = re
}

// AddRoot adds a top-level item. The source side must exist: the remote
// path for downloads, the local path for uploads.
func (t *Transfer) AddRoot(remote, local string) (*Path, error) {
	l := NewLocal(local)

	var p *Path
	switch t.dir {
	case Download:
		fi, err := t.session.fs.Stat(remote)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", remote, err)
		}
		p = NewPath(t.session, remote, l, typeOf(fi.IsDir))
		p.attrs = attributesFromInfo(fi)
	default:
		fi, err := l.fs.Stat(local)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", local, err)
		}
		p = NewPath(t.session, remote, l, typeOf(fi.IsDir))
	}

	t.roots = append(t.roots, p)
	return p, nil
}

// Children lists the items below parent. Downloads list the server,
// uploads list the local directory. Results are cached per parent.
func (t *Transfer) Children(parent *Path) ([]*Path, error) {
	if cached, ok := t.children[parent]; ok {
		return cached, nil
	}

	var result []*Path
	var err error
	if t.dir == Download {
		result, err = t.remoteChildren(parent)
	} else {
		result, err = t.localChildren(parent)
	}
	if err != nil {
		return nil, err
	}

	sort.Slice(result, func(i, j int) bool { return result[i].Remote < result[j].Remote })
	t.children[parent] = result
	return result, nil
}

func (t *Transfer) remoteChildren(parent *Path) ([]*Path, error) {
	entries, err := t.session.List(parent.Remote)
	if err != nil {
		return nil, err
	}
	result := make([]*Path, 0, len(entries))
	for _, e := range entries {
		if t.excluded(e.Name) {
			continue
		}
		child := NewPath(t.session, t.session.fs.Join(parent.Remote, e.Name), parent.Local.Child(e.Name), typeOf(e.IsDir))
		child.attrs = attributesFromInfo(e.Info())
		result = append(result, child)
	}
	return result, nil
}

func (t *Transfer) localChildren(parent *Path) ([]*Path, error) {
	if !parent.Local.Exists() {
		return nil, nil
	}
	entries, err := parent.Local.list()
	if err != nil {
		return nil, err
	}
	result := make([]*Path, 0, len(entries))
	for _, e := range entries {
		if t.excluded(e.Name) {
			continue
		}
		remote := t.session.fs.Join(parent.Remote, e.Name)
		child := NewPath(t.session, remote, parent.Local.Child(e.Name), typeOf(e.IsDir))
		// Items already on the server take the listed attributes.
		re, ok, err := t.session.Lookup(remote)
		if err != nil {
			return nil, err
		}
		if ok {
			child.attrs = attributesFromInfo(re.Info())
			child.attrs.Type = typeOf(e.IsDir)
		}
		result = append(result, child)
	}
	return result, nil
}

func (t *Transfer) excluded(name string) bool {
	return t.exclude != nil && t.exclude.MatchString(name)
}

// DestinationExists reports whether p is already present where it would
// be written: on disk for downloads, on the server for uploads.
func (t *Transfer) DestinationExists(p *Path) (bool, error) {
	if t.dir == Download {
		return p.Local != nil && p.Local.Exists(), nil
	}
	return p.Exists()
}

// NeedsPrompt reports whether any root already exists at the destination.
// Existing empty directories do not count.
func (t *Transfer) NeedsPrompt() (bool, error) {
	for _, root := range t.roots {
		exists, err := t.DestinationExists(root)
		if err != nil {
			return false, err
		}
		if !exists {
			continue
		}
		if root.attrs.IsDir() {
			children, err := t.Children(root)
			if err != nil {
				return false, err
			}
			if len(children) == 0 {
				continue
			}
		}
		return true, nil
	}
	return false, nil
}

// Resolve turns Callback into a concrete action. When nothing at the
// destination would be touched it picks Overwrite without asking.
func (t *Transfer) Resolve(a Action, ask func() (Action, error)) (Action, error) {
	if a != Callback {
		return a, nil
	}
	need, err := t.NeedsPrompt()
	if err != nil {
		return Callback, err
	}
	if !need {
		logging.Debug("no existing files, overwrite without prompt", logging.String("direction", t.dir.String()))
		return Overwrite, nil
	}
	return ask()
}

// endpoints returns source and destination for copying p.
func (t *Transfer) endpoints(p *Path) (srcFS vfs.FileSystem, src string, dstFS vfs.FileSystem, dst string) {
	if t.dir == Download {
		return t.session.fs, p.Remote, p.Local.fs, p.Local.path
	}
	return p.Local.fs, p.Local.path, t.session.fs, p.Remote
}

func (t *Transfer) sourceSize(p *Path) (int64, error) {
	if t.dir == Upload {
		return p.Local.Attributes().Size, nil
	}
	if p.attrs.Size == SizeUnknown {
		if err := p.ReadSize(); err != nil {
			return 0, err
		}
	}
	return p.attrs.Size, nil
}

// destinationSize assumes the destination exists.
func (t *Transfer) destinationSize(p *Path) (int64, error) {
	if t.dir == Download {
		return p.Local.Attributes().Size, nil
	}
	if p.attrs.Size == SizeUnknown {
		if err := p.ReadSize(); err != nil {
			return 0, err
		}
	}
	return p.attrs.Size, nil
}
