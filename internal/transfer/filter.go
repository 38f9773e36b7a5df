package transfer

import (
	"fmt"
	"strings"

	"github.com/ZoeBambery/cyberduck/internal/logging"
	"github.com/ZoeBambery/cyberduck/internal/vfs"
)

// Filter decides per item whether it is transferred under an action and
// prepares its status before the copy starts.
type Filter interface {
	Accept(p *Path) (bool, error)
	Prepare(p *Path) error
}

// Filter returns the filter for a concrete action. Callback must be
// resolved with Resolve first.
func (t *Transfer) Filter(a Action) (Filter, error) {
	switch a {
	case Overwrite:
		return &overwriteFilter{t: t}, nil
	case Resume:
		return &resumeFilter{t: t}, nil
	case Rename:
		return &renameFilter{t: t}, nil
	case Skip:
		return &skipFilter{t: t}, nil
	case RenameExisting:
		return &renameExistingFilter{t: t}, nil
	default:
		return nil, fmt.Errorf("no filter for action %q", a)
	}
}

// acceptDirectory creates missing directories only; existing ones are
// still descended into.
func (t *Transfer) acceptDirectory(p *Path) (bool, error) {
	exists, err := t.DestinationExists(p)
	if err != nil {
		return false, err
	}
	return !exists, nil
}

func (t *Transfer) acceptSource(p *Path) bool {
	if t.dir == Upload {
		return p.Local.Exists()
	}
	return true
}

type overwriteFilter struct {
	t *Transfer
}

func (f *overwriteFilter) Accept(p *Path) (bool, error) {
	if p.attrs.IsDir() {
		return f.t.acceptDirectory(p)
	}
	return f.t.acceptSource(p), nil
}

func (f *overwriteFilter) Prepare(p *Path) error {
	p.Status.Resume = false
	p.Status.Offset = 0
	return nil
}

type resumeFilter struct {
	t *Transfer
}

func (f *resumeFilter) Accept(p *Path) (bool, error) {
	if p.attrs.IsDir() {
		return f.t.acceptDirectory(p)
	}
	if p.Status.Complete || !f.t.acceptSource(p) {
		return false, nil
	}
	exists, err := f.t.DestinationExists(p)
	if err != nil {
		return false, err
	}
	if !exists {
		return true, nil
	}
	src, err := f.t.sourceSize(p)
	if err != nil {
		return false, err
	}
	dst, err := f.t.destinationSize(p)
	if err != nil {
		return false, err
	}
	if src == dst {
		p.Status.Complete = true
		return false, nil
	}
	return true, nil
}

func (f *resumeFilter) Prepare(p *Path) error {
	p.Status.Resume = false
	p.Status.Offset = 0
	if p.attrs.IsDir() || !f.t.session.ResumeSupported() {
		return nil
	}
	exists, err := f.t.DestinationExists(p)
	if err != nil || !exists {
		return err
	}
	src, err := f.t.sourceSize(p)
	if err != nil {
		return err
	}
	dst, err := f.t.destinationSize(p)
	if err != nil {
		return err
	}
	// A larger destination cannot be a prefix of the source.
	if dst > 0 && dst < src {
		p.Status.Resume = true
		p.Status.Offset = dst
	}
	return nil
}

type renameFilter struct {
	t *Transfer
}

func (f *renameFilter) Accept(p *Path) (bool, error) {
	return f.t.acceptSource(p), nil
}

func (f *renameFilter) Prepare(p *Path) error {
	p.Status.Resume = false
	p.Status.Offset = 0
	exists, err := f.t.DestinationExists(p)
	if err != nil || !exists {
		return err
	}

	name := f.t.destinationName(p)
	for i := 1; ; i++ {
		f.t.setDestinationName(p, numberedName(name, i))
		exists, err := f.t.DestinationExists(p)
		if err != nil {
			return err
		}
		if !exists {
			break
		}
	}
	// Children were listed against the old name.
	delete(f.t.children, p)
	return nil
}

type skipFilter struct {
	t *Transfer
}

func (f *skipFilter) Accept(p *Path) (bool, error) {
	if !f.t.acceptSource(p) {
		return false, nil
	}
	exists, err := f.t.DestinationExists(p)
	if err != nil {
		return false, err
	}
	if exists {
		p.Status.Complete = true
		return false, nil
	}
	return true, nil
}

func (f *skipFilter) Prepare(p *Path) error {
	p.Status.Resume = false
	p.Status.Offset = 0
	return nil
}

type renameExistingFilter struct {
	t *Transfer
}

func (f *renameExistingFilter) Accept(p *Path) (bool, error) {
	return f.t.acceptSource(p), nil
}

// Prepare moves an existing destination to "name (timestamp).ext", adding
// a counter when that is taken too.
func (f *renameExistingFilter) Prepare(p *Path) error {
	p.Status.Resume = false
	p.Status.Offset = 0
	exists, err := f.t.DestinationExists(p)
	if err != nil || !exists {
		return err
	}

	_, _, fsys, dst := f.t.endpoints(p)
	stamp := f.t.now().Format("2006-01-02 15.04.05")
	var target string
	for i := 0; ; i++ {
		target = fsys.Join(fsys.Dir(dst), backupName(fsys.Base(dst), stamp, i))
		_, err := fsys.Stat(target)
		if vfs.IsNotExist(err) {
			break
		}
		if err != nil {
			return err
		}
	}
	if err := fsys.Rename(dst, target); err != nil {
		return fmt.Errorf("rename %s to %s: %w", dst, target, err)
	}
	logging.Info("renamed existing",
		logging.String("from", dst),
		logging.String("to", target))

	if f.t.dir == Upload {
		f.t.session.Invalidate(fsys.Dir(dst))
		f.t.session.Invalidate(dst)
	}
	delete(f.t.children, p)
	return nil
}

// backupName turns "report.txt" into "report (stamp).txt", or
// "report (stamp)-n.txt" for n > 0.
func backupName(name, stamp string, n int) string {
	base, ext := name, ""
	if i := strings.LastIndex(name, "."); i > 0 {
		base, ext = name[:i], name[i:]
	}
	base = fmt.Sprintf("%s (%s)", base, stamp)
	if n > 0 {
		base = fmt.Sprintf("%s-%d", base, n)
	}
	return base + ext
}

func (t *Transfer) destinationName(p *Path) string {
	if t.dir == Download {
		return p.Local.Name()
	}
	return p.Name()
}

func (t *Transfer) setDestinationName(p *Path, name string) {
	if t.dir == Download {
		parent := &Local{path: p.Local.fs.Dir(p.Local.path), fs: p.Local.fs}
		p.Local = parent.Child(name)
		return
	}
	p.Remote = t.session.fs.Join(t.session.fs.Dir(p.Remote), name)
}

// numberedName turns "report.txt" into "report-1.txt". Dot files and
// names without an extension get the number appended.
func numberedName(name string, n int) string {
	if i := strings.LastIndex(name, "."); i > 0 {
		return fmt.Sprintf("%s-%d%s", name[:i], n, name[i:])
	}
	return fmt.Sprintf("%s-%d", name, n)
}
