package transfer

import (
	"fmt"
)

// Status tracks the progress of one item within a transfer.
type Status struct {
	Resume   bool
	Complete bool
	Offset   int64
}

// Path is one transfer item: a remote path, its local counterpart and
// the remote attributes read so far.
type Path struct {
	Remote string
	Local  *Local
	// Skipped marks an item the user excluded from the transfer.
	Skipped bool
	Status  Status

	attrs   Attributes
	session *Session
}

// NewPath creates an item whose remote size and timestamp are unknown.
func NewPath(s *Session, remote string, local *Local, t FileType) *Path {
	return &Path{
		Remote:  remote,
		Local:   local,
		attrs:   UnknownAttributes(t),
		session: s,
	}
}

func (p *Path) Name() string {
	return p.session.fs.Base(p.Remote)
}

func (p *Path) Session() *Session {
	return p.session
}

// Attributes returns the cached remote attributes.
func (p *Path) Attributes() Attributes {
	return p.attrs
}

func (p *Path) SetAttributes(a Attributes) {
	p.attrs = a
}

// Exists reports whether the remote file is present, consulting the
// session's cached listing of the parent directory.
func (p *Path) Exists() (bool, error) {
	if p.session.isRoot(p.Remote) {
		return true, nil
	}
	_, ok, err := p.session.Lookup(p.Remote)
	return ok, err
}

// ReadSize fetches the remote size into the cached attributes.
// Errors from the server are returned as they are.
func (p *Path) ReadSize() error {
	fi, err := p.session.fs.Stat(p.Remote)
	if err != nil {
		return err
	}
	p.attrs.Size = fi.Size
	return nil
}

// ReadTimestamp fetches the remote modification time into the cached attributes.
func (p *Path) ReadTimestamp() error {
	fi, err := p.session.fs.Stat(p.Remote)
	if err != nil {
		return err
	}
	p.attrs.Modified = fi.ModTime.UnixMilli()
	return nil
}

func (p *Path) String() string {
	if p.Local == nil {
		return p.Remote
	}
	return fmt.Sprintf("%s <-> %s", p.Remote, p.Local.Path())
}
