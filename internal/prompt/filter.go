// Package prompt decides which transfer items the overwrite prompt lists
// and how each row is displayed.
package prompt

import (
	"strings"

	"github.com/ZoeBambery/cyberduck/internal/logging"
	"github.com/ZoeBambery/cyberduck/internal/transfer"
)

// Filter controls membership in the prompt list. Errors from metadata
// reads are returned as they are.
type Filter interface {
	Accept(p *transfer.Path) (bool, error)
}

// Rule is the inclusion check applied after a filter's own conditions.
type Rule interface {
	Include(p *transfer.Path) bool
}

// DefaultRule hides dot-files unless ShowHidden is set.
type DefaultRule struct {
	ShowHidden bool
}

func (r DefaultRule) Include(p *transfer.Path) bool {
	if !r.ShowHidden && strings.HasPrefix(p.Name(), ".") {
		return false
	}
	return true
}

// DownloadFilter lists items that already have a non-empty local copy.
type DownloadFilter struct {
	base Rule
}

func NewDownloadFilter(base Rule) *DownloadFilter {
	return &DownloadFilter{base: base}
}

func (f *DownloadFilter) Accept(p *transfer.Path) (bool, error) {
	logging.Debug("accept", logging.String("path", p.Remote))
	if p.Local == nil || !p.Local.Exists() {
		return false, nil
	}
	if p.Attributes().IsFile() && p.Local.Attributes().Size == 0 {
		return false, nil
	}
	return f.base.Include(p), nil
}

// UploadFilter lists items already on the server. Size and, where the
// server supports it, timestamp are read on demand so the row can show them.
type UploadFilter struct {
	base Rule
}

func NewUploadFilter(base Rule) *UploadFilter {
	return &UploadFilter{base: base}
}

func (f *UploadFilter) Accept(p *transfer.Path) (bool, error) {
	logging.Debug("accept", logging.String("path", p.Remote))
	exists, err := p.Exists()
	if err != nil {
		return false, err
	}
	if !exists {
		return false, nil
	}
	if p.Attributes().Size == transfer.SizeUnknown {
		if err := p.ReadSize(); err != nil {
			return false, err
		}
	}
	if p.Session().TimestampSupported() && p.Attributes().Modified == transfer.TimestampUnknown {
		if err := p.ReadTimestamp(); err != nil {
			return false, err
		}
	}
	return f.base.Include(p), nil
}
