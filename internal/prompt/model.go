package prompt

import (
	"github.com/ZoeBambery/cyberduck/internal/transfer"
)

// Model backs the prompt's list view: which items appear, the size shown
// for each and whether it is flagged.
type Model interface {
	Filter() Filter
	// Size is the size of the copy that would be replaced.
	Size(p *transfer.Path) int64
	// Warning flags files where replacing looks suspicious.
	Warning(p *transfer.Path) bool
}

// NewModel returns the model for the transfer direction.
func NewModel(dir transfer.Direction, base Rule) Model {
	if dir == transfer.Upload {
		return NewUploadModel(base)
	}
	return NewDownloadModel(base)
}

type DownloadModel struct {
	filter *DownloadFilter
}

func NewDownloadModel(base Rule) *DownloadModel {
	return &DownloadModel{filter: NewDownloadFilter(base)}
}

func (m *DownloadModel) Filter() Filter {
	return m.filter
}

// Size returns the local file size.
func (m *DownloadModel) Size(p *transfer.Path) int64 {
	if p.Local == nil {
		return transfer.SizeUnknown
	}
	return p.Local.Attributes().Size
}

// Warning is set when the remote file is empty or smaller than the local one.
func (m *DownloadModel) Warning(p *transfer.Path) bool {
	a := p.Attributes()
	if !a.IsFile() {
		return false
	}
	if a.Size == 0 {
		return true
	}
	var local int64
	if p.Local != nil {
		local = p.Local.Attributes().Size
	}
	return local > a.Size
}

type UploadModel struct {
	filter *UploadFilter
}

func NewUploadModel(base Rule) *UploadModel {
	return &UploadModel{filter: NewUploadFilter(base)}
}

func (m *UploadModel) Filter() Filter {
	return m.filter
}

// Size returns the remote file size.
func (m *UploadModel) Size(p *transfer.Path) int64 {
	return p.Attributes().Size
}

// Warning is set when the remote file is empty or larger than the local one.
func (m *UploadModel) Warning(p *transfer.Path) bool {
	a := p.Attributes()
	if !a.IsFile() {
		return false
	}
	if a.Size == 0 {
		return true
	}
	var local int64
	if p.Local != nil {
		local = p.Local.Attributes().Size
	}
	return a.Size > local
}
