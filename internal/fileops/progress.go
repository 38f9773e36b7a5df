package fileops

// Progress is reported while a single file is copied.
type Progress struct {
	FileName string
	Total    int64 // source size
	Done     int64 // bytes at the destination, Offset included
	Offset   int64 // bytes already present when a resumed copy started

	FileIndex int // 1-based, set by the transfer
	FileCount int
}

// Percent returns the completion percentage clamped to 0-100.
func (p Progress) Percent() int {
	if p.Total <= 0 {
		return 100
	}
	pct := int(p.Done * 100 / p.Total)
	if pct > 100 {
		return 100
	}
	return pct
}

// Transferred is the number of bytes moved by this copy.
func (p Progress) Transferred() int64 {
	return p.Done - p.Offset
}
