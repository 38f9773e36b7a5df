package prompt

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ZoeBambery/cyberduck/internal/transfer"
	"github.com/ZoeBambery/cyberduck/internal/vfs/vfstest"
)

var modTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type recordingRule struct {
	include bool
	calls   int
	sizes   []int64
}

func (r *recordingRule) Include(p *transfer.Path) bool {
	r.calls++
	r.sizes = append(r.sizes, p.Attributes().Size)
	return r.include
}

func writeLocal(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

// item builds a path with the given remote size; local may not exist.
func item(s *transfer.Session, remote, local string, typ transfer.FileType, size int64) *transfer.Path {
	p := transfer.NewPath(s, remote, transfer.NewLocal(local), typ)
	a := transfer.UnknownAttributes(typ)
	a.Size = size
	p.SetAttributes(a)
	return p
}

func TestDownloadFilter(t *testing.T) {
	dir := t.TempDir()
	writeLocal(t, filepath.Join(dir, "full.txt"), "content")
	writeLocal(t, filepath.Join(dir, "empty.txt"), "")
	if err := os.Mkdir(filepath.Join(dir, "folder"), 0755); err != nil {
		t.Fatal(err)
	}
	s := transfer.NewSession("test", vfstest.New())

	tests := []struct {
		name      string
		path      *transfer.Path
		include   bool
		want      bool
		wantCalls int
	}{
		{"missing local", item(s, "/srv/none.txt", filepath.Join(dir, "none.txt"), transfer.TypeFile, 10), true, false, 0},
		{"empty local file", item(s, "/srv/empty.txt", filepath.Join(dir, "empty.txt"), transfer.TypeFile, 10), true, false, 0},
		{"local file, rule accepts", item(s, "/srv/full.txt", filepath.Join(dir, "full.txt"), transfer.TypeFile, 10), true, true, 1},
		{"local file, rule rejects", item(s, "/srv/full.txt", filepath.Join(dir, "full.txt"), transfer.TypeFile, 10), false, false, 1},
		{"local directory", item(s, "/srv/folder", filepath.Join(dir, "folder"), transfer.TypeDirectory, 0), true, true, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := &recordingRule{include: tt.include}
			got, err := NewDownloadFilter(rule).Accept(tt.path)
			if err != nil {
				t.Fatalf("Accept: %v", err)
			}
			if got != tt.want {
				t.Errorf("Accept = %v, want %v", got, tt.want)
			}
			if rule.calls != tt.wantCalls {
				t.Errorf("rule called %d times, want %d", rule.calls, tt.wantCalls)
			}
		})
	}
}

func TestDownloadFilterWithoutLocal(t *testing.T) {
	s := transfer.NewSession("test", vfstest.New())
	p := transfer.NewPath(s, "/srv/a.txt", nil, transfer.TypeFile)
	got, err := NewDownloadFilter(DefaultRule{}).Accept(p)
	if err != nil || got {
		t.Errorf("Accept = %v, %v; want false, nil", got, err)
	}
}

func TestUploadFilterRejectsMissingRemote(t *testing.T) {
	remote := vfstest.New()
	remote.AddDir("/srv")
	s := transfer.NewSession("test", remote)
	p := item(s, "/srv/a.txt", filepath.Join(t.TempDir(), "a.txt"), transfer.TypeFile, transfer.SizeUnknown)
	rule := &recordingRule{include: true}

	got, err := NewUploadFilter(rule).Accept(p)
	if err != nil || got {
		t.Errorf("Accept = %v, %v; want false, nil", got, err)
	}
	if rule.calls != 0 {
		t.Errorf("rule called %d times", rule.calls)
	}
	if n := remote.StatCalls("/srv/a.txt"); n != 0 {
		t.Errorf("stat called %d times for a missing file", n)
	}
}

func TestUploadFilterResolvesMetadata(t *testing.T) {
	tests := []struct {
		name          string
		timestamps    bool
		wantStats     int
		wantTimestamp bool
	}{
		{"timestamps supported", true, 2, true},
		{"timestamps unsupported", false, 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			remote := vfstest.New()
			remote.Timestamps = tt.timestamps
			remote.AddFile("/srv/a.txt", "remote", modTime)
			s := transfer.NewSession("test", remote)
			p := item(s, "/srv/a.txt", filepath.Join(t.TempDir(), "a.txt"), transfer.TypeFile, transfer.SizeUnknown)
			rule := &recordingRule{include: true}

			got, err := NewUploadFilter(rule).Accept(p)
			if err != nil {
				t.Fatalf("Accept: %v", err)
			}
			if !got {
				t.Error("Accept = false, want true")
			}
			// size is known by the time the rule runs
			if len(rule.sizes) != 1 || rule.sizes[0] != 6 {
				t.Errorf("rule saw sizes %v, want [6]", rule.sizes)
			}
			if n := remote.StatCalls("/srv/a.txt"); n != tt.wantStats {
				t.Errorf("stat called %d times, want %d", n, tt.wantStats)
			}
			hasTimestamp := p.Attributes().Modified != transfer.TimestampUnknown
			if hasTimestamp != tt.wantTimestamp {
				t.Errorf("timestamp read = %v, want %v", hasTimestamp, tt.wantTimestamp)
			}
			if tt.wantTimestamp && p.Attributes().Modified != modTime.UnixMilli() {
				t.Errorf("modified = %d", p.Attributes().Modified)
			}
		})
	}
}

func TestUploadFilterKnownMetadata(t *testing.T) {
	remote := vfstest.New()
	remote.AddFile("/srv/a.txt", "remote", modTime)
	s := transfer.NewSession("test", remote)
	p := item(s, "/srv/a.txt", filepath.Join(t.TempDir(), "a.txt"), transfer.TypeFile, 6)
	a := p.Attributes()
	a.Modified = modTime.UnixMilli()
	p.SetAttributes(a)

	if _, err := NewUploadFilter(DefaultRule{}).Accept(p); err != nil {
		t.Fatal(err)
	}
	if n := remote.StatCalls("/srv/a.txt"); n != 0 {
		t.Errorf("stat called %d times, want 0", n)
	}
}

func TestUploadFilterPropagatesErrors(t *testing.T) {
	failure := errors.New("permission denied")

	t.Run("size", func(t *testing.T) {
		remote := vfstest.New()
		remote.AddFile("/srv/a.txt", "remote", modTime)
		remote.FailStat("/srv/a.txt", failure)
		s := transfer.NewSession("test", remote)
		p := item(s, "/srv/a.txt", "/nonexistent/a.txt", transfer.TypeFile, transfer.SizeUnknown)

		if _, err := NewUploadFilter(DefaultRule{}).Accept(p); !errors.Is(err, failure) {
			t.Errorf("err = %v, want %v", err, failure)
		}
	})

	t.Run("listing", func(t *testing.T) {
		remote := vfstest.New()
		remote.AddFile("/srv/a.txt", "remote", modTime)
		remote.FailList("/srv", failure)
		s := transfer.NewSession("test", remote)
		p := item(s, "/srv/a.txt", "/nonexistent/a.txt", transfer.TypeFile, transfer.SizeUnknown)

		if _, err := NewUploadFilter(DefaultRule{}).Accept(p); !errors.Is(err, failure) {
			t.Errorf("err = %v, want %v", err, failure)
		}
	})
}

func TestDefaultRule(t *testing.T) {
	s := transfer.NewSession("test", vfstest.New())
	hidden := item(s, "/srv/.env", "/tmp/.env", transfer.TypeFile, 1)
	visible := item(s, "/srv/env", "/tmp/env", transfer.TypeFile, 1)

	if (DefaultRule{}).Include(hidden) {
		t.Error("hidden file included by default")
	}
	if !(DefaultRule{ShowHidden: true}).Include(hidden) {
		t.Error("hidden file excluded with ShowHidden")
	}
	if !(DefaultRule{}).Include(visible) {
		t.Error("visible file excluded")
	}
}

func TestDownloadModel(t *testing.T) {
	dir := t.TempDir()
	writeLocal(t, filepath.Join(dir, "ten.txt"), "0123456789")
	if err := os.Mkdir(filepath.Join(dir, "folder"), 0755); err != nil {
		t.Fatal(err)
	}
	s := transfer.NewSession("test", vfstest.New())
	local := filepath.Join(dir, "ten.txt")
	m := NewDownloadModel(DefaultRule{})

	tests := []struct {
		name    string
		path    *transfer.Path
		warning bool
	}{
		{"remote empty", item(s, "/srv/ten.txt", local, transfer.TypeFile, 0), true},
		{"local larger", item(s, "/srv/ten.txt", local, transfer.TypeFile, 5), true},
		{"same size", item(s, "/srv/ten.txt", local, transfer.TypeFile, 10), false},
		{"remote larger", item(s, "/srv/ten.txt", local, transfer.TypeFile, 20), false},
		{"directory", item(s, "/srv/folder", filepath.Join(dir, "folder"), transfer.TypeDirectory, 0), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.Warning(tt.path); got != tt.warning {
				t.Errorf("Warning = %v, want %v", got, tt.warning)
			}
		})
	}

	if got := m.Size(item(s, "/srv/ten.txt", local, transfer.TypeFile, 20)); got != 10 {
		t.Errorf("Size = %d, want local size 10", got)
	}
	if got := m.Size(transfer.NewPath(s, "/srv/x", nil, transfer.TypeFile)); got != transfer.SizeUnknown {
		t.Errorf("Size without local = %d", got)
	}
}

func TestUploadModel(t *testing.T) {
	dir := t.TempDir()
	writeLocal(t, filepath.Join(dir, "ten.txt"), "0123456789")
	s := transfer.NewSession("test", vfstest.New())
	local := filepath.Join(dir, "ten.txt")
	m := NewUploadModel(DefaultRule{})

	tests := []struct {
		name    string
		path    *transfer.Path
		warning bool
	}{
		{"remote empty", item(s, "/srv/ten.txt", local, transfer.TypeFile, 0), true},
		{"remote larger", item(s, "/srv/ten.txt", local, transfer.TypeFile, 20), true},
		{"same size", item(s, "/srv/ten.txt", local, transfer.TypeFile, 10), false},
		{"remote smaller", item(s, "/srv/ten.txt", local, transfer.TypeFile, 5), false},
		{"directory", item(s, "/srv/folder", dir, transfer.TypeDirectory, 0), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.Warning(tt.path); got != tt.warning {
				t.Errorf("Warning = %v, want %v", got, tt.warning)
			}
		})
	}

	if got := m.Size(item(s, "/srv/ten.txt", local, transfer.TypeFile, 20)); got != 20 {
		t.Errorf("Size = %d, want remote size 20", got)
	}
}

func TestNewModel(t *testing.T) {
	if _, ok := NewModel(transfer.Download, DefaultRule{}).(*DownloadModel); !ok {
		t.Error("download direction should give a DownloadModel")
	}
	if _, ok := NewModel(transfer.Upload, DefaultRule{}).(*UploadModel); !ok {
		t.Error("upload direction should give an UploadModel")
	}
}

func TestRowsDownload(t *testing.T) {
	remote := vfstest.New()
	remote.AddFile("/srv/dir/a.txt", "hello", modTime)
	remote.AddFile("/srv/dir/b.txt", "bbb", modTime)
	remote.AddFile("/srv/dir/sub/c.txt", "c", modTime)
	dir := filepath.Join(t.TempDir(), "dir")
	writeLocal(t, filepath.Join(dir, "a.txt"), "hello world!")
	writeLocal(t, filepath.Join(dir, "sub", "c.txt"), "c")

	tr := transfer.New(transfer.Download, transfer.NewSession("test", remote))
	if _, err := tr.AddRoot("/srv/dir", dir); err != nil {
		t.Fatal(err)
	}
	rows, err := Rows(tr, NewDownloadModel(DefaultRule{}))
	if err != nil {
		t.Fatalf("Rows: %v", err)
	}

	want := []struct {
		name    string
		depth   int
		warning bool
	}{
		{"dir", 0, false},
		{"a.txt", 1, true},
		{"sub", 1, false},
		{"c.txt", 2, false},
	}
	if len(rows) != len(want) {
		t.Fatalf("got %d rows, want %d", len(rows), len(want))
	}
	for i, w := range want {
		r := rows[i]
		if r.Path.Name() != w.name || r.Depth != w.depth || r.Warning != w.warning {
			t.Errorf("row %d = {%s %d %v}, want %+v", i, r.Path.Name(), r.Depth, r.Warning, w)
		}
	}
	if rows[1].Size != 12 {
		t.Errorf("a.txt size = %d, want local size 12", rows[1].Size)
	}
}

func TestRowsUpload(t *testing.T) {
	dir := t.TempDir()
	writeLocal(t, filepath.Join(dir, "x.txt"), "local")
	writeLocal(t, filepath.Join(dir, "new.txt"), "local")
	remote := vfstest.New()
	remote.AddFile("/srv/up/x.txt", "much longer remote", modTime)

	tr := transfer.New(transfer.Upload, transfer.NewSession("test", remote))
	if _, err := tr.AddRoot("/srv/up", dir); err != nil {
		t.Fatal(err)
	}
	rows, err := Rows(tr, NewUploadModel(DefaultRule{}))
	if err != nil {
		t.Fatalf("Rows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	x := rows[1]
	if x.Path.Name() != "x.txt" || x.Size != 18 || !x.Warning {
		t.Errorf("x.txt row = {%s %d %v}", x.Path.Name(), x.Size, x.Warning)
	}
}

func TestRowsPropagatesErrors(t *testing.T) {
	failure := errors.New("connection lost")
	local := filepath.Join(t.TempDir(), "a.txt")
	writeLocal(t, local, "data")
	remote := vfstest.New()
	remote.AddFile("/srv/a.txt", "remote", modTime)
	remote.FailStat("/srv/a.txt", failure)

	tr := transfer.New(transfer.Upload, transfer.NewSession("test", remote))
	if _, err := tr.AddRoot("/srv/a.txt", local); err != nil {
		t.Fatal(err)
	}
	rows, err := Rows(tr, NewUploadModel(DefaultRule{}))
	if !errors.Is(err, failure) {
		t.Errorf("err = %v, want %v", err, failure)
	}
	if rows != nil {
		t.Errorf("rows = %v, want nil", rows)
	}
}
