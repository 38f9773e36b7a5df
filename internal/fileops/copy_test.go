package fileops

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ZoeBambery/cyberduck/internal/vfs"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestCopy(t *testing.T) {
	fs := vfs.NewLocalFS()
	dir := t.TempDir()
	src := filepath.Join(dir, "src.txt")
	dst := filepath.Join(dir, "sub", "dst.txt")
	writeFile(t, src, "hello world")

	var last Progress
	n, err := Copy(context.Background(), fs, src, fs, dst, 0, func(p Progress) { last = p })
	if err != nil {
		t.Fatalf("Copy: %v", err)
	}
	if n != 11 {
		t.Errorf("copied %d bytes, want 11", n)
	}
	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "hello world" {
		t.Errorf("content = %q", got)
	}
	if last.FileName != "src.txt" || last.Done != 11 || last.Percent() != 100 {
		t.Errorf("last progress = %+v", last)
	}
}

func TestCopyResume(t *testing.T) {
	fs := vfs.NewLocalFS()
	dir := t.TempDir()
	src := filepath.Join(dir, "src.txt")
	dst := filepath.Join(dir, "dst.txt")
	writeFile(t, src, "hello world")
	writeFile(t, dst, "hello")

	var last Progress
	n, err := Copy(context.Background(), fs, src, fs, dst, 5, func(p Progress) { last = p })
	if err != nil {
		t.Fatalf("Copy: %v", err)
	}
	if n != 6 {
		t.Errorf("copied %d bytes, want 6", n)
	}
	got, _ := os.ReadFile(dst)
	if string(got) != "hello world" {
		t.Errorf("content = %q", got)
	}
	if last.Done != 11 || last.Total != 11 || last.Transferred() != 6 {
		t.Errorf("last progress = %+v", last)
	}
}

func TestCopyWithoutProgress(t *testing.T) {
	fs := vfs.NewLocalFS()
	dir := t.TempDir()
	src := filepath.Join(dir, "src.txt")
	dst := filepath.Join(dir, "dst.txt")
	writeFile(t, src, strings.Repeat("x", bufferSize+10))

	n, err := Copy(context.Background(), fs, src, fs, dst, 0, nil)
	if err != nil {
		t.Fatalf("Copy: %v", err)
	}
	if n != bufferSize+10 {
		t.Errorf("copied %d bytes", n)
	}
}

func TestCopyCancelled(t *testing.T) {
	fs := vfs.NewLocalFS()
	dir := t.TempDir()
	src := filepath.Join(dir, "src.txt")
	dst := filepath.Join(dir, "dst.txt")
	writeFile(t, src, "data")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Copy(ctx, fs, src, fs, dst, 0, func(Progress) {})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestCopyCancelledWithoutProgress(t *testing.T) {
	fs := vfs.NewLocalFS()
	dir := t.TempDir()
	src := filepath.Join(dir, "src.txt")
	dst := filepath.Join(dir, "dst.txt")
	writeFile(t, src, "data")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	n, err := Copy(ctx, fs, src, fs, dst, 0, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if n != 0 {
		t.Errorf("copied %d bytes after cancel", n)
	}
}

// cancelAfterRead cancels its context once the first chunk is read.
type cancelAfterRead struct {
	r      io.Reader
	cancel context.CancelFunc
}

func (c *cancelAfterRead) Read(p []byte) (int, error) {
	n, err := c.r.Read(p[:min(len(p), 4)])
	c.cancel()
	return n, err
}

func TestCopyStreamStopsMidway(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	src := &cancelAfterRead{r: strings.NewReader(strings.Repeat("x", 64)), cancel: cancel}

	var dst bytes.Buffer
	n, err := copyStream(ctx, &dst, src, "big", 64, 0, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if n != 4 || dst.Len() != 4 {
		t.Errorf("copied %d bytes, buffer has %d", n, dst.Len())
	}
}

func TestCopyErrors(t *testing.T) {
	fs := vfs.NewLocalFS()
	dir := t.TempDir()

	if _, err := Copy(context.Background(), fs, filepath.Join(dir, "missing"), fs, filepath.Join(dir, "x"), 0, nil); err == nil {
		t.Error("expected error for missing source")
	}
	if _, err := Copy(context.Background(), fs, dir, fs, filepath.Join(dir, "x"), 0, nil); err == nil {
		t.Error("expected error for directory source")
	}
}

func TestDelete(t *testing.T) {
	fs := vfs.NewLocalFS()
	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")
	file := filepath.Join(sub, "a.txt")
	if err := os.Mkdir(sub, 0755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, file, "a")

	if err := Delete(fs, file, sub, filepath.Join(dir, "missing")); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := os.Stat(sub); !os.IsNotExist(err) {
		t.Errorf("sub still exists: %v", err)
	}
}

func TestMkDir(t *testing.T) {
	fs := vfs.NewLocalFS()
	dir := t.TempDir()
	nested := filepath.Join(dir, "a", "b")

	if err := MkDir(fs, nested); err != nil {
		t.Fatalf("MkDir: %v", err)
	}
	if err := MkDir(fs, nested); err != nil {
		t.Fatalf("MkDir existing: %v", err)
	}
	file := filepath.Join(dir, "file")
	writeFile(t, file, "x")
	if err := MkDir(fs, file); err == nil {
		t.Error("expected error for existing file")
	}
}

func TestPercent(t *testing.T) {
	tests := []struct {
		p    Progress
		want int
	}{
		{Progress{Total: 0, Done: 0}, 100},
		{Progress{Total: 200, Done: 50}, 25},
		{Progress{Total: 10, Done: 10}, 100},
		{Progress{Total: 10, Done: 12}, 100},
	}
	for _, tt := range tests {
		if got := tt.p.Percent(); got != tt.want {
			t.Errorf("%+v.Percent() = %d, want %d", tt.p, got, tt.want)
		}
	}
}
