package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFrom_MissingFileGivesDefaults(t *testing.T) {
	c, err := LoadFrom(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if c.Transfer.DownloadAction != "ask" || c.Transfer.UploadAction != "ask" {
		t.Errorf("actions = %q/%q, want ask/ask", c.Transfer.DownloadAction, c.Transfer.UploadAction)
	}
	if c.Log.Level != "info" {
		t.Errorf("log level = %q, want info", c.Log.Level)
	}
	if c.QueueDir == "" || c.Log.Path == "" {
		t.Error("queue dir and log path should default")
	}
}

func TestSaveToAndLoadFrom(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.json")
	in := &Config{
		Servers: []ServerConfig{
			{Name: "home", Host: "example.org", User: "me", Password: "pw"},
			{Name: "bucket", Protocol: ProtocolS3, Bucket: "data", Region: "eu-west-1"},
		},
		Transfer: TransferConfig{DownloadAction: "resume", SkipPattern: `\.DS_Store`},
	}
	if err := SaveTo(path, in); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	fi, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if fi.Mode().Perm() != 0600 {
		t.Errorf("config mode = %v, want 0600", fi.Mode().Perm())
	}

	out, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	home, ok := out.Server("home")
	if !ok {
		t.Fatal("server home not found")
	}
	if home.Protocol != ProtocolSFTP {
		t.Errorf("default protocol = %q, want sftp", home.Protocol)
	}
	if b, _ := out.Server("bucket"); b.Bucket != "data" {
		t.Errorf("bucket = %q, want data", b.Bucket)
	}
	if out.Transfer.DownloadAction != "resume" || out.Transfer.UploadAction != "ask" {
		t.Errorf("actions = %q/%q", out.Transfer.DownloadAction, out.Transfer.UploadAction)
	}
	if _, ok := out.Server("other"); ok {
		t.Error("unknown server should not be found")
	}
}

func TestLoadFrom_BrokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestDefaultPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	c := Default()
	c.Servers = []ServerConfig{{Name: "example", Host: "sftp.example.org"}}
	want := filepath.Join(home, ".config", "cyberduck", "config.json")
	if DefaultPath() != want {
		t.Errorf("DefaultPath = %q, want %q", DefaultPath(), want)
	}
	if err := SaveTo(DefaultPath(), c); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}
	out, err := LoadFrom(want)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if _, ok := out.Server("example"); !ok {
		t.Error("saved server not found")
	}
}
