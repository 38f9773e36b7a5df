package logging

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestUseAndLevels(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	use(zap.New(core))
	defer use(nil)

	Debug("accept", String("path", "/a"))
	Info("connected", Int("n", 2))
	Error("failed", Err(nil))

	if logs.Len() != 3 {
		t.Fatalf("got %d entries, want 3", logs.Len())
	}
	first := logs.All()[0]
	if first.Message != "accept" || first.ContextMap()["path"] != "/a" {
		t.Errorf("unexpected first entry: %+v", first)
	}
}

func TestL_BeforeInitIsNop(t *testing.T) {
	use(nil)
	if L() == nil {
		t.Fatal("L() returned nil")
	}
	Info("goes nowhere")
}

func TestInit_File(t *testing.T) {
	path := t.TempDir() + "/logs/app.log"
	if err := Init(Config{Level: "debug", Format: "json", OutputPath: path}); err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer use(nil)
	Debug("hello")
	if err := Sync(); err != nil {
		t.Logf("Sync: %v", err)
	}
	if !L().Core().Enabled(zap.DebugLevel) {
		t.Error("debug should be enabled")
	}
	SetLevel("error")
	if L().Core().Enabled(zap.InfoLevel) {
		t.Error("info should be disabled after SetLevel(error)")
	}
}
