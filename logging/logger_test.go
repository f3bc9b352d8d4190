package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNew_ConsoleLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Console: &buf})

	log.Debugw("hidden", "k", 1)
	log.Infow("shown", "session", "ab12")
	_ = log.Sync()

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug line written at info level: %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "ab12") {
		t.Errorf("expected info line with fields, got %q", out)
	}
}

func TestNew_Debug(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Console: &buf, Debug: true})

	log.Debug("tick")
	_ = log.Sync()

	if !strings.Contains(buf.String(), "tick") {
		t.Errorf("expected debug line, got %q", buf.String())
	}
}

func TestNew_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game.log")
	var buf bytes.Buffer
	log := New(Options{Console: &buf, File: path})

	log.Infow("level finished", "state", "won")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"level finished"`) {
		t.Errorf("expected JSON line in log file, got %q", data)
	}
}
