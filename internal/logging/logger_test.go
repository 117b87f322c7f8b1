package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewCreatesLogFile(t *testing.T) {
	root := t.TempDir()
	logger, err := New(root)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	logger.Warnf("patch failed for %s", "BoostTower")
	if err := logger.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(root, "logs", "modkit.log"))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	body := string(data)
	if !strings.Contains(body, "session "+logger.Session()) {
		t.Fatalf("session header missing: %s", body)
	}
	if !strings.Contains(body, "WARN patch failed for BoostTower") {
		t.Fatalf("warning line missing: %s", body)
	}
}

func TestForModAttributesLines(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf)
	scoped := logger.ForMod("Rocket Pack", "jess")
	scoped.Errorf("register %s: %v", "rocket-upgrade", "duplicate id")
	line := buf.String()
	if !strings.Contains(line, "[Rocket Pack by jess]") {
		t.Fatalf("attribution missing: %s", line)
	}
	if !strings.Contains(line, "ERROR") {
		t.Fatalf("level missing: %s", line)
	}
	if scoped.Session() != logger.Session() {
		t.Fatalf("child session changed: %s vs %s", scoped.Session(), logger.Session())
	}
}

func TestNilLoggerIsSafe(t *testing.T) {
	var logger *Logger
	logger.Infof("ignored")
	logger.Warnf("ignored")
	logger.Errorf("ignored")
	if err := logger.Close(); err != nil {
		t.Fatalf("Close on nil: %v", err)
	}
	if logger.ForMod("x", "y") != nil {
		t.Fatal("ForMod on nil should stay nil")
	}
}
