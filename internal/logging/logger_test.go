package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestConfigureLevel(t *testing.T) {
	logger := logrus.New()

	if err := configure(logger, Options{Level: "debug"}); err != nil {
		t.Fatalf("configure: %v", err)
	}
	if logger.GetLevel() != logrus.DebugLevel {
		t.Fatalf("level = %s", logger.GetLevel())
	}

	if err := configure(logger, Options{Level: "loud"}); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestConfigureWritesRotatingFile(t *testing.T) {
	logger := logrus.New()
	path := filepath.Join(t.TempDir(), "logs", "planboard.log")

	if err := configure(logger, Options{File: path}); err != nil {
		t.Fatalf("configure: %v", err)
	}

	logger.Info("task board ready")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}
	if !strings.Contains(string(data), "task board ready") {
		t.Fatalf("log file missing entry: %s", data)
	}
}

func TestTextFormatter(t *testing.T) {
	logger := logrus.New()
	if err := configure(logger, Options{}); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	logger.SetOutput(&buf)
	logger.WithField("project_id", 7).Warn("stale board")

	out := buf.String()
	if !strings.Contains(out, "project_id=7") || !strings.Contains(out, "level=warning") {
		t.Fatalf("unexpected output: %s", out)
	}
}
