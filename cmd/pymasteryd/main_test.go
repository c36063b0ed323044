package main

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/felixgeelhaar/pymastery/internal/lesson"
)

func TestParseLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"info":  slog.LevelInfo,
		"":      slog.LevelInfo,
		"loud":  slog.LevelInfo,
	}
	for in, want := range tests {
		if got := parseLogLevel(in); got != want {
			t.Errorf("parseLogLevel(%q) = %v; want %v", in, got, want)
		}
	}
}

func TestWritePIDFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), pidFileName)
	if err := writePIDFile(path); err != nil {
		t.Fatalf("writePIDFile() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid != os.Getpid() {
		t.Errorf("pid file = %q; want %d", data, os.Getpid())
	}
}

func TestMultiHandler(t *testing.T) {
	var debug, warn bytes.Buffer
	h := &multiHandler{handlers: []slog.Handler{
		slog.NewTextHandler(&debug, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewJSONHandler(&warn, &slog.HandlerOptions{Level: slog.LevelWarn}),
	}}
	logger := slog.New(h).With("component", "test")

	logger.Debug("quiet")
	logger.Warn("loud")

	if !strings.Contains(debug.String(), "quiet") || !strings.Contains(debug.String(), "loud") {
		t.Errorf("debug handler got %q", debug.String())
	}
	if strings.Contains(warn.String(), "quiet") || !strings.Contains(warn.String(), `"component":"test"`) {
		t.Errorf("warn handler got %q", warn.String())
	}
	if !h.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("Enabled(debug) = false; want true")
	}
}

func TestReloadOnHangup(t *testing.T) {
	dir := t.TempDir()
	catalog, err := lesson.NewBuiltinCatalog(dir)
	if err != nil {
		t.Fatalf("NewBuiltinCatalog() error = %v", err)
	}
	before := catalog.Stats().LessonCount

	doc := "id: loops-01\ntitle: For\ncategory: loops\norder: 1\nexercise:\n  id: loops-exercise-01\n  title: Count\n"
	if err := os.WriteFile(filepath.Join(dir, "loops-01.yaml"), []byte(doc), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	sigCh := make(chan os.Signal, 1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		reloadOnHangup(sigCh, catalog)
	}()
	sigCh <- syscall.SIGHUP

	deadline := time.Now().Add(2 * time.Second)
	for catalog.Stats().LessonCount != before+1 {
		if time.Now().After(deadline) {
			t.Fatalf("LessonCount = %d; want %d after reload", catalog.Stats().LessonCount, before+1)
		}
		time.Sleep(10 * time.Millisecond)
	}
	if _, err := catalog.GetLesson("loops-01"); err != nil {
		t.Errorf("GetLesson(loops-01) error = %v", err)
	}

	// A broken file keeps the previous catalog.
	if err := os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte("id: [unclosed"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	sigCh <- syscall.SIGHUP
	close(sigCh)
	<-done
	if got := catalog.Stats().LessonCount; got != before+1 {
		t.Errorf("LessonCount after failed reload = %d; want %d", got, before+1)
	}
}
