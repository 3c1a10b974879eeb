package logmonitor

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"ark_manager/internal/logger"
)

func collectLines(t *testing.T, dir string) (*Monitor, chan string) {
	t.Helper()
	lines := make(chan string, 64)
	monitor := New(dir, logger.New(), func(filename string, newLines []string) {
		for _, line := range newLines {
			lines <- line
		}
	})
	if err := monitor.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	t.Cleanup(monitor.Stop)
	return monitor, lines
}

func waitForLine(t *testing.T, lines chan string, want string) {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case line := <-lines:
			if line == want {
				return
			}
		case <-deadline:
			t.Fatalf("Timed out waiting for line %q", want)
		}
	}
}

func TestMonitorReportsAppendedLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ShooterGame.log")
	if err := os.WriteFile(path, []byte("old line\n"), 0644); err != nil {
		t.Fatalf("Failed to seed log: %v", err)
	}

	_, lines := collectLines(t, dir)

	file, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		t.Fatalf("Failed to open log: %v", err)
	}
	if _, err := file.WriteString("server has started\n"); err != nil {
		t.Fatalf("Failed to append: %v", err)
	}
	file.Close()

	waitForLine(t, lines, "server has started")
}

func TestMonitorSkipsExistingContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ShooterGame.log")
	if err := os.WriteFile(path, []byte("history\n"), 0644); err != nil {
		t.Fatalf("Failed to seed log: %v", err)
	}

	_, lines := collectLines(t, dir)

	select {
	case line := <-lines:
		t.Fatalf("Existing content should not replay, got %q", line)
	case <-time.After(2 * time.Second):
	}
}

func TestMonitorPicksUpNewFiles(t *testing.T) {
	dir := t.TempDir()
	_, lines := collectLines(t, dir)

	path := filepath.Join(dir, "WindowsServer.log")
	if err := os.WriteFile(path, []byte("fresh file line\n"), 0644); err != nil {
		t.Fatalf("Failed to write log: %v", err)
	}

	waitForLine(t, lines, "fresh file line")
}

func TestMonitorIgnoresNonLogFiles(t *testing.T) {
	dir := t.TempDir()
	_, lines := collectLines(t, dir)

	if err := os.WriteFile(filepath.Join(dir, "crashdump.bin"), []byte("junk\n"), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	select {
	case line := <-lines:
		t.Fatalf("Non-log files should be ignored, got %q", line)
	case <-time.After(2 * time.Second):
	}
}

func TestMonitorToleratesMissingDirectory(t *testing.T) {
	monitor := New(filepath.Join(t.TempDir(), "absent"), logger.New(), nil)
	if err := monitor.Start(); err != nil {
		t.Fatalf("Start should tolerate a missing directory: %v", err)
	}
	monitor.Stop()
}
