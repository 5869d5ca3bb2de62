package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestWeekKey(t *testing.T) {
	tests := []struct {
		when     time.Time
		expected string
	}{
		{time.Date(2025, 10, 7, 12, 0, 0, 0, time.UTC), "2025-W41"},
		{time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), "2026-W01"},
		{time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC), "2026-W53"},
	}

	for _, tt := range tests {
		if got := weekKey(tt.when); got != tt.expected {
			t.Errorf("weekKey(%s) = %s, want %s", tt.when, got, tt.expected)
		}
	}
}

func TestRotatingLoggerWrite(t *testing.T) {
	dir := t.TempDir()
	rl := NewRotatingLogger(dir, 1, 1024*1024)
	if err := rl.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}

	if _, err := rl.Write([]byte("searchDrug ibuprofen\n")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := rl.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	path := filepath.Join(dir, "gateway-"+weekKey(time.Now())+".log")
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	if !strings.Contains(string(content), "searchDrug ibuprofen") {
		t.Errorf("log file does not contain the message: %q", content)
	}
}

func TestRotatingLoggerSizeRotation(t *testing.T) {
	dir := t.TempDir()
	rl := NewRotatingLogger(dir, 1, 64)
	if err := rl.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rl.Close()

	line := []byte(strings.Repeat("x", 40) + "\n")
	for i := 0; i < 3; i++ {
		if _, err := rl.Write(line); err != nil {
			t.Fatalf("Write %d: %v", i, err)
		}
	}

	week := weekKey(time.Now())
	for _, name := range []string{"gateway-" + week + ".log", "gateway-" + week + "_01.log", "gateway-" + week + "_02.log"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("expected %s to exist: %v", name, err)
		}
	}
}

func TestRotatingLoggerReopenSkipsFullFiles(t *testing.T) {
	dir := t.TempDir()
	week := weekKey(time.Now())
	full := filepath.Join(dir, "gateway-"+week+".log")
	if err := os.WriteFile(full, []byte(strings.Repeat("y", 100)), 0640); err != nil {
		t.Fatal(err)
	}

	rl := NewRotatingLogger(dir, 1, 64)
	if err := rl.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := rl.Write([]byte("next\n")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	rl.Close()

	content, err := os.ReadFile(filepath.Join(dir, "gateway-"+week+"_01.log"))
	if err != nil {
		t.Fatalf("expected the first numbered file to be used: %v", err)
	}
	if string(content) != "next\n" {
		t.Errorf("unexpected content %q", content)
	}
}

func TestCleanupOldLogs(t *testing.T) {
	dir := t.TempDir()
	rl := NewRotatingLogger(dir, 1, 0)

	old := filepath.Join(dir, "gateway-2020-W01.log")
	recent := filepath.Join(dir, "gateway-2020-W02.log")
	other := filepath.Join(dir, "notes.txt")
	for _, p := range []string{old, recent, other} {
		if err := os.WriteFile(p, []byte("x"), 0640); err != nil {
			t.Fatal(err)
		}
	}

	now := time.Now()
	twoWeeksAgo := now.Add(-14 * 24 * time.Hour)
	if err := os.Chtimes(old, twoWeeksAgo, twoWeeksAgo); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(other, twoWeeksAgo, twoWeeksAgo); err != nil {
		t.Fatal(err)
	}

	deleted, err := rl.cleanupOldLogs(now)
	if err != nil {
		t.Fatalf("cleanupOldLogs: %v", err)
	}
	if deleted != 1 {
		t.Errorf("expected 1 deleted file, got %d", deleted)
	}
	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Error("old gateway log should be removed")
	}
	if _, err := os.Stat(recent); err != nil {
		t.Error("recent gateway log should be kept")
	}
	if _, err := os.Stat(other); err != nil {
		t.Error("non-log files must not be touched")
	}
}
