package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestProcessTriggerFileInvokesHandlerAndRemovesFile(t *testing.T) {
	dir := t.TempDir()
	triggerPath := filepath.Join(dir, "1510326428.26")
	if err := os.WriteFile(triggerPath, nil, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	var got string
	w := New(dir, func(linkedID string) { got = linkedID }, zerolog.Nop())
	w.processTriggerFile(triggerPath)

	if got != "1510326428.26" {
		t.Errorf("handler called with %q, want 1510326428.26", got)
	}
	if w.filesProcessed.Load() != 1 {
		t.Errorf("filesProcessed = %d, want 1", w.filesProcessed.Load())
	}
	if _, err := os.Stat(triggerPath); !os.IsNotExist(err) {
		t.Error("expected trigger file to be removed after processing")
	}
}

func TestStatusReflectsState(t *testing.T) {
	dir := t.TempDir()
	w := New(dir, func(string) {}, zerolog.Nop())
	if got := w.Status().State; got != "starting" {
		t.Errorf("State = %q, want starting", got)
	}

	w.state.Store("watching")
	status := w.Status()
	if status.State != "watching" {
		t.Errorf("State = %q, want watching", status.State)
	}
	if status.WatchDir != dir {
		t.Errorf("WatchDir = %q, want %q", status.WatchDir, dir)
	}
}

func TestScheduleProcessDebouncesRapidEvents(t *testing.T) {
	dir := t.TempDir()
	triggerPath := filepath.Join(dir, "linked-1")
	if err := os.WriteFile(triggerPath, nil, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	calls := 0
	w := New(dir, func(string) { calls++ }, zerolog.Nop())
	w.scheduleProcess(triggerPath)
	w.scheduleProcess(triggerPath) // should reset the same timer, not add a second

	time.Sleep(300 * time.Millisecond)

	if calls != 1 {
		t.Errorf("handler invoked %d times, want 1 (debounced)", calls)
	}
}
