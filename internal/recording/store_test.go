package recording

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestLocalStoreExistsAndOpenWrittenFile(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalStore(dir)

	path := filepath.Join(dir, "2026", "07", "call.wav")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(path, []byte("audio"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	rel := "2026/07/call.wav"
	if !store.Exists(context.Background(), rel) {
		t.Fatal("expected Exists to find the written file")
	}

	rc, err := store.Open(context.Background(), rel)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rc.Close()
}

func TestLocalStoreRejectsPathTraversal(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalStore(dir)

	if store.Exists(context.Background(), "../../etc/passwd") {
		t.Error("expected traversal path to be rejected, not found as existing")
	}
	if got := store.LocalPath("../../etc/passwd"); got != "" {
		t.Errorf("LocalPath traversal = %q, want empty", got)
	}
}
