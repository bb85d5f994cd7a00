package kvstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFileBackendRoundTrip(t *testing.T) {
	backend, err := NewFileBackend(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileBackend failed: %v", err)
	}
	ctx := context.Background()

	if err := backend.Put(ctx, "projects", []byte(`{"a":1}`)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	got, err := backend.Get(ctx, "projects")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got) != `{"a":1}` {
		t.Fatalf("got %q", got)
	}

	// Overwrite replaces the whole document.
	if err := backend.Put(ctx, "projects", []byte(`{"a":2}`)); err != nil {
		t.Fatal(err)
	}
	got, _ = backend.Get(ctx, "projects")
	if string(got) != `{"a":2}` {
		t.Fatalf("got %q after overwrite", got)
	}
}

func TestFileBackendMissingKey(t *testing.T) {
	backend, err := NewFileBackend(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := backend.Get(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFileBackendDelete(t *testing.T) {
	backend, err := NewFileBackend(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if err := backend.Put(ctx, "settings", []byte(`{}`)); err != nil {
		t.Fatal(err)
	}
	if err := backend.Delete(ctx, "settings"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := backend.Get(ctx, "settings"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	// Deleting again is a no-op.
	if err := backend.Delete(ctx, "settings"); err != nil {
		t.Fatalf("second Delete failed: %v", err)
	}
}

func TestFileBackendSanitizesKeys(t *testing.T) {
	dir := t.TempDir()
	backend, err := NewFileBackend(dir)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if err := backend.Put(ctx, "../escape", []byte(`{}`)); err != nil {
		t.Fatal(err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.Contains(e.Name(), "..") || strings.Contains(e.Name(), string(filepath.Separator)) {
			t.Fatalf("unsanitized file name %q", e.Name())
		}
	}
	if _, err := backend.Get(ctx, "../escape"); err != nil {
		t.Fatalf("sanitized key not readable back: %v", err)
	}
}

func TestFileBackendLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	backend, err := NewFileBackend(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := backend.Put(context.Background(), "workspaces", []byte(`{}`)); err != nil {
		t.Fatal(err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		names := make([]string, len(entries))
		for i, e := range entries {
			names[i] = e.Name()
		}
		t.Fatalf("expected exactly one file, got %v", names)
	}
}
