package local

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSaveOpenDeleteRoundtrip(t *testing.T) {
	store := New(t.TempDir())
	ctx := context.Background()

	body := "Annual report. Revenue was $4.2 billion."
	key, size, mime, err := store.Save(ctx, "10k.txt", strings.NewReader(body))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if size != int64(len(body)) {
		t.Fatalf("expected size %d, got %d", len(body), size)
	}
	if !strings.HasPrefix(mime, "text/plain") {
		t.Fatalf("expected text/plain sniff, got %q", mime)
	}
	if !strings.HasPrefix(key, "filings/") || !strings.HasSuffix(key, "_10k.txt") {
		t.Fatalf("unexpected key shape: %q", key)
	}

	rc, err := store.Open(ctx, key)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	got, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != body {
		t.Fatalf("roundtrip mismatch: %q", got)
	}

	if err := store.Delete(ctx, key); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Open(ctx, key); err == nil {
		t.Fatal("expected open to fail after delete")
	}
}

func TestSaveSniffsPDFMime(t *testing.T) {
	store := New(t.TempDir())

	_, _, mime, err := store.Save(context.Background(), "report.pdf", strings.NewReader("%PDF-1.7 fake body"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if mime != "application/pdf" {
		t.Fatalf("expected application/pdf, got %q", mime)
	}
}

func TestSaveRejectsTraversalFileName(t *testing.T) {
	store := New(t.TempDir())

	if _, _, _, err := store.Save(context.Background(), "../escape.txt", strings.NewReader("x")); err == nil {
		t.Fatal("expected traversal file name to be rejected")
	}
}

func TestSaveWithKeyWritesExactPath(t *testing.T) {
	base := t.TempDir()
	store := New(base)

	key := "filings/doc-1.txt.extracted.txt"
	n, err := store.SaveWithKey(context.Background(), key, "text/plain", strings.NewReader("extracted"))
	if err != nil {
		t.Fatalf("save with key: %v", err)
	}
	if n != int64(len("extracted")) {
		t.Fatalf("unexpected byte count %d", n)
	}

	raw, err := os.ReadFile(filepath.Join(base, key))
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	if string(raw) != "extracted" {
		t.Fatalf("unexpected content %q", raw)
	}
}

func TestKeysCannotEscapeBaseDir(t *testing.T) {
	store := New(t.TempDir())
	ctx := context.Background()

	for _, key := range []string{"../outside.txt", "/etc/passwd", "filings/../../outside.txt"} {
		if _, err := store.Open(ctx, key); err == nil {
			t.Fatalf("open accepted escaping key %q", key)
		}
		if _, err := store.SaveWithKey(ctx, key, "text/plain", strings.NewReader("x")); err == nil {
			t.Fatalf("save accepted escaping key %q", key)
		}
		if err := store.Delete(ctx, key); err == nil {
			t.Fatalf("delete accepted escaping key %q", key)
		}
	}
}

func TestDeleteMissingObjectIsNoError(t *testing.T) {
	store := New(t.TempDir())
	if err := store.Delete(context.Background(), "filings/never-existed.txt"); err != nil {
		t.Fatalf("delete missing: %v", err)
	}
}
