package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/MRsanjuedit/FPMS-Backend/config"
)

func TestObjectName(t *testing.T) {
	name := ObjectName("fac/1", "Certificate.PDF")
	if !strings.HasPrefix(name, "evidence/fac_1/") {
		t.Errorf("unexpected prefix: %s", name)
	}
	if !strings.HasSuffix(name, ".pdf") {
		t.Errorf("expected lowercased extension: %s", name)
	}

	if n := ObjectName("", "noext"); !strings.HasPrefix(n, "evidence/anonymous/") || strings.Contains(filepath.Base(n), ".") {
		t.Errorf("unexpected name for empty owner: %s", n)
	}
}

func TestLocalStore_Put(t *testing.T) {
	dir := t.TempDir()
	store, err := New(context.Background(), &config.EvidenceConfig{
		Driver:        "local",
		Dir:           dir,
		PublicBaseURL: "http://localhost:8080/uploads/",
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer store.Close()

	name := ObjectName("fac-1", "proof.txt")
	url, err := store.Put(context.Background(), name, "text/plain", strings.NewReader("hello"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if !strings.HasPrefix(url, "http://localhost:8080/uploads/evidence/fac-1/") {
		t.Errorf("unexpected url %s", url)
	}

	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(name)))
	if err != nil {
		t.Fatalf("read stored file: %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("unexpected content %q", data)
	}
}

func TestLocalStore_RejectsEscape(t *testing.T) {
	store, err := NewLocalStore(t.TempDir(), "http://x")
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	if _, err := store.Put(context.Background(), "../outside.txt", "", strings.NewReader("x")); err == nil {
		t.Error("expected an error for a path outside the store")
	}
}

func TestLocalStore_Delete(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(dir, "http://x")
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	ctx := context.Background()
	name := ObjectName("fac-1", "proof.pdf")
	if _, err := store.Put(ctx, name, "application/pdf", strings.NewReader("pdf")); err != nil {
		t.Fatalf("Put: %v", err)
	}

	if err := store.Delete(ctx, name); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, filepath.FromSlash(name))); !os.IsNotExist(err) {
		t.Errorf("file still present: %v", err)
	}
	if err := store.Delete(ctx, name); err != nil {
		t.Errorf("second Delete: %v", err)
	}
	if err := store.Delete(ctx, "../outside.txt"); err == nil {
		t.Error("expected an error for a path outside the store")
	}
}

func TestNew_UnknownDriver(t *testing.T) {
	if _, err := New(context.Background(), &config.EvidenceConfig{Driver: "ftp"}); err == nil {
		t.Error("expected an error for an unknown driver")
	}
}
