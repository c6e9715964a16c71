package session

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestTokenCacheRoundTrip(t *testing.T) {
	cache := NewTokenCache(filepath.Join(t.TempDir(), "nested", "session.json"))

	token, err := cache.Load()
	if err != nil {
		t.Fatalf("load empty: %v", err)
	}
	if token != "" {
		t.Fatalf("expected empty token, got %q", token)
	}

	if err := cache.Save("refresh-abc"); err != nil {
		t.Fatalf("save: %v", err)
	}
	token, err = cache.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if token != "refresh-abc" {
		t.Fatalf("expected refresh-abc, got %q", token)
	}

	if err := cache.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if err := cache.Clear(); err != nil {
		t.Fatalf("clear again: %v", err)
	}
	token, err = cache.Load()
	if err != nil {
		t.Fatalf("load after clear: %v", err)
	}
	if token != "" {
		t.Fatalf("expected empty after clear, got %q", token)
	}
}

func TestTokenCacheFilePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("file modes are not meaningful on windows")
	}
	path := filepath.Join(t.TempDir(), "session.json")
	cache := NewTokenCache(path)
	if err := cache.Save("refresh-abc"); err != nil {
		t.Fatalf("save: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("expected 0600 perms, got %o", perm)
	}
}

func TestTokenCacheCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte("not-json"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	cache := NewTokenCache(path)
	if _, err := cache.Load(); err == nil {
		t.Fatal("expected decode error for corrupt cache")
	}
}
