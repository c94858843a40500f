package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/danielhostetler/baishify/internal/domain"
)

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	store := NewFileStore(path)

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Load() on missing file error = %v", err)
	}
	if loaded != nil {
		t.Fatalf("Load() on missing file = %+v, want nil", loaded)
	}

	saved := domain.FileConfig{
		Provider: "anthropic",
		Model:    "claude-3-5-haiku-latest",
		BaseURL:  "https://api.anthropic.com",
		APIKey:   "sk-ant-test",
		NoFun:    boolPtr(true),
	}
	if err := store.Save(saved); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat config: %v", err)
	}
	if mode := info.Mode().Perm(); mode != domain.SecureFilePermissions {
		t.Errorf("config mode = %o, want %o", mode, domain.SecureFilePermissions)
	}

	loaded, err = store.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if diff := cmp.Diff(&saved, loaded); diff != "" {
		t.Errorf("round trip mismatch (-saved +loaded):\n%s", diff)
	}
}

func TestFileStoreLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("provider = [unclosed"), 0o600); err != nil {
		t.Fatal(err)
	}
	_, err := NewFileStore(path).Load()
	if err == nil {
		t.Fatal("expected error for malformed TOML")
	}
	cfgErr, ok := err.(*domain.ConfigError)
	if !ok || cfgErr.Kind != domain.ConfigFileUnreadable {
		t.Errorf("error = %v, want ConfigError file_unreadable", err)
	}
}
