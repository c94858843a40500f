package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"

	"github.com/danielhostetler/baishify/internal/domain"
	"github.com/danielhostetler/baishify/internal/ports"
)

// FileStore persists FileConfig as TOML at <xdg config>/baishify/config.toml
// (overridable for tests via an explicit path).
type FileStore struct {
	overridePath string
}

// NewFileStore builds a store. An empty path selects the well-known location.
func NewFileStore(path string) *FileStore {
	return &FileStore{overridePath: path}
}

// Path returns the config file location.
func (s *FileStore) Path() string {
	if s.overridePath != "" {
		return s.overridePath
	}
	return filepath.Join(xdg.ConfigHome, "baishify", "config.toml")
}

// Load reads the config file. A missing file is not an error: (nil, nil).
func (s *FileStore) Load() (*domain.FileConfig, error) {
	path := s.Path()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, &domain.ConfigError{Kind: domain.ConfigFileUnreadable, Hint: path, Err: err}
	}
	var cfg domain.FileConfig
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, &domain.ConfigError{Kind: domain.ConfigFileUnreadable, Hint: path, Err: err}
	}
	return &cfg, nil
}

// Save writes the config atomically: marshal to a buffer, write a temp file
// in the target directory, then rename over the destination. The key lands
// on disk with 0600.
func (s *FileStore) Save(cfg domain.FileConfig) error {
	path := s.Path()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, domain.DirectoryPermissions); err != nil {
		return err
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".config-*.toml")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Chmod(domain.SecureFilePermissions); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}

var _ ports.ConfigStore = (*FileStore)(nil)
