package device

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/afero"
)

// Storage is the removable-media access layer. It is a thin wrapper over an
// afero filesystem so tests and the simulator can run against an in-memory
// fs while the appliance uses the mounted SD card.
type Storage struct {
	fs   afero.Fs
	root string
}

// NewStorage creates a storage layer rooted at dir.
func NewStorage(fs afero.Fs, dir string) *Storage {
	return &Storage{fs: fs, root: dir}
}

// NewOSStorage creates a storage layer over the real filesystem.
func NewOSStorage(dir string) *Storage {
	return &Storage{fs: afero.NewOsFs(), root: dir}
}

// Root returns the storage root directory.
func (s *Storage) Root() string {
	return s.root
}

// Ensure verifies the root directory exists and is writable, creating it if
// needed. Missing storage at startup is fatal for the appliance, so callers
// treat an error here as unrecoverable.
func (s *Storage) Ensure() error {
	if err := s.fs.MkdirAll(s.root, 0o755); err != nil {
		return fmt.Errorf("storage unavailable at %s: %w", s.root, err)
	}
	probe := filepath.Join(s.root, ".probe")
	if err := afero.WriteFile(s.fs, probe, nil, 0o644); err != nil {
		return fmt.Errorf("storage not writable at %s: %w", s.root, err)
	}
	_ = s.fs.Remove(probe)
	return nil
}

// ListDir returns the names of regular files in the storage root, sorted
// lexicographically.
func (s *Storage) ListDir() ([]string, error) {
	infos, err := afero.ReadDir(s.fs, s.root)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.root, err)
	}
	var names []string
	for _, fi := range infos {
		if fi.Mode().IsRegular() {
			names = append(names, fi.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// ReadFile reads a file relative to the storage root.
func (s *Storage) ReadFile(name string) ([]byte, error) {
	return afero.ReadFile(s.fs, s.join(name))
}

// WriteFile writes data to a file relative to the storage root and flushes
// it before returning, so a power cut immediately afterward cannot lose the
// content.
func (s *Storage) WriteFile(name string, data []byte) error {
	f, err := s.fs.OpenFile(s.join(name), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Stat returns size and modification time for a file relative to the root.
func (s *Storage) Stat(name string) (os.FileInfo, error) {
	return s.fs.Stat(s.join(name))
}

func (s *Storage) join(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(s.root, name)
}
