package driver

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Store persists screenshot artifacts to one output directory. Filenames
// derive from checkpoint names; reruns overwrite prior artifacts in place,
// there is no versioning.
type Store struct {
	dir string
}

// NewStore creates the output directory if absent and returns a store for it.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the output directory.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the artifact path for a checkpoint name without writing it.
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, sanitizeName(name)+".png")
}

// Save writes the image for a checkpoint name, overwriting any prior artifact.
func (s *Store) Save(name string, data []byte) (string, error) {
	path := s.Path(name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write artifact %s: %w", path, err)
	}
	return path, nil
}

// sanitizeName maps a checkpoint name to a safe filename stem.
func sanitizeName(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_' || r == '.':
			return r
		default:
			return '_'
		}
	}, name)
}
