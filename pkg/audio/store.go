// Package audio persists generated and uploaded audio artifacts to disk.
package audio

import (
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"
)

const timestampLayout = "20060102-150405"

// Store writes audio artifacts under a single directory using
// timestamp-derived names. Files are append-only: the store never
// overwrites or deletes what it has written.
type Store struct {
	dir string
	seq atomic.Uint64
}

// NewStore creates the artifact directory if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating audio directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the directory artifacts are written to.
func (s *Store) Dir() string {
	return s.dir
}

// Save writes data to a new timestamped file and returns its path. A
// monotonic counter disambiguates writes that land in the same second.
func (s *Store) Save(data []byte, suffix string) (string, error) {
	name := fmt.Sprintf("%s-%04d%s", time.Now().Format(timestampLayout), s.seq.Add(1)%10000, suffix)
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing audio artifact: %w", err)
	}
	return path, nil
}
