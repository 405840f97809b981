package store

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// LocalStore keeps documents as files under a base directory.
type LocalStore struct {
	baseDir string
	logger  zerolog.Logger
}

// NewLocalStore creates a filesystem-backed store rooted at baseDir.
// The directory is created if it does not exist.
func NewLocalStore(baseDir string, logger zerolog.Logger) (*LocalStore, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, err
	}
	return &LocalStore{
		baseDir: baseDir,
		logger:  logger.With().Str("component", "local-store").Logger(),
	}, nil
}

func (s *LocalStore) fullPath(path string) string {
	return filepath.Join(s.baseDir, filepath.FromSlash(path))
}

// Read returns the file contents at path, or nil if absent or unreadable.
func (s *LocalStore) Read(_ context.Context, path string) []byte {
	data, err := os.ReadFile(s.fullPath(path))
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn().Err(err).Str("path", path).Msg("Failed to read local document")
		}
		return nil
	}
	return data
}

// Write stores data at path, creating parent directories as needed.
func (s *LocalStore) Write(_ context.Context, path string, data []byte) error {
	full := s.fullPath(path)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		s.logger.Warn().Err(err).Str("path", path).Msg("Failed to create cache directory")
		return err
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		s.logger.Warn().Err(err).Str("path", path).Msg("Failed to write local document")
		return err
	}
	s.logger.Debug().Str("path", path).Msg("Document saved to local store")
	return nil
}

// Exists reports whether a file is present at path.
func (s *LocalStore) Exists(_ context.Context, path string) bool {
	_, err := os.Stat(s.fullPath(path))
	return err == nil
}

// Delete removes the file at path.
func (s *LocalStore) Delete(_ context.Context, path string) bool {
	full := s.fullPath(path)
	if _, err := os.Stat(full); err != nil {
		return false
	}
	if err := os.Remove(full); err != nil {
		s.logger.Warn().Err(err).Str("path", path).Msg("Failed to delete local document")
		return false
	}
	s.logger.Info().Str("path", path).Msg("Local document deleted")
	return true
}
