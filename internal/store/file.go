package store

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"GoldGrid/internal/model"
)

// FileStore keeps the document in a JSON file. A missing file loads as an
// empty portfolio.
type FileStore struct {
	Path string
}

// NewFileStore creates a FileStore for path.
func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

// Load reads the portfolio from disk.
func (s *FileStore) Load(_ context.Context) (model.Portfolio, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.NewPortfolio(), nil
		}
		return model.Portfolio{}, errors.Wrapf(err, "read %s", s.Path)
	}
	return Decode(data)
}

// Save overwrites the file with the full document. The write goes to a
// sibling temp file first so a crash never leaves a truncated document.
func (s *FileStore) Save(_ context.Context, p model.Portfolio) error {
	data, err := Encode(p)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(s.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "create %s", dir)
		}
	}
	tmp := s.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errors.Wrapf(err, "write %s", tmp)
	}
	if err := os.Rename(tmp, s.Path); err != nil {
		return errors.Wrapf(err, "rename %s", tmp)
	}
	return nil
}
