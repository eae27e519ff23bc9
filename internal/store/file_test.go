package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"GoldGrid/internal/model"
)

func TestFileStore_MissingFileIsEmpty(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "portfolio.json"))
	p, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.NewPortfolio(), p)
}

func TestFileStore_SaveLoad(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "portfolio.json")
	s := NewFileStore(path)

	want := samplePortfolio()
	require.NoError(t, s.Save(ctx, want))
	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file should be renamed away")

	// full overwrite
	require.NoError(t, s.Save(ctx, model.NewPortfolio()))
	got, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.NewPortfolio(), got)
}

func TestFileStore_SaveFailureSurfaces(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	s := NewFileStore(filepath.Join(blocker, "portfolio.json"))
	assert.Error(t, s.Save(context.Background(), model.NewPortfolio()))
}

func TestFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "portfolio.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	_, err := NewFileStore(path).Load(context.Background())
	assert.Error(t, err)
}
