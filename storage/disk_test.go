package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiskStore(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "uploads")
	store, err := NewDiskStore(dir)
	require.NoError(t, err)

	url, err := store.Save(ctx, "shot_1.png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "/uploads/shot_1.png", url)
	assert.True(t, store.Owns(url))

	content, err := os.ReadFile(filepath.Join(dir, "shot_1.png"))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(content))

	t.Run("refuses to overwrite", func(t *testing.T) {
		_, err := store.Save(ctx, "shot_1.png", strings.NewReader("other"))
		assert.Error(t, err)
	})

	t.Run("refuses paths", func(t *testing.T) {
		_, err := store.Save(ctx, "../escape.png", strings.NewReader("x"))
		assert.Error(t, err)
	})

	t.Run("delete removes the file", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, url))
		_, err := os.Stat(filepath.Join(dir, "shot_1.png"))
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("delete of a missing file is ignored", func(t *testing.T) {
		assert.NoError(t, store.Delete(ctx, "/uploads/never-existed.png"))
	})

	t.Run("foreign urls are left alone", func(t *testing.T) {
		outside := filepath.Join(filepath.Dir(dir), "keep.png")
		require.NoError(t, os.WriteFile(outside, []byte("x"), 0o644))

		assert.NoError(t, store.Delete(ctx, "/uploads/../keep.png"))
		assert.NoError(t, store.Delete(ctx, "assets/keep.png"))
		_, err := os.Stat(outside)
		assert.NoError(t, err)
	})
}

func TestDiskStore_Owns(t *testing.T) {
	store := &DiskStore{dir: t.TempDir()}

	assert.True(t, store.Owns("/uploads/a.png"))
	assert.False(t, store.Owns("/uploads/"))
	assert.False(t, store.Owns("/uploads/.."))
	assert.False(t, store.Owns("/uploads/nested/a.png"))
	assert.False(t, store.Owns("assets/a.png"))
	assert.False(t, store.Owns("https://cdn.example.com/uploads/a.png"))
}
