package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bunca/bakery-service/config"
)

func TestLocalStorageRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	content := []byte("Code;Bezeichnung\nMEHL;Mehl\n")
	checksum := ComputeChecksum(content)
	key := BuildUploadKey(checksum, "Rohwaren.CSV")
	assert.Equal(t, "uploads/"+checksum[:2]+"/"+checksum+".csv", key)

	exists, err := s.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, exists)

	meta := &Metadata{ContentType: "text/csv", OriginalName: "Rohwaren.CSV", UploadedAt: time.Date(2024, 3, 1, 6, 0, 0, 0, time.UTC)}
	require.NoError(t, s.Put(ctx, key, content, meta))

	got, err := s.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, content, got)

	info, err := s.GetInfo(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, checksum, info.Checksum)
	assert.Equal(t, int64(len(content)), info.Size)
	assert.Equal(t, "text/csv", info.ContentType)
	require.NotNil(t, info.Metadata)
	assert.Equal(t, "Rohwaren.CSV", info.Metadata.OriginalName)

	keys, err := s.List(ctx, "uploads/")
	require.NoError(t, err)
	assert.Equal(t, []string{key}, keys)

	require.NoError(t, s.Delete(ctx, key))
	_, err = s.Get(ctx, key)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.GetInfo(ctx, key)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStorageKeysStayInsideBasePath(t *testing.T) {
	base := t.TempDir()
	s, err := NewLocalStorage(filepath.Join(base, "store"))
	require.NoError(t, err)

	require.NoError(t, s.Put(context.Background(), "../../escape.txt", []byte("x"), nil))

	_, err = os.Stat(filepath.Join(base, "escape.txt"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(base, "store", "escape.txt"))
	assert.NoError(t, err)
}

func TestBuildUploadKeyShortChecksum(t *testing.T) {
	assert.Equal(t, "uploads/ab/ab.xlsx", BuildUploadKey("ab", "x.xlsx"))
}

func TestLocalStoragePutDetectsContentType(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	pdf := []byte("%PDF-1.4\n%âãÏÓ\n")
	require.NoError(t, s.Put(ctx, "uploads/x/x.pdf", pdf, &Metadata{OriginalName: "x.pdf"}))

	info, err := s.GetInfo(ctx, "uploads/x/x.pdf")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", info.ContentType)

	// no temp files are left behind
	entries, err := os.ReadDir(filepath.Join(s.root, "uploads", "x"))
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestNewStorage(t *testing.T) {
	s, err := New(config.StorageConfig{Type: "local", BasePath: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &LocalStorage{}, s)

	_, err = New(config.StorageConfig{Type: "s3", BasePath: t.TempDir()})
	assert.Error(t, err)
}
