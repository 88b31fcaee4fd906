package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const metaSuffix = ".meta"

// LocalStorage keeps archived uploads under a directory on disk. Each file
// may carry a JSON sidecar with its metadata.
type LocalStorage struct {
	root string
}

// NewLocalStorage creates the archive directory if needed
func NewLocalStorage(root string) (*LocalStorage, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory %s: %w", root, err)
	}
	return &LocalStorage{root: root}, nil
}

// Put writes content under key. The file is written to a temporary name and
// renamed, so a key never points at a partially written upload.
func (s *LocalStorage) Put(ctx context.Context, key string, content []byte, metadata *Metadata) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path := s.path(key)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", key, err)
	}

	if metadata != nil {
		meta := *metadata
		if meta.ContentType == "" {
			meta.ContentType = mimetype.Detect(content).String()
		}
		data, err := json.Marshal(meta)
		if err != nil {
			return fmt.Errorf("failed to marshal metadata: %w", err)
		}
		if err := writeAtomic(path+metaSuffix, data); err != nil {
			return err
		}
	}

	return writeAtomic(path, content)
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move %s into place: %w", path, err)
	}
	return nil
}

// Get returns the stored bytes of key
func (s *LocalStorage) Get(ctx context.Context, key string) ([]byte, error) {
	content, err := os.ReadFile(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return content, nil
}

// GetInfo returns size, checksum and metadata of key without loading it
func (s *LocalStorage) GetInfo(ctx context.Context, key string) (*FileInfo, error) {
	path := s.path(key)

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", key, err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", key, err)
	}
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return nil, fmt.Errorf("failed to hash %s: %w", key, err)
	}

	info := &FileInfo{
		Key:        key,
		Size:       stat.Size(),
		Checksum:   hex.EncodeToString(h.Sum(nil)),
		ModifiedAt: stat.ModTime(),
	}

	// a missing or corrupt sidecar only loses the metadata
	if data, err := os.ReadFile(path + metaSuffix); err == nil {
		var meta Metadata
		if json.Unmarshal(data, &meta) == nil {
			info.Metadata = &meta
			info.ContentType = meta.ContentType
		}
	}
	return info, nil
}

// Exists reports whether key holds a file
func (s *LocalStorage) Exists(ctx context.Context, key string) (bool, error) {
	_, err := os.Stat(s.path(key))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("failed to stat %s: %w", key, err)
	}
}

// Delete removes key and its sidecar. Deleting a missing key is not an error.
func (s *LocalStorage) Delete(ctx context.Context, key string) error {
	path := s.path(key)
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	_ = os.Remove(path + metaSuffix)
	return nil
}

// List returns the keys under prefix in lexical order
func (s *LocalStorage) List(ctx context.Context, prefix string) ([]string, error) {
	keys := make([]string, 0)
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		name := d.Name()
		if d.IsDir() || strings.HasSuffix(name, metaSuffix) || strings.HasPrefix(name, ".tmp-") {
			return nil
		}

		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		if key := filepath.ToSlash(rel); strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list %q: %w", prefix, err)
	}
	sort.Strings(keys)
	return keys, nil
}

// path maps a key below root. Rooting the key before cleaning keeps ".."
// segments from escaping the archive directory.
func (s *LocalStorage) path(key string) string {
	clean := filepath.Clean("/" + strings.ReplaceAll(key, "\\", "/"))
	return filepath.Join(s.root, strings.TrimPrefix(clean, "/"))
}

// ComputeChecksum returns the hex SHA-256 of content
func ComputeChecksum(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// BuildUploadKey builds the storage key for an uploaded workbook. Keys are
// content addressed, so re-uploading the same bytes maps to the same key.
func BuildUploadKey(checksum string, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	prefix := checksum
	if len(prefix) > 2 {
		prefix = prefix[:2]
	}
	return fmt.Sprintf("uploads/%s/%s%s", prefix, checksum, ext)
}
