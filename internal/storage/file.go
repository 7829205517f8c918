package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// FileStore persists one JSON document per record under
// <baseDir>/<collection>/<id>.json. Updates go through a temp file and an
// atomic rename so a crash never leaves a half-written record behind.
type FileStore struct {
	baseDir string

	// mu serializes mutations: without it, Update's existence check and
	// rename could straddle a concurrent Delete and resurrect the record.
	mu sync.Mutex
}

// NewFile creates a file-backed store rooted at baseDir, creating the
// directory if needed.
func NewFile(baseDir string) (*FileStore, error) {
	if err := os.MkdirAll(baseDir, 0o700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

func (f *FileStore) path(collection, id string) string {
	return filepath.Join(f.baseDir, collection, id+".json")
}

func (f *FileStore) Create(ctx context.Context, collection, id string, value any) error {
	dir := filepath.Join(f.baseDir, collection)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create collection dir: %w", err)
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	file, err := os.OpenFile(f.path(collection, id), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return ErrExists
		}
		return err
	}
	if _, err := file.Write(data); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

func (f *FileStore) Read(ctx context.Context, collection, id string, out any) error {
	data, err := os.ReadFile(f.path(collection, id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNotFound
		}
		return err
	}
	return json.Unmarshal(data, out)
}

func (f *FileStore) Update(ctx context.Context, collection, id string, value any) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := f.path(collection, id)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNotFound
		}
		return err
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, id+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

func (f *FileStore) Delete(ctx context.Context, collection, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	err := os.Remove(f.path(collection, id))
	if errors.Is(err, fs.ErrNotExist) {
		return ErrNotFound
	}
	return err
}

func (f *FileStore) List(ctx context.Context, collection string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(f.baseDir, collection))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNoCollection
		}
		return nil, err
	}

	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}
	if len(ids) == 0 {
		return nil, ErrEmptyCollection
	}
	return ids, nil
}
