package guidancecache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
)

const lockRetryDelay = 25 * time.Millisecond

// FileBackend stores the entry as JSON. Writes go through a temp file and
// rename while holding an exclusive lock on a sibling .lock file.
type FileBackend struct {
	path string
	lock *flock.Flock
}

// NewFileBackend returns a backend writing to path.
func NewFileBackend(path string) (*FileBackend, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("guidance cache: file path required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("guidance cache: create dir: %w", err)
	}
	return &FileBackend{path: path, lock: flock.New(path + ".lock")}, nil
}

// Path returns the cache file location.
func (f *FileBackend) Path() string { return f.path }

func (f *FileBackend) Load(ctx context.Context) (Entry, bool, error) {
	if err := ctx.Err(); err != nil {
		return Entry{}, false, err
	}
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("read %s: %w", f.path, err)
	}
	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return Entry{}, false, fmt.Errorf("decode %s: %w", f.path, err)
	}
	return entry, true, nil
}

func (f *FileBackend) Save(ctx context.Context, entry Entry) error {
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("encode entry: %w", err)
	}
	return f.withLock(ctx, func() error {
		tmp, err := os.CreateTemp(filepath.Dir(f.path), filepath.Base(f.path)+".*.tmp")
		if err != nil {
			return fmt.Errorf("create temp file: %w", err)
		}
		tmpName := tmp.Name()
		defer func() { _ = os.Remove(tmpName) }()

		if _, err := tmp.Write(data); err != nil {
			_ = tmp.Close()
			return fmt.Errorf("write temp file: %w", err)
		}
		if err := tmp.Sync(); err != nil {
			_ = tmp.Close()
			return fmt.Errorf("sync temp file: %w", err)
		}
		if err := tmp.Close(); err != nil {
			return fmt.Errorf("close temp file: %w", err)
		}
		if err := os.Rename(tmpName, f.path); err != nil {
			return fmt.Errorf("replace cache file: %w", err)
		}
		return nil
	})
}

func (f *FileBackend) Clear(ctx context.Context) error {
	return f.withLock(ctx, func() error {
		if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove %s: %w", f.path, err)
		}
		return nil
	})
}

func (f *FileBackend) Close() error { return nil }

func (f *FileBackend) withLock(ctx context.Context, fn func() error) error {
	locked, err := f.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("lock %s: %w", f.lock.Path(), err)
	}
	if !locked {
		return fmt.Errorf("lock %s: not acquired", f.lock.Path())
	}
	defer func() { _ = f.lock.Unlock() }()
	return fn()
}
