package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"
)

// LocalStorage keeps buckets as directories under Root and serves them
// below URLPath.
type LocalStorage struct {
	Root    string
	URLPath string
}

// NewLocalStorage returns a LocalStorage rooted at root.
func NewLocalStorage(root, urlPath string) *LocalStorage {
	return &LocalStorage{Root: root, URLPath: strings.TrimRight(urlPath, "/")}
}

// Upload writes the object atomically and returns its public URL.
func (s *LocalStorage) Upload(ctx context.Context, bucket, name string, r io.Reader, _ int64, _ string) (string, error) {
	if err := validate(bucket, name); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	dir := filepath.Join(s.Root, bucket)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	if err := atomic.WriteFile(filepath.Join(dir, name), r); err != nil {
		return "", err
	}
	return path.Join(s.URLPath, bucket, name), nil
}

// List returns the regular files in bucket. A missing bucket is empty.
func (s *LocalStorage) List(ctx context.Context, bucket string) ([]Object, error) {
	if !bucketPattern.MatchString(bucket) {
		return nil, ErrInvalidBucket
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(filepath.Join(s.Root, bucket))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	objects := make([]Object, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		objects = append(objects, Object{Name: entry.Name(), Size: info.Size()})
	}
	return objects, nil
}
