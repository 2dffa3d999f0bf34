package service

import (
	"context"
	"fmt"
	"io"
	"sync/atomic"
	"testing"

	"github.com/harvestcms/internal/db"
	"github.com/harvestcms/internal/storage"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBCounter atomic.Int64

func setupServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:service-%d?mode=memory&cache=shared", testDBCounter.Add(1))
	gdb, err := db.Open(dsn, logger.Silent)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return gdb
}

type memoryStorage struct {
	objects map[string][]storage.Object
	failing map[string]error
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{objects: map[string][]storage.Object{}, failing: map[string]error{}}
}

func (m *memoryStorage) Upload(_ context.Context, bucket, name string, r io.Reader, _ int64, _ string) (string, error) {
	n, err := io.Copy(io.Discard, r)
	if err != nil {
		return "", err
	}
	m.objects[bucket] = append(m.objects[bucket], storage.Object{Name: name, Size: n})
	return "/media/" + bucket + "/" + name, nil
}

func (m *memoryStorage) List(_ context.Context, bucket string) ([]storage.Object, error) {
	if err := m.failing[bucket]; err != nil {
		return nil, err
	}
	return m.objects[bucket], nil
}
