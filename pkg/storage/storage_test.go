package storage

import (
	"compress/gzip"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matst80/slask-catalog/pkg/types"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testItems() []*types.CatalogItem {
	return []*types.CatalogItem{
		{Id: "1", Name: "Runner", Price: 10, Quantity: 5, AverageRating: 4, CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), BrandName: "Acme"},
		{Id: "2", Name: "Cap", Price: 20, Quantity: 0, AverageRating: 2, CreatedAt: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), CategoryName: "Hats"},
	}
}

func TestDiskStorageSaveAndLoad(t *testing.T) {
	ctx := context.Background()
	disk := NewDiskStorage("se", t.TempDir())

	require.NoError(t, disk.SaveItems(ctx, testItems()))
	name, _ := disk.GetFileName(itemsFile)
	assert.FileExists(t, name)

	items, err := disk.LoadItems(ctx)
	require.NoError(t, err)
	assert.Equal(t, testItems(), items)
}

func TestDiskStoragePrefersGzip(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	disk := NewDiskStorage("se", root)
	require.NoError(t, disk.SaveItems(ctx, testItems()))

	name, _ := disk.GetFileName(gzippedItemsFile)
	file, err := os.Create(name)
	require.NoError(t, err)
	zw := gzip.NewWriter(file)
	_, err = zw.Write([]byte(`[{"id":"gz","price":1,"quantity":1,"averageRating":1,"createdAt":"2024-02-01T00:00:00Z"}]`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, file.Close())

	items, err := disk.LoadItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, types.ItemId("gz"), items[0].Id)
}

func TestDiskStorageMissingSnapshot(t *testing.T) {
	disk := NewDiskStorage("se", t.TempDir())
	_, err := disk.LoadItems(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDiskStorageEmptyFile(t *testing.T) {
	root := t.TempDir()
	disk := NewDiskStorage("", root)
	require.NoError(t, os.WriteFile(filepath.Join(root, itemsFile), []byte("  \n"), 0o644))

	items, err := disk.LoadItems(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestDiskStorageCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	disk := NewDiskStorage("se", t.TempDir())
	_, err := disk.LoadItems(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, disk.SaveItems(ctx, testItems()), context.Canceled)
}

type fakeRedis struct {
	data map[string]string
	err  error
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	if f.err != nil {
		return redis.NewStringResult("", f.err)
	}
	value, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(value, nil)
}

func (f *fakeRedis) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	if f.err != nil {
		return redis.NewStatusResult("", f.err)
	}
	switch v := value.(type) {
	case []byte:
		f.data[key] = string(v)
	case string:
		f.data[key] = v
	}
	return redis.NewStatusResult("OK", nil)
}

func TestRedisStorage(t *testing.T) {
	ctx := context.Background()
	client := &fakeRedis{data: map[string]string{}}
	store := newRedisStorage(client, "")
	assert.Equal(t, DefaultRedisKey, store.Key)

	_, err := store.LoadItems(ctx)
	assert.ErrorIs(t, err, ErrNoSnapshot)

	require.NoError(t, store.SaveItems(ctx, testItems()))
	assert.Contains(t, client.data, DefaultRedisKey)

	items, err := store.LoadItems(ctx)
	require.NoError(t, err)
	assert.Equal(t, testItems(), items)
}

func TestRedisStorageErrors(t *testing.T) {
	ctx := context.Background()
	failure := errors.New("connection refused")
	store := newRedisStorage(&fakeRedis{data: map[string]string{}, err: failure}, "catalog_se")

	_, err := store.LoadItems(ctx)
	assert.ErrorIs(t, err, failure)
	assert.ErrorIs(t, store.SaveItems(ctx, testItems()), failure)

	broken := newRedisStorage(&fakeRedis{data: map[string]string{"catalog_se": "{not json"}}, "catalog_se")
	_, err = broken.LoadItems(ctx)
	assert.Error(t, err)
}
