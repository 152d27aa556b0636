package main

import (
	"compress/gzip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/matst80/slask-catalog/pkg/storage"
	"github.com/matst80/slask-catalog/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const snapshot = `[
	{"id":"1","price":10,"quantity":5,"averageRating":4,"createdAt":"2024-01-01T00:00:00Z"},
	{"id":"2","price":20,"quantity":0,"averageRating":2,"createdAt":"2024-06-01T00:00:00Z"},
	{"id":"3","price":15,"quantity":3,"averageRating":5,"createdAt":"2024-03-01T00:00:00Z"}
]`

func TestLoadSnapshotFile(t *testing.T) {
	dir := t.TempDir()
	plain := filepath.Join(dir, "items.json")
	require.NoError(t, os.WriteFile(plain, []byte(snapshot), 0o644))

	items, err := loadSnapshotFile(plain)
	require.NoError(t, err)
	assert.Len(t, items, 3)

	zipped := filepath.Join(dir, "items.json.gz")
	file, err := os.Create(zipped)
	require.NoError(t, err)
	zw := gzip.NewWriter(file)
	_, err = zw.Write([]byte(snapshot))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, file.Close())

	items, err = loadSnapshotFile(zipped)
	require.NoError(t, err)
	assert.Len(t, items, 3)

	_, err = loadSnapshotFile(filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRunFilter(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "items.json")
	require.NoError(t, os.WriteFile(path, []byte(snapshot), 0o644))
	items, err := loadSnapshotFile(path)
	require.NoError(t, err)

	req := &types.FilterRequest{Stock: "inStockOnly", Sort: "priceAsc"}
	req.Sanitize()
	page, err := runFilter(items, req)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, types.ItemId("1"), page.Items[0].Id)
	assert.Equal(t, types.ItemId("3"), page.Items[1].Id)

	_, err = runFilter(items, &types.FilterRequest{Sort: "random"})
	assert.Error(t, err)
}

func TestSaveSnapshot(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "items.json")
	require.NoError(t, os.WriteFile(path, []byte(snapshot), 0o644))
	items, err := loadSnapshotFile(path)
	require.NoError(t, err)

	disk := storage.NewDiskStorage("se", dir)
	require.NoError(t, saveSnapshot(context.Background(), disk, items))
	loaded, err := disk.LoadItems(context.Background())
	require.NoError(t, err)
	assert.Equal(t, items, loaded)
}
