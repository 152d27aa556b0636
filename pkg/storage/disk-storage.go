package storage

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/matst80/slask-catalog/pkg/common/jsoncompat"
	"github.com/matst80/slask-catalog/pkg/types"
)

const itemsFile = "catalog.json"
const gzippedItemsFile = "catalog.json.gz"

// LoadItems reads the snapshot, preferring the gzipped file when present.
func (d *DiskStorage) LoadItems(ctx context.Context) ([]*types.CatalogItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var items []*types.CatalogItem
	err := d.LoadGzippedJson(&items, gzippedItemsFile)
	if errors.Is(err, os.ErrNotExist) {
		err = d.LoadJson(&items, itemsFile)
	}
	if err != nil {
		return nil, fmt.Errorf("load catalog snapshot: %w", err)
	}
	return items, nil
}

func (d *DiskStorage) SaveItems(ctx context.Context, items []*types.CatalogItem) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return d.SaveJson(items, itemsFile)
}

func (d *DiskStorage) ensureFolder(fileName string) error {
	return os.MkdirAll(filepath.Dir(fileName), 0o755)
}

func (d *DiskStorage) SaveJson(data any, name string) error {
	fileName, tmpFileName := d.GetFileName(name)
	if err := d.ensureFolder(fileName); err != nil {
		return err
	}
	bytes, err := jsoncompat.Marshal(data)
	if err != nil {
		return err
	}
	if err = os.WriteFile(tmpFileName, bytes, 0o644); err != nil {
		return err
	}
	return os.Rename(tmpFileName, fileName)
}

func (d *DiskStorage) LoadJson(data any, filename string) error {
	name, _ := d.GetFileName(filename)
	file, err := os.Open(name)
	if err != nil {
		return err
	}
	defer file.Close()
	return decodeAll(file, data)
}

func (d *DiskStorage) LoadGzippedJson(data any, filename string) error {
	name, _ := d.GetFileName(filename)
	file, err := os.Open(name)
	if err != nil {
		return err
	}
	defer file.Close()

	zipReader, err := gzip.NewReader(file)
	if err != nil {
		return err
	}
	defer zipReader.Close()
	return decodeAll(zipReader, data)
}

func decodeAll(r io.Reader, data any) error {
	bytes, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if len(strings.TrimSpace(string(bytes))) == 0 {
		return nil
	}
	return jsoncompat.Unmarshal(bytes, data)
}
