package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/matst80/slask-catalog/pkg/types"
)

// Source supplies the catalog snapshot a view is mounted on.
type Source interface {
	LoadItems(ctx context.Context) ([]*types.CatalogItem, error)
}

type Sink interface {
	SaveItems(ctx context.Context, items []*types.CatalogItem) error
}

type DiskStorage struct {
	Country    string
	RootFolder string
}

func NewDiskStorage(country, rootFolder string) *DiskStorage {
	return &DiskStorage{
		Country:    country,
		RootFolder: rootFolder,
	}
}

func (ds *DiskStorage) GetFileName(name string) (string, string) {
	fileName := filepath.Join(ds.RootFolder, ds.Country, name)
	tmpFileName := fileName + ".tmp-" + fmt.Sprintf("%d", time.Now().UnixMilli())
	return fileName, tmpFileName
}
