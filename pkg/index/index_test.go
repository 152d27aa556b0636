package index

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/matst80/slask-catalog/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type staticSource struct {
	items []*types.CatalogItem
	err   error
}

func (s *staticSource) LoadItems(ctx context.Context) ([]*types.CatalogItem, error) {
	return s.items, s.err
}

func item(id string, price float64, quantity int) *types.CatalogItem {
	return &types.CatalogItem{
		Id:        types.ItemId(id),
		Price:     price,
		Quantity:  quantity,
		CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestNewCatalogIndexIsEmpty(t *testing.T) {
	idx := NewCatalogIndex(nil)
	assert.Empty(t, idx.Items())
	assert.Zero(t, idx.Version())
	assert.Zero(t, idx.Snapshot().Metadata.Total)
}

func TestReplaceSwapsSnapshot(t *testing.T) {
	idx := NewCatalogIndex(zap.NewNop())
	first := idx.Snapshot()

	snapshot := idx.Replace([]*types.CatalogItem{item("1", 10, 1), item("2", 30, 0)})
	assert.Equal(t, uint64(1), snapshot.Version)
	assert.Same(t, snapshot, idx.Snapshot())
	assert.Equal(t, types.PriceRange{Min: 10, Max: 30}, snapshot.Metadata.PriceRange)
	assert.Equal(t, types.AvailabilityData{InStock: 1, OutOfStock: 1}, snapshot.Metadata.Availability)
	assert.Empty(t, first.Items, "earlier snapshots are left alone")

	idx.Replace(nil)
	assert.Equal(t, uint64(2), idx.Version())
}

func TestSanitizeItems(t *testing.T) {
	items := []*types.CatalogItem{
		item("1", 10, 1),
		nil,
		item("", 10, 1),
		item("2", -1, 1),
		item("3", math.NaN(), 1),
		item("1", 99, 1),
		item("4", 5, 0),
	}
	clean := SanitizeItems(items, zap.NewNop())
	require.Len(t, clean, 2)
	assert.Equal(t, types.ItemId("1"), clean[0].Id)
	assert.Equal(t, 10.0, clean[0].Price, "the first occurrence of a duplicate id wins")
	assert.Equal(t, types.ItemId("4"), clean[1].Id)
}

func TestReload(t *testing.T) {
	idx := NewCatalogIndex(nil)
	snapshot, err := idx.Reload(context.Background(), &staticSource{items: []*types.CatalogItem{item("1", 10, 1)}})
	require.NoError(t, err)
	assert.Len(t, snapshot.Items, 1)

	failure := errors.New("source down")
	_, err = idx.Reload(context.Background(), &staticSource{err: failure})
	assert.ErrorIs(t, err, failure)
	assert.Len(t, idx.Items(), 1, "a failed reload keeps the current snapshot")
}
