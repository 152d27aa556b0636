package sorting

import (
	"cmp"
	"slices"

	"github.com/matst80/slask-catalog/pkg/types"
)

// Sorter orders catalog items by a single key. Descending unless isReversed,
// ties are left in input order.
type Sorter interface {
	Name() types.SortKey
	Compare(a, b *types.CatalogItem) int
}

type BaseSorter struct {
	name       types.SortKey
	isReversed bool
	fn         func(item *types.CatalogItem) float64
}

func NewBaseSorter(name types.SortKey, fn func(item *types.CatalogItem) float64, isReversed bool) Sorter {
	return &BaseSorter{
		name:       name,
		isReversed: isReversed,
		fn:         fn,
	}
}

func (s *BaseSorter) Name() types.SortKey {
	return s.name
}

func (s *BaseSorter) Compare(a, b *types.CatalogItem) int {
	if s.isReversed {
		return cmp.Compare(s.fn(a), s.fn(b))
	}
	return cmp.Compare(s.fn(b), s.fn(a))
}

// timeSorter compares creation instants directly, float scores lose
// nanosecond precision.
type timeSorter struct {
	name       types.SortKey
	isReversed bool
}

func (s *timeSorter) Name() types.SortKey {
	return s.name
}

func (s *timeSorter) Compare(a, b *types.CatalogItem) int {
	if s.isReversed {
		return a.CreatedAt.Compare(b.CreatedAt)
	}
	return b.CreatedAt.Compare(a.CreatedAt)
}

func NewNewestSorter() Sorter {
	return &timeSorter{name: types.SortNewest}
}

func NewOldestSorter() Sorter {
	return &timeSorter{name: types.SortOldest, isReversed: true}
}

func NewPriceSorter() Sorter {
	return NewBaseSorter(types.SortPriceAsc, func(item *types.CatalogItem) float64 {
		return item.Price
	}, true)
}

func NewPriceDescSorter() Sorter {
	return NewBaseSorter(types.SortPriceDesc, func(item *types.CatalogItem) float64 {
		return item.Price
	}, false)
}

func NewRatingSorter() Sorter {
	return NewBaseSorter(types.SortRating, func(item *types.CatalogItem) float64 {
		return item.AverageRating
	}, false)
}

func NewPopularitySorter() Sorter {
	return NewBaseSorter(types.SortPopularity, func(item *types.CatalogItem) float64 {
		if item.TopSelling > 0 {
			return item.TopSelling
		}
		return 0
	}, false)
}

var sorters = map[types.SortKey]Sorter{}

func init() {
	for _, s := range []Sorter{
		NewNewestSorter(),
		NewOldestSorter(),
		NewPriceSorter(),
		NewPriceDescSorter(),
		NewRatingSorter(),
		NewPopularitySorter(),
	} {
		sorters[s.Name()] = s
	}
}

func GetSorter(key types.SortKey) (Sorter, bool) {
	s, ok := sorters[key]
	return s, ok
}

// Sort orders items in place with a stable sort.
func Sort(items []*types.CatalogItem, key types.SortKey) error {
	s, ok := GetSorter(key)
	if !ok {
		return &types.ValidationError{Field: "sort", Value: key, Reason: "unknown sort key"}
	}
	slices.SortStableFunc(items, s.Compare)
	return nil
}
