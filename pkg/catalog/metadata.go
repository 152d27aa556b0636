package catalog

import (
	"cmp"
	"slices"

	"github.com/matst80/slask-catalog/pkg/types"
)

func countsToList(counts map[string]int) []types.ValueCount {
	ret := make([]types.ValueCount, 0, len(counts))
	for value, count := range counts {
		ret = append(ret, types.ValueCount{Value: value, Count: count})
	}
	slices.SortFunc(ret, func(a, b types.ValueCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Value, b.Value)
	})
	return ret
}

// BuildMetadata collects availability, brand, category, price and rating
// information for the filter sidebar.
func BuildMetadata(items []*types.CatalogItem) types.FilterMetadata {
	brands := map[string]int{}
	categories := map[string]int{}
	meta := types.FilterMetadata{
		PriceRange: types.PriceBounds(items),
		Total:      len(items),
	}
	for _, item := range items {
		if item.HasStock() {
			meta.Availability.InStock++
		} else {
			meta.Availability.OutOfStock++
		}
		if item.HasBrand() {
			brands[item.BrandName]++
		}
		if item.HasCategory() {
			categories[item.CategoryName]++
		}
		star := int(item.AverageRating)
		meta.Ratings[min(max(star, 0), len(meta.Ratings)-1)]++
	}
	meta.Brands = countsToList(brands)
	meta.Categories = countsToList(categories)
	return meta
}
