// Package catalog filters, sorts and pages catalog snapshots.
package catalog

import (
	"time"

	"github.com/matst80/slask-catalog/pkg/sorting"
	"github.com/matst80/slask-catalog/pkg/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	noApplies = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slaskcatalog_engine_applies_total",
		Help: "The total number of filter engine runs",
	})
	applyDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "slaskcatalog_engine_apply_seconds",
		Help:    "Time spent filtering and sorting a catalog",
		Buckets: prometheus.ExponentialBuckets(0.00005, 4, 8),
	})
)

type predicate func(item *types.CatalogItem) bool

// predicates returns the active filters of config, cheapest first.
func predicates(config *types.FilterConfig) []predicate {
	ret := make([]predicate, 0, 5)
	if config.Stock != types.StockAny && config.Stock != "" {
		ret = append(ret, config.Stock.Matches)
	}
	price := config.Price
	ret = append(ret, func(item *types.CatalogItem) bool {
		return price.Contains(item.Price)
	})
	if config.MinRating > 0 {
		floor := config.MinRating
		ret = append(ret, func(item *types.CatalogItem) bool {
			return item.AverageRating >= floor
		})
	}
	if !config.Brands.IsAll() {
		brands := config.Brands
		ret = append(ret, func(item *types.CatalogItem) bool {
			return brands.Matches(item.BrandName)
		})
	}
	if !config.Categories.IsAll() {
		categories := config.Categories
		ret = append(ret, func(item *types.CatalogItem) bool {
			return categories.Matches(item.CategoryName)
		})
	}
	return ret
}

func matchesAll(item *types.CatalogItem, filters []predicate) bool {
	for _, fn := range filters {
		if !fn(item) {
			return false
		}
	}
	return true
}

// Apply returns the items matching config in the configured order. The
// result is a new slice; items is never modified or reordered.
func Apply(items []*types.CatalogItem, config *types.FilterConfig) ([]*types.CatalogItem, error) {
	start := time.Now()
	defer func() {
		noApplies.Inc()
		applyDuration.Observe(time.Since(start).Seconds())
	}()

	if !config.Price.Valid() {
		return nil, &types.InvalidRangeError{Min: config.Price.Min, Max: config.Price.Max}
	}
	if _, ok := sorting.GetSorter(config.Sort); !ok {
		return nil, &types.ValidationError{Field: "sort", Value: config.Sort, Reason: "unknown sort key"}
	}

	filters := predicates(config)
	result := make([]*types.CatalogItem, 0, len(items))
	for _, item := range items {
		if matchesAll(item, filters) {
			result = append(result, item)
		}
	}
	if err := sorting.Sort(result, config.Sort); err != nil {
		return nil, err
	}
	return result, nil
}

func Summarize(result, all []*types.CatalogItem) types.Summary {
	return types.Summary{Showing: len(result), Total: len(all)}
}
