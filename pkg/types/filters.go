package types

import (
	"encoding/json"
	"errors"
	"maps"
	"math"
	"slices"
	"strings"
)

const MaxRating = 5.0

// AllValues is the sentinel accepted wherever a brand or category selection
// is expected and means "no restriction".
const AllValues = "all"

type StockFilter string

const (
	StockAny            StockFilter = "any"
	StockInStockOnly    StockFilter = "inStockOnly"
	StockOutOfStockOnly StockFilter = "outOfStockOnly"
)

func ParseStockFilter(value string) (StockFilter, error) {
	switch s := StockFilter(value); s {
	case StockAny, StockInStockOnly, StockOutOfStockOnly:
		return s, nil
	case "":
		return StockAny, nil
	}
	return StockAny, &ValidationError{Field: "stock", Value: value, Reason: "expected any, inStockOnly or outOfStockOnly"}
}

// StockFilterFromFlags maps the storefront's in stock / out of stock checkbox
// pair onto the tri-state. Both checked and both unchecked mean any.
func StockFilterFromFlags(inStock, outOfStock bool) StockFilter {
	switch {
	case inStock && !outOfStock:
		return StockInStockOnly
	case outOfStock && !inStock:
		return StockOutOfStockOnly
	}
	return StockAny
}

func (s StockFilter) Valid() bool {
	return s == StockAny || s == StockInStockOnly || s == StockOutOfStockOnly
}

func (s StockFilter) Matches(item *CatalogItem) bool {
	switch s {
	case StockInStockOnly:
		return item.Quantity > 0
	case StockOutOfStockOnly:
		return item.Quantity == 0
	}
	return true
}

type SortKey string

const (
	SortNewest     SortKey = "newest"
	SortOldest     SortKey = "oldest"
	SortPriceAsc   SortKey = "priceAsc"
	SortPriceDesc  SortKey = "priceDesc"
	SortRating     SortKey = "rating"
	SortPopularity SortKey = "popularity"
)

var SortKeys = []SortKey{SortNewest, SortOldest, SortPriceAsc, SortPriceDesc, SortRating, SortPopularity}

func (k SortKey) Valid() bool {
	return slices.Contains(SortKeys, k)
}

func ParseSortKey(value string) (SortKey, error) {
	if value == "" {
		return SortNewest, nil
	}
	key := SortKey(value)
	if key.Valid() {
		return key, nil
	}
	return SortNewest, &ValidationError{Field: "sort", Value: value, Reason: "unknown sort key"}
}

type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

func (r PriceRange) Contains(price float64) bool {
	return price >= r.Min && price <= r.Max
}

func (r PriceRange) Valid() bool {
	return r.Min <= r.Max
}

func clamp[T int | float64](value, low, high T) T {
	if value < low {
		return low
	}
	if value > high {
		return high
	}
	return value
}

// ClampPriceRange validates a requested range and clamps both endpoints into
// the catalog bounds.
func ClampPriceRange(requested, bounds PriceRange) (PriceRange, error) {
	if math.IsNaN(requested.Min) || math.IsNaN(requested.Max) {
		return bounds, &ValidationError{Field: "priceRange", Value: requested, Reason: "not a number"}
	}
	if !requested.Valid() {
		return bounds, &ValidationError{Field: "priceRange", Value: requested, Reason: "min is greater than max"}
	}
	return PriceRange{
		Min: clamp(requested.Min, bounds.Min, bounds.Max),
		Max: clamp(requested.Max, bounds.Min, bounds.Max),
	}, nil
}

func ClampRating(rating float64) (float64, error) {
	if math.IsNaN(rating) {
		return 0, &ValidationError{Field: "minRating", Value: rating, Reason: "not a number"}
	}
	return clamp(rating, 0, MaxRating), nil
}

// NameSet is a selection of brand or category names. An empty set selects
// everything.
type NameSet map[string]struct{}

func NewNameSet(names ...string) NameSet {
	s := make(NameSet, len(names))
	for _, name := range names {
		s[name] = struct{}{}
	}
	return s
}

// NormalizeNames trims the names and builds a set. The all sentinel anywhere
// in the input selects everything.
func NormalizeNames(names ...string) (NameSet, error) {
	s := make(NameSet, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, &ValidationError{Field: "names", Value: names, Reason: "empty name"}
		}
		if strings.EqualFold(name, AllValues) {
			return NameSet{}, nil
		}
		s[name] = struct{}{}
	}
	return s, nil
}

// NormalizeField is NormalizeNames reporting errors against field.
func NormalizeField(field string, names ...string) (NameSet, error) {
	set, err := NormalizeNames(names...)
	var validation *ValidationError
	if errors.As(err, &validation) {
		validation.Field = field
	}
	return set, err
}

func (s NameSet) IsAll() bool {
	return len(s) == 0
}

func (s NameSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Matches reports whether a value passes the selection. Missing values never
// pass an active selection.
func (s NameSet) Matches(value string) bool {
	if s.IsAll() {
		return true
	}
	if value == "" {
		return false
	}
	return s.Has(value)
}

func (s NameSet) Values() []string {
	return slices.Sorted(maps.Keys(s))
}

func (s NameSet) Clone() NameSet {
	if s == nil {
		return NameSet{}
	}
	return maps.Clone(s)
}

func (s NameSet) MarshalJSON() ([]byte, error) {
	if s.IsAll() {
		return json.Marshal(AllValues)
	}
	return json.Marshal(s.Values())
}

func (s *NameSet) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		set, err := NormalizeNames(single)
		if err != nil {
			return err
		}
		*s = set
		return nil
	}
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return err
	}
	set, err := NormalizeNames(names...)
	if err != nil {
		return err
	}
	*s = set
	return nil
}

// FilterConfig is the filter and sort state of one catalog view.
type FilterConfig struct {
	Stock      StockFilter `json:"stock"`
	Price      PriceRange  `json:"priceRange"`
	Brands     NameSet     `json:"brands"`
	Categories NameSet     `json:"categories"`
	MinRating  float64     `json:"minRating"`
	Sort       SortKey     `json:"sort"`
}

func (c FilterConfig) Clone() FilterConfig {
	c.Brands = c.Brands.Clone()
	c.Categories = c.Categories.Clone()
	return c
}

// DefaultConfig is the unrestricted configuration for items: full price
// range, every brand and category, no rating floor, newest first.
func DefaultConfig(items []*CatalogItem) FilterConfig {
	return FilterConfig{
		Stock:      StockAny,
		Price:      PriceBounds(items),
		Brands:     NameSet{},
		Categories: NameSet{},
		MinRating:  0,
		Sort:       SortNewest,
	}
}
