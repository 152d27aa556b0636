package types

import (
	"math"
	"time"
)

type ItemId string

// CatalogItem is one product as supplied by the data source. Items are shared
// read-only between views and are never modified after loading.
type CatalogItem struct {
	Id            ItemId    `json:"id"`
	Name          string    `json:"name"`
	Price         float64   `json:"price"`
	Quantity      int       `json:"quantity"`
	AverageRating float64   `json:"averageRating"`
	TopSelling    float64   `json:"topSelling,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	BrandName     string    `json:"brandName,omitempty"`
	CategoryName  string    `json:"categoryName,omitempty"`
}

func (item *CatalogItem) HasStock() bool {
	return item.Quantity > 0
}

func (item *CatalogItem) HasBrand() bool {
	return item.BrandName != ""
}

func (item *CatalogItem) HasCategory() bool {
	return item.CategoryName != ""
}

func invalidNumber(v float64) bool {
	return math.IsNaN(v) || math.IsInf(v, 0)
}

// Validate checks the data source contract for a single item.
func (item *CatalogItem) Validate() error {
	if item.Id == "" {
		return &ValidationError{Field: "id", Value: item.Id, Reason: "must not be empty"}
	}
	if invalidNumber(item.Price) || item.Price < 0 {
		return &ValidationError{Field: "price", Value: item.Price, Reason: "must be a non-negative number"}
	}
	if item.Quantity < 0 {
		return &ValidationError{Field: "quantity", Value: item.Quantity, Reason: "must be non-negative"}
	}
	if invalidNumber(item.AverageRating) || item.AverageRating < 0 || item.AverageRating > MaxRating {
		return &ValidationError{Field: "averageRating", Value: item.AverageRating, Reason: "must be within [0,5]"}
	}
	if invalidNumber(item.TopSelling) {
		return &ValidationError{Field: "topSelling", Value: item.TopSelling, Reason: "must be a number"}
	}
	if item.CreatedAt.IsZero() {
		return &ValidationError{Field: "createdAt", Value: item.CreatedAt, Reason: "missing timestamp"}
	}
	return nil
}

// PriceBounds returns the lowest and highest price in items, [0,0] when empty.
func PriceBounds(items []*CatalogItem) PriceRange {
	if len(items) == 0 {
		return PriceRange{}
	}
	bounds := PriceRange{Min: items[0].Price, Max: items[0].Price}
	for _, item := range items[1:] {
		bounds.Min = min(bounds.Min, item.Price)
		bounds.Max = max(bounds.Max, item.Price)
	}
	return bounds
}
