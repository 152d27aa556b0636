package server

import (
	"github.com/matst80/slask-catalog/pkg/catalog"
	"github.com/matst80/slask-catalog/pkg/types"
)

type ItemsResponse struct {
	catalog.Page
	Config  types.FilterConfig `json:"config"`
	Version uint64             `json:"version"`
}

type MountRequest struct {
	MultiCategory bool `json:"multiCategory"`
}

type ViewResponse struct {
	Id            string             `json:"id"`
	Version       uint64             `json:"version"`
	MultiCategory bool               `json:"multiCategory"`
	Config        types.FilterConfig `json:"config"`
	Bounds        types.PriceRange   `json:"bounds"`
	PendingPrice  *types.PriceRange  `json:"pendingPrice,omitempty"`
	Summary       types.Summary      `json:"summary"`
	Updates       uint64             `json:"updates"`
	Page          *catalog.Page      `json:"page,omitempty"`
	Rejected      []RejectedChange   `json:"rejected,omitempty"`
}

// ViewPatch carries the controls a client changed. Absent fields are left
// untouched.
type ViewPatch struct {
	Stock      *string           `json:"stock,omitempty"`
	InStock    *bool             `json:"inStock,omitempty"`
	OutOfStock *bool             `json:"outOfStock,omitempty"`
	PriceRange *types.PriceRange `json:"priceRange,omitempty"`
	Brands     []string          `json:"brands,omitempty"`
	Categories []string          `json:"categories,omitempty"`
	MinRating  *float64          `json:"minRating,omitempty"`
	Sort       *string           `json:"sort,omitempty"`
}

type RejectedChange struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

type PageRequest struct {
	Page     int `schema:"page"`
	PageSize int `schema:"size,default:24"`
}

type ReloadResponse struct {
	Version uint64 `json:"version"`
	Items   int    `json:"items"`
}
