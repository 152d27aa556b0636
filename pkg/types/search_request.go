package types

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/gorilla/schema"
)

// FilterRequest is a stateless filter query as sent by the storefront.
type FilterRequest struct {
	Stock      string   `json:"stock" schema:"stock"`
	InStock    bool     `json:"inStock" schema:"inStock"`
	OutOfStock bool     `json:"outOfStock" schema:"outOfStock"`
	MinPrice   *float64 `json:"minPrice" schema:"minPrice"`
	MaxPrice   *float64 `json:"maxPrice" schema:"maxPrice"`
	Brands     []string `json:"brands" schema:"brand"`
	Categories []string `json:"categories" schema:"category"`
	MinRating  float64  `json:"minRating" schema:"rating"`
	Sort       string   `json:"sort" schema:"sort,default:newest"`
	Page       int      `json:"page" schema:"page"`
	PageSize   int      `json:"pageSize" schema:"size,default:24"`
}

const (
	DefaultPageSize = 24
	MaxPageSize     = 200
	MaxPage         = 1000
)

var decoder = schema.NewDecoder()

func init() {
	decoder.IgnoreUnknownKeys(true)
}

func (r *FilterRequest) Sanitize() {
	r.Page = clamp(r.Page, 0, MaxPage)
	if r.PageSize == 0 {
		r.PageSize = DefaultPageSize
	}
	r.PageSize = clamp(r.PageSize, 1, MaxPageSize)
}

// StockFilter resolves the explicit stock value, falling back to the legacy
// checkbox pair when it is not set.
func (r *FilterRequest) StockFilter() (StockFilter, error) {
	if r.Stock != "" {
		return ParseStockFilter(r.Stock)
	}
	return StockFilterFromFlags(r.InStock, r.OutOfStock), nil
}

// ToConfig builds a validated config on top of the defaults of items. The
// first out of domain value is returned as a *ValidationError.
func (r *FilterRequest) ToConfig(items []*CatalogItem) (FilterConfig, error) {
	config := DefaultConfig(items)
	bounds := config.Price
	var err error

	if config.Stock, err = r.StockFilter(); err != nil {
		return config, err
	}
	requested := bounds
	if r.MinPrice != nil {
		requested.Min = *r.MinPrice
	}
	if r.MaxPrice != nil {
		requested.Max = *r.MaxPrice
	}
	if config.Price, err = ClampPriceRange(requested, bounds); err != nil {
		return config, err
	}
	if len(r.Brands) > 0 {
		if config.Brands, err = NormalizeField("brands", r.Brands...); err != nil {
			return config, err
		}
	}
	if len(r.Categories) > 0 {
		if config.Categories, err = NormalizeField("categories", r.Categories...); err != nil {
			return config, err
		}
	}
	if config.MinRating, err = ClampRating(r.MinRating); err != nil {
		return config, err
	}
	if config.Sort, err = ParseSortKey(r.Sort); err != nil {
		return config, err
	}
	return config, nil
}

func makeBaseFilterRequest() *FilterRequest {
	return &FilterRequest{
		Brands:     []string{},
		Categories: []string{},
		Sort:       string(SortNewest),
		PageSize:   DefaultPageSize,
	}
}

func GetFilterRequest(r *http.Request) (*FilterRequest, error) {
	fr := makeBaseFilterRequest()
	var err error
	if r.Method == http.MethodGet {
		err = FilterRequestFromQuery(r.URL.Query(), fr)
	} else if jsonErr := json.NewDecoder(r.Body).Decode(fr); jsonErr != nil {
		err = &ValidationError{Field: "body", Reason: jsonErr.Error()}
	}
	fr.Sanitize()
	return fr, err
}

func FilterRequestFromQuery(query url.Values, result *FilterRequest) error {
	return DecodeQuery(result, query)
}

// DecodeQuery fills dst from query using its schema tags. Decode failures
// are reported as a *ValidationError.
func DecodeQuery(dst any, query url.Values) error {
	if err := decoder.Decode(dst, query); err != nil {
		return &ValidationError{Field: "query", Value: query.Encode(), Reason: err.Error()}
	}
	return nil
}
