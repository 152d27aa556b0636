package types

import (
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleItems() []*CatalogItem {
	return []*CatalogItem{
		{Id: "1", Price: 10, Quantity: 5, AverageRating: 4, CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{Id: "2", Price: 20, Quantity: 0, AverageRating: 2, CreatedAt: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)},
		{Id: "3", Price: 15, Quantity: 3, AverageRating: 5, CreatedAt: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
	}
}

func TestFilterRequestFromQuery(t *testing.T) {
	query, err := url.ParseQuery("inStock=true&minPrice=12&brand=Acme&brand=Globex&rating=4.5&sort=priceAsc&page=2&size=10&unknown=1")
	require.NoError(t, err)

	req := makeBaseFilterRequest()
	require.NoError(t, FilterRequestFromQuery(query, req))
	req.Sanitize()

	assert.True(t, req.InStock)
	require.NotNil(t, req.MinPrice)
	assert.Equal(t, 12.0, *req.MinPrice)
	assert.Nil(t, req.MaxPrice)
	assert.Equal(t, []string{"Acme", "Globex"}, req.Brands)
	assert.Equal(t, 4.5, req.MinRating)
	assert.Equal(t, "priceAsc", req.Sort)
	assert.Equal(t, 2, req.Page)
	assert.Equal(t, 10, req.PageSize)
}

func TestFilterRequestSanitize(t *testing.T) {
	req := &FilterRequest{Page: -4, PageSize: 5000}
	req.Sanitize()
	assert.Equal(t, 0, req.Page)
	assert.Equal(t, MaxPageSize, req.PageSize)

	req = &FilterRequest{}
	req.Sanitize()
	assert.Equal(t, DefaultPageSize, req.PageSize)
}

func TestFilterRequestToConfig(t *testing.T) {
	minPrice := 12.0
	maxPrice := 1000.0
	req := &FilterRequest{
		InStock:  true,
		MinPrice: &minPrice,
		MaxPrice: &maxPrice,
		Brands:   []string{"Acme"},
		Sort:     "rating",
	}
	config, err := req.ToConfig(sampleItems())
	require.NoError(t, err)
	assert.Equal(t, StockInStockOnly, config.Stock)
	assert.Equal(t, PriceRange{Min: 12, Max: 20}, config.Price, "max clamps to the catalog bounds")
	assert.Equal(t, []string{"Acme"}, config.Brands.Values())
	assert.True(t, config.Categories.IsAll())
	assert.Equal(t, SortRating, config.Sort)
}

func TestFilterRequestToConfigRejects(t *testing.T) {
	items := sampleItems()
	tooHigh := 30.0
	low := 5.0

	cases := map[string]*FilterRequest{
		"stock":      {Stock: "sometimes"},
		"sort":       {Sort: "random"},
		"brands":     {Brands: []string{" "}},
		"priceRange": {MinPrice: &tooHigh, MaxPrice: &low},
	}
	for field, req := range cases {
		_, err := req.ToConfig(items)
		var validation *ValidationError
		require.ErrorAs(t, err, &validation, field)
		assert.Equal(t, field, validation.Field)
	}
}

func TestGetFilterRequest(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/items?outOfStock=true&category=Shoes", nil)
	req, err := GetFilterRequest(r)
	require.NoError(t, err)
	assert.True(t, req.OutOfStock)
	assert.Equal(t, []string{"Shoes"}, req.Categories)
	assert.Equal(t, "newest", req.Sort)
	assert.Equal(t, DefaultPageSize, req.PageSize)

	r = httptest.NewRequest("POST", "/api/items", strings.NewReader(`{"stock":"inStockOnly","pageSize":5}`))
	req, err = GetFilterRequest(r)
	require.NoError(t, err)
	assert.Equal(t, "inStockOnly", req.Stock)
	assert.Equal(t, 5, req.PageSize)

	r = httptest.NewRequest("POST", "/api/items", strings.NewReader(`{"stock":`))
	_, err = GetFilterRequest(r)
	var validation *ValidationError
	assert.ErrorAs(t, err, &validation)

	r = httptest.NewRequest("GET", "/api/items?minPrice=cheap", nil)
	_, err = GetFilterRequest(r)
	assert.ErrorAs(t, err, &validation)
}
