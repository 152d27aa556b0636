package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/matst80/slask-catalog/pkg/common"
	"github.com/matst80/slask-catalog/pkg/controller"
	"github.com/matst80/slask-catalog/pkg/index"
	"github.com/matst80/slask-catalog/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func date(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

func sampleItems() []*types.CatalogItem {
	return []*types.CatalogItem{
		{Id: "1", Price: 10, Quantity: 5, AverageRating: 4, CreatedAt: date("2024-01-01"), BrandName: "Acme", CategoryName: "Shoes"},
		{Id: "2", Price: 20, Quantity: 0, AverageRating: 2, CreatedAt: date("2024-06-01"), BrandName: "Globex", CategoryName: "Hats"},
		{Id: "3", Price: 15, Quantity: 3, AverageRating: 5, CreatedAt: date("2024-03-01"), BrandName: "Acme", CategoryName: "Hats"},
	}
}

type staticSource struct {
	items []*types.CatalogItem
}

func (s *staticSource) LoadItems(ctx context.Context) ([]*types.CatalogItem, error) {
	return s.items, nil
}

func ids(items []*types.CatalogItem) []types.ItemId {
	ret := make([]types.ItemId, len(items))
	for i, item := range items {
		ret[i] = item.Id
	}
	return ret
}

type testServer struct {
	ws      *WebServer
	handler http.Handler
	clock   *common.ManualClock
}

func newTestServer(t *testing.T, limiter *rate.Limiter) *testServer {
	t.Helper()
	clock := common.NewManualClock(date("2024-07-01"))
	idx := index.NewCatalogIndex(nil)
	idx.Replace(sampleItems())
	views := NewViewRegistry(time.Hour, controller.Options{Clock: clock})
	ws := NewWebServer(idx, views, &staticSource{items: sampleItems()[:2]}, limiter, nil)
	t.Cleanup(func() { _ = views.CloseAll(context.Background()) })
	return &testServer{ws: ws, handler: ws.Handler(), clock: clock}
}

func (s *testServer) do(t *testing.T, method, target, body string, out any) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, r)
	if out != nil && w.Code < 300 {
		reflect.ValueOf(out).Elem().SetZero()
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
	}
	return w
}

func TestItemsEndpoint(t *testing.T) {
	s := newTestServer(t, nil)

	var resp ItemsResponse
	w := s.do(t, "GET", "/api/items?inStock=true&sort=priceAsc", "", &resp)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []types.ItemId{"1", "3"}, ids(resp.Items))
	assert.Equal(t, 2, resp.Total)
	assert.Equal(t, uint64(1), resp.Version)
	assert.Equal(t, types.StockInStockOnly, resp.Config.Stock)

	w = s.do(t, "POST", "/api/items", `{"minRating":4.5}`, &resp)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []types.ItemId{"3"}, ids(resp.Items))

	w = s.do(t, "GET", "/api/items?size=1&page=1", "", &resp)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []types.ItemId{"3"}, ids(resp.Items))
	assert.Equal(t, 3, resp.TotalPages)
}

func TestItemsEndpointRejects(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(t, "GET", "/api/items?sort=random", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	var errResp common.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &errResp))
	assert.Equal(t, "sort", errResp.Field)

	w = s.do(t, "GET", "/api/items?minPrice=18&maxPrice=12", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFiltersEndpoint(t *testing.T) {
	s := newTestServer(t, nil)
	var meta types.FilterMetadata
	w := s.do(t, "GET", "/api/filters", "", &meta)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3, meta.Total)
	assert.Equal(t, types.PriceRange{Min: 10, Max: 20}, meta.PriceRange)
}

func TestViewLifecycle(t *testing.T) {
	s := newTestServer(t, nil)

	var view ViewResponse
	w := s.do(t, "POST", "/api/views", "", &view)
	require.Equal(t, http.StatusCreated, w.Code)
	require.NotEmpty(t, view.Id)
	assert.Equal(t, types.Summary{Showing: 3, Total: 3}, view.Summary)
	assert.Equal(t, types.PriceRange{Min: 10, Max: 20}, view.Bounds)
	path := "/api/views/" + view.Id

	w = s.do(t, "PATCH", path, `{"inStock":true,"outOfStock":false,"sort":"priceAsc","brands":[" "],"categories":["Hats"]}`, &view)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, types.StockInStockOnly, view.Config.Stock)
	assert.Equal(t, types.SortPriceAsc, view.Config.Sort)
	assert.ElementsMatch(t, []RejectedChange{
		{Field: "brands", Reason: "empty name"},
		{Field: "categories", Reason: "category filter is not available on this view"},
	}, view.Rejected)

	w = s.do(t, "PATCH", path, `{"priceRange":{"min":12,"max":100}}`, &view)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, view.PendingPrice)
	assert.Equal(t, types.PriceRange{Min: 12, Max: 20}, *view.PendingPrice)
	assert.Equal(t, types.PriceRange{Min: 10, Max: 20}, view.Config.Price)

	s.clock.Advance(controller.DefaultPriceDebounce)
	w = s.do(t, "GET", path+"?size=1", "", &view)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, view.PendingPrice)
	assert.Equal(t, types.PriceRange{Min: 12, Max: 20}, view.Config.Price)
	assert.Equal(t, types.Summary{Showing: 1, Total: 3}, view.Summary)
	require.NotNil(t, view.Page)
	assert.Equal(t, []types.ItemId{"3"}, ids(view.Page.Items))

	w = s.do(t, "POST", path+"/reset", "", &view)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, types.StockAny, view.Config.Stock)
	assert.Equal(t, types.Summary{Showing: 3, Total: 3}, view.Summary)

	w = s.do(t, "DELETE", path, "", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = s.do(t, "GET", path, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Zero(t, s.ws.Views.Len())
}

func TestMultiCategoryView(t *testing.T) {
	s := newTestServer(t, nil)
	var view ViewResponse
	s.do(t, "POST", "/api/views", `{"multiCategory":true}`, &view)
	require.True(t, view.MultiCategory)

	w := s.do(t, "PATCH", "/api/views/"+view.Id, `{"categories":["Hats"]}`, &view)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, view.Rejected)
	assert.Equal(t, types.Summary{Showing: 2, Total: 3}, view.Summary)
}

func TestUnknownView(t *testing.T) {
	s := newTestServer(t, nil)
	assert.Equal(t, http.StatusNotFound, s.do(t, "GET", "/api/views/not-a-uuid", "", nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, "PATCH", "/api/views/6f1c2b7e-3f43-4f7e-9c3a-2b9d3c1f0a11", `{}`, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, "DELETE", "/api/views/6f1c2b7e-3f43-4f7e-9c3a-2b9d3c1f0a11", "", nil).Code)
}

func TestViewsKeepTheirSnapshot(t *testing.T) {
	s := newTestServer(t, nil)
	var view ViewResponse
	s.do(t, "POST", "/api/views", "", &view)

	var reload ReloadResponse
	w := s.do(t, "POST", "/api/reload", "", &reload)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, uint64(2), reload.Version)
	assert.Equal(t, 2, reload.Items)

	w = s.do(t, "GET", "/api/views/"+view.Id, "", &view)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, uint64(1), view.Version)
	assert.Equal(t, 3, view.Summary.Total)
}

func TestRateLimit(t *testing.T) {
	s := newTestServer(t, rate.NewLimiter(rate.Every(time.Hour), 1))
	assert.Equal(t, http.StatusOK, s.do(t, "GET", "/api/filters", "", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, s.do(t, "GET", "/api/filters", "", nil).Code)
	assert.Equal(t, http.StatusOK, s.do(t, "GET", "/health", "", nil).Code, "health is not limited")
}

func TestSweepClosesIdleViews(t *testing.T) {
	s := newTestServer(t, nil)
	var idle, active ViewResponse
	s.do(t, "POST", "/api/views", "", &idle)
	s.do(t, "POST", "/api/views", "", &active)

	s.clock.Advance(45 * time.Minute)
	s.do(t, "GET", "/api/views/"+active.Id, "", nil)
	s.clock.Advance(30 * time.Minute)

	assert.Equal(t, 1, s.ws.Views.Sweep())
	assert.Equal(t, 1, s.ws.Views.Len())
	assert.Equal(t, http.StatusNotFound, s.do(t, "GET", "/api/views/"+idle.Id, "", nil).Code)
	assert.Equal(t, http.StatusOK, s.do(t, "GET", "/api/views/"+active.Id, "", nil).Code)
}

func TestCloseAllCancelsPendingUpdates(t *testing.T) {
	s := newTestServer(t, nil)
	var view ViewResponse
	s.do(t, "POST", "/api/views", "", &view)
	s.do(t, "PATCH", "/api/views/"+view.Id, `{"priceRange":{"min":12,"max":20}}`, nil)
	require.Equal(t, 1, s.clock.Waiting())

	require.NoError(t, s.ws.Views.CloseAll(context.Background()))
	assert.Zero(t, s.clock.Waiting())
	assert.Zero(t, s.ws.Views.Len())
}
