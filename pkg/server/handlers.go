package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/matst80/slask-catalog/pkg/catalog"
	"github.com/matst80/slask-catalog/pkg/types"
	"go.uber.org/zap"
)

// Items runs a stateless filter request against the current snapshot.
func (ws *WebServer) Items(w http.ResponseWriter, r *http.Request, enc *json.Encoder) error {
	req, err := types.GetFilterRequest(r)
	if err != nil {
		return err
	}
	snapshot := ws.Index.Snapshot()
	config, err := req.ToConfig(snapshot.Items)
	if err != nil {
		return err
	}
	result, err := catalog.Apply(snapshot.Items, &config)
	if err != nil {
		return err
	}
	w.Header().Set("Cache-Control", "private, max-age=60")
	return enc.Encode(ItemsResponse{
		Page:    catalog.Paginate(result, req.Page, req.PageSize),
		Config:  config,
		Version: snapshot.Version,
	})
}

func (ws *WebServer) Filters(w http.ResponseWriter, r *http.Request, enc *json.Encoder) error {
	w.Header().Set("Cache-Control", "public, max-age=300")
	return enc.Encode(ws.Index.Snapshot().Metadata)
}

func (ws *WebServer) MountView(w http.ResponseWriter, r *http.Request, enc *json.Encoder) error {
	var req MountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		return &types.ValidationError{Field: "body", Reason: err.Error()}
	}
	view := ws.Views.Mount(ws.Index.Snapshot(), req.MultiCategory)
	ws.Logger.Debug("view mounted", zap.Stringer("view", view.Id), zap.Uint64("version", view.Version))
	w.WriteHeader(http.StatusCreated)
	return enc.Encode(describe(view, nil))
}

func (ws *WebServer) GetView(w http.ResponseWriter, r *http.Request, enc *json.Encoder) error {
	view, err := ws.Views.Get(r.PathValue("id"))
	if err != nil {
		return err
	}
	page := PageRequest{PageSize: types.DefaultPageSize}
	if err = types.DecodeQuery(&page, r.URL.Query()); err != nil {
		return err
	}
	page.Page = min(max(page.Page, 0), types.MaxPage)
	page.PageSize = min(max(page.PageSize, 1), types.MaxPageSize)

	resp := describe(view, nil)
	result, _ := view.Latest()
	paged := catalog.Paginate(result, page.Page, page.PageSize)
	resp.Page = &paged
	return enc.Encode(resp)
}

// PatchView applies every control in the patch independently. Rejected
// controls keep their previous value and are listed in the response.
func (ws *WebServer) PatchView(w http.ResponseWriter, r *http.Request, enc *json.Encoder) error {
	view, err := ws.Views.Get(r.PathValue("id"))
	if err != nil {
		return err
	}
	var patch ViewPatch
	if err = json.NewDecoder(r.Body).Decode(&patch); err != nil {
		return &types.ValidationError{Field: "body", Reason: err.Error()}
	}
	rejected, err := applyPatch(view, &patch)
	if err != nil {
		return err
	}
	return enc.Encode(describe(view, rejected))
}

func applyPatch(view *View, patch *ViewPatch) ([]RejectedChange, error) {
	ctrl := view.Controller
	rejected := make([]RejectedChange, 0)
	check := func(err error) error {
		if err == nil {
			return nil
		}
		var validation *types.ValidationError
		if errors.As(err, &validation) {
			rejected = append(rejected, RejectedChange{Field: validation.Field, Reason: validation.Reason})
			return nil
		}
		return err
	}

	steps := make([]func() error, 0, 6)
	if patch.Stock != nil {
		steps = append(steps, func() error {
			stock, err := types.ParseStockFilter(*patch.Stock)
			if err != nil {
				return err
			}
			return ctrl.SetStockFilter(stock)
		})
	} else if patch.InStock != nil || patch.OutOfStock != nil {
		inStock := patch.InStock != nil && *patch.InStock
		outOfStock := patch.OutOfStock != nil && *patch.OutOfStock
		steps = append(steps, func() error {
			return ctrl.SetStockFilter(types.StockFilterFromFlags(inStock, outOfStock))
		})
	}
	if patch.Brands != nil {
		steps = append(steps, func() error {
			return ctrl.SetBrandFilter(types.NewNameSet(patch.Brands...))
		})
	}
	if patch.Categories != nil {
		steps = append(steps, func() error {
			return ctrl.SetCategoryFilter(types.NewNameSet(patch.Categories...))
		})
	}
	if patch.MinRating != nil {
		steps = append(steps, func() error {
			return ctrl.SetMinRating(*patch.MinRating)
		})
	}
	if patch.Sort != nil {
		steps = append(steps, func() error {
			return ctrl.SetSortKey(types.SortKey(*patch.Sort))
		})
	}
	if patch.PriceRange != nil {
		steps = append(steps, func() error {
			return ctrl.SetPriceRange(*patch.PriceRange)
		})
	}

	for _, step := range steps {
		if err := check(step()); err != nil {
			return rejected, err
		}
	}
	return rejected, nil
}

func (ws *WebServer) ResetView(w http.ResponseWriter, r *http.Request, enc *json.Encoder) error {
	view, err := ws.Views.Get(r.PathValue("id"))
	if err != nil {
		return err
	}
	if err = view.Controller.Reset(); err != nil {
		return err
	}
	return enc.Encode(describe(view, nil))
}

func (ws *WebServer) UnmountView(w http.ResponseWriter, r *http.Request, enc *json.Encoder) error {
	if err := ws.Views.Unmount(r.PathValue("id")); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

// Reload pulls a fresh snapshot from the configured source. Mounted views
// keep the snapshot they were created on.
func (ws *WebServer) Reload(w http.ResponseWriter, r *http.Request, enc *json.Encoder) error {
	if ws.Source == nil {
		return errors.New("no catalog source configured")
	}
	snapshot, err := ws.Index.Reload(r.Context(), ws.Source)
	if err != nil {
		return err
	}
	return enc.Encode(ReloadResponse{Version: snapshot.Version, Items: len(snapshot.Items)})
}

func describe(view *View, rejected []RejectedChange) ViewResponse {
	ctrl := view.Controller
	_, updates := view.Latest()
	resp := ViewResponse{
		Id:            view.Id.String(),
		Version:       view.Version,
		MultiCategory: view.MultiCategory,
		Config:        ctrl.Config(),
		Bounds:        ctrl.Bounds(),
		Summary:       ctrl.Summary(),
		Updates:       updates,
		Rejected:      rejected,
	}
	if pending, ok := ctrl.PendingPriceRange(); ok {
		resp.PendingPrice = &pending
	}
	return resp
}
