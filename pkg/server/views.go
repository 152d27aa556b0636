package server

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/matst80/slask-catalog/pkg/controller"
	"github.com/matst80/slask-catalog/pkg/index"
	"github.com/matst80/slask-catalog/pkg/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

var (
	openViews = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "slaskcatalog_views",
		Help: "The number of mounted filter views",
	})
	noExpired = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slaskcatalog_views_expired_total",
		Help: "The total number of views closed for being idle",
	})
)

// View is one mounted filter controller and the latest result it published.
type View struct {
	Id            uuid.UUID
	Version       uint64
	MultiCategory bool
	Controller    *controller.FilterController

	mu       sync.Mutex
	latest   []*types.CatalogItem
	updates  uint64
	lastSeen time.Time
}

func (v *View) onResult(result []*types.CatalogItem) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.latest = result
	v.updates++
}

// Latest returns the last published result and how many results the view
// has seen so far.
func (v *View) Latest() ([]*types.CatalogItem, uint64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.latest, v.updates
}

func (v *View) touch(now time.Time) {
	v.mu.Lock()
	v.lastSeen = now
	v.mu.Unlock()
}

func (v *View) idleSince() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.lastSeen
}

type ViewRegistry struct {
	mu    sync.RWMutex
	views map[uuid.UUID]*View
	ttl   time.Duration
	opts  controller.Options
	now   func() time.Time
}

// NewViewRegistry creates a registry whose views are built with opts. A ttl
// of zero keeps views until they are unmounted.
func NewViewRegistry(ttl time.Duration, opts controller.Options) *ViewRegistry {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	now := time.Now
	if nc, ok := opts.Clock.(interface{ Now() time.Time }); ok {
		now = nc.Now
	}
	return &ViewRegistry{
		views: make(map[uuid.UUID]*View),
		ttl:   ttl,
		opts:  opts,
		now:   now,
	}
}

// Mount creates a controller over the items of snapshot.
func (r *ViewRegistry) Mount(snapshot *index.Snapshot, multiCategory bool) *View {
	opts := r.opts
	opts.MultiCategory = multiCategory
	id := uuid.New()
	opts.Logger = r.opts.Logger.With(zap.String("view", id.String()))

	view := &View{
		Id:            id,
		Version:       snapshot.Version,
		MultiCategory: multiCategory,
		Controller:    controller.New(snapshot.Items, opts),
		lastSeen:      r.now(),
	}
	view.Controller.OnResultChange(view.onResult)

	r.mu.Lock()
	r.views[id] = view
	openViews.Set(float64(len(r.views)))
	r.mu.Unlock()
	return view
}

// Get looks up a view and marks it as used.
func (r *ViewRegistry) Get(id string) (*View, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, types.ErrUnknownView
	}
	r.mu.RLock()
	view, ok := r.views[parsed]
	r.mu.RUnlock()
	if !ok {
		return nil, types.ErrUnknownView
	}
	view.touch(r.now())
	return view, nil
}

func (r *ViewRegistry) Unmount(id string) error {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return types.ErrUnknownView
	}
	r.mu.Lock()
	view, ok := r.views[parsed]
	delete(r.views, parsed)
	openViews.Set(float64(len(r.views)))
	r.mu.Unlock()
	if !ok {
		return types.ErrUnknownView
	}
	view.Controller.Close()
	return nil
}

func (r *ViewRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.views)
}

// Sweep closes views idle for longer than the ttl and returns how many went.
func (r *ViewRegistry) Sweep() int {
	if r.ttl <= 0 {
		return 0
	}
	deadline := r.now().Add(-r.ttl)
	expired := make([]*View, 0)

	r.mu.Lock()
	for id, view := range r.views {
		if view.idleSince().Before(deadline) {
			expired = append(expired, view)
			delete(r.views, id)
		}
	}
	openViews.Set(float64(len(r.views)))
	r.mu.Unlock()

	for _, view := range expired {
		view.Controller.Close()
	}
	if len(expired) > 0 {
		noExpired.Add(float64(len(expired)))
		r.opts.Logger.Info("closed idle views", zap.Int("count", len(expired)))
	}
	return len(expired)
}

// RunSweeper sweeps every interval until ctx is done.
func (r *ViewRegistry) RunSweeper(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			r.Sweep()
		}
	}
}

// CloseAll unmounts every view, cancelling pending price updates.
func (r *ViewRegistry) CloseAll(_ context.Context) error {
	r.mu.Lock()
	views := r.views
	r.views = make(map[uuid.UUID]*View)
	openViews.Set(0)
	r.mu.Unlock()

	for _, view := range views {
		view.Controller.Close()
	}
	r.opts.Logger.Info("closed all views", zap.Int("count", len(views)))
	return nil
}
