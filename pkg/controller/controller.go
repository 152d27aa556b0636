// Package controller holds the filter state of one catalog view and decides
// when the filter engine runs.
//
// Discrete controls (stock, brand, category, rating, sort) recompute on the
// calling goroutine. The price range is a continuous control: updates are
// debounced on the trailing edge and only the last value of a burst is
// applied. Until it settles, the published result keeps the previous range.
package controller

import (
	"slices"
	"sync"
	"time"

	"github.com/matst80/slask-catalog/pkg/catalog"
	"github.com/matst80/slask-catalog/pkg/common"
	"github.com/matst80/slask-catalog/pkg/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

var (
	noRecomputes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "slaskcatalog_recomputes_total",
		Help: "The total number of result recomputes by trigger",
	}, []string{"trigger"})
	noSuperseded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slaskcatalog_debounce_superseded_total",
		Help: "The total number of price updates replaced before they settled",
	})
)

const DefaultPriceDebounce = 300 * time.Millisecond

const (
	triggerInitial   = "initial"
	triggerImmediate = "immediate"
	triggerDebounced = "debounced"
)

type ApplyFunc func(items []*types.CatalogItem, config *types.FilterConfig) ([]*types.CatalogItem, error)

type ResultListener func(result []*types.CatalogItem)

type Options struct {
	PriceDebounce time.Duration
	// MultiCategory enables the category filter, single category views reject it.
	MultiCategory bool
	Clock         common.Clock
	Apply         ApplyFunc
	Logger        *zap.Logger
}

type FilterController struct {
	mu            sync.Mutex
	items         []*types.CatalogItem
	bounds        types.PriceRange
	defaults      types.FilterConfig
	config        types.FilterConfig
	pendingPrice  *types.PriceRange
	multiCategory bool
	apply         ApplyFunc
	logger        *zap.Logger
	debouncer     *common.Debouncer
	listener      ResultListener
	result        []*types.CatalogItem
	seq           uint64
	closed        bool

	// deliverMu serializes listener calls; lock order is deliverMu then mu.
	deliverMu sync.Mutex
	delivered uint64
}

// New mounts a controller over items and computes the initial result. items
// is shared, never modified.
func New(items []*types.CatalogItem, opts Options) *FilterController {
	if opts.PriceDebounce <= 0 {
		opts.PriceDebounce = DefaultPriceDebounce
	}
	if opts.Apply == nil {
		opts.Apply = catalog.Apply
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	defaults := types.DefaultConfig(items)
	c := &FilterController{
		items:         items,
		bounds:        defaults.Price,
		defaults:      defaults,
		config:        defaults.Clone(),
		multiCategory: opts.MultiCategory,
		apply:         opts.Apply,
		logger:        opts.Logger,
		debouncer:     common.NewDebouncer(opts.PriceDebounce, opts.Clock),
		result:        []*types.CatalogItem{},
	}
	c.recomputeLocked(triggerInitial)
	return c
}

// recomputeLocked runs the engine on the settled config and stores the result
// under a new sequence number. It reports whether there is something to
// deliver.
func (c *FilterController) recomputeLocked(trigger string) bool {
	config := c.config
	result, err := c.apply(c.items, &config)
	noRecomputes.WithLabelValues(trigger).Inc()
	if err != nil {
		c.logger.Error("filter engine failed, keeping previous result",
			zap.String("trigger", trigger),
			zap.Any("config", config),
			zap.Error(err))
		return false
	}
	c.seq++
	c.result = result
	return true
}

// deliver publishes the newest result unless it has already been delivered.
func (c *FilterController) deliver() {
	c.deliverMu.Lock()
	defer c.deliverMu.Unlock()

	c.mu.Lock()
	seq, result, listener, closed := c.seq, c.result, c.listener, c.closed
	c.mu.Unlock()

	if closed || listener == nil || seq <= c.delivered {
		return
	}
	c.delivered = seq
	listener(result)
}

// update validates and applies a discrete change, then recomputes at once.
func (c *FilterController) update(fn func(config *types.FilterConfig) error) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return types.ErrClosed
	}
	if err := fn(&c.config); err != nil {
		c.mu.Unlock()
		c.logger.Debug("filter update rejected", zap.Error(err))
		return err
	}
	changed := c.recomputeLocked(triggerImmediate)
	c.mu.Unlock()

	if changed {
		c.deliver()
	}
	return nil
}

func (c *FilterController) SetStockFilter(stock types.StockFilter) error {
	return c.update(func(config *types.FilterConfig) error {
		if !stock.Valid() {
			return &types.ValidationError{Field: "stock", Value: stock, Reason: "expected any, inStockOnly or outOfStockOnly"}
		}
		config.Stock = stock
		return nil
	})
}

func (c *FilterController) SetBrandFilter(brands types.NameSet) error {
	return c.update(func(config *types.FilterConfig) error {
		set, err := types.NormalizeField("brands", brands.Values()...)
		if err != nil {
			return err
		}
		config.Brands = set
		return nil
	})
}

func (c *FilterController) SetCategoryFilter(categories types.NameSet) error {
	return c.update(func(config *types.FilterConfig) error {
		set, err := types.NormalizeField("categories", categories.Values()...)
		if err != nil {
			return err
		}
		if !c.multiCategory && !set.IsAll() {
			return &types.ValidationError{Field: "categories", Value: set.Values(), Reason: "category filter is not available on this view"}
		}
		config.Categories = set
		return nil
	})
}

// SetMinRating clamps rating into [0,5].
func (c *FilterController) SetMinRating(rating float64) error {
	return c.update(func(config *types.FilterConfig) error {
		clamped, err := types.ClampRating(rating)
		if err != nil {
			return err
		}
		config.MinRating = clamped
		return nil
	})
}

func (c *FilterController) SetSortKey(key types.SortKey) error {
	return c.update(func(config *types.FilterConfig) error {
		if !key.Valid() {
			return &types.ValidationError{Field: "sort", Value: key, Reason: "unknown sort key"}
		}
		config.Sort = key
		return nil
	})
}

// SetPriceRange clamps the range into the catalog bounds and schedules it.
// A range with min above max is rejected and the previous one is kept.
func (c *FilterController) SetPriceRange(requested types.PriceRange) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return types.ErrClosed
	}
	clamped, err := types.ClampPriceRange(requested, c.bounds)
	if err != nil {
		c.logger.Debug("price range rejected", zap.Error(err))
		return err
	}
	c.pendingPrice = &clamped
	if c.debouncer.Debounce(c.settlePrice) {
		noSuperseded.Inc()
	}
	return nil
}

func (c *FilterController) settlePrice() {
	c.mu.Lock()
	if c.closed || c.pendingPrice == nil {
		c.mu.Unlock()
		return
	}
	c.config.Price = *c.pendingPrice
	c.pendingPrice = nil
	changed := c.recomputeLocked(triggerDebounced)
	c.mu.Unlock()

	if changed {
		c.deliver()
	}
}

// Reset drops any pending price change and restores the defaults derived
// from the catalog at mount.
func (c *FilterController) Reset() error {
	return c.update(func(config *types.FilterConfig) error {
		c.debouncer.Cancel()
		c.pendingPrice = nil
		*config = c.defaults.Clone()
		return nil
	})
}

// OnResultChange registers the single consumer of results, replacing any
// previous one, and hands it the current result right away. The listener
// runs on the goroutine that caused the recompute (the timer goroutine for
// price changes) and must not call back into the controller synchronously.
func (c *FilterController) OnResultChange(listener ResultListener) {
	c.deliverMu.Lock()
	defer c.deliverMu.Unlock()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.listener = listener
	seq, result := c.seq, c.result
	c.mu.Unlock()

	c.delivered = seq
	if listener != nil {
		listener(result)
	}
}

// Close cancels any pending recompute and drops the listener. Setters
// return ErrClosed afterwards.
func (c *FilterController) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.listener = nil
	c.pendingPrice = nil
	c.debouncer.Cancel()
}

func (c *FilterController) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Config returns the settled configuration.
func (c *FilterController) Config() types.FilterConfig {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.config.Clone()
}

func (c *FilterController) Defaults() types.FilterConfig {
	return c.defaults.Clone()
}

func (c *FilterController) Bounds() types.PriceRange {
	return c.bounds
}

// PendingPriceRange returns the price range waiting for the debounce timer.
func (c *FilterController) PendingPriceRange() (types.PriceRange, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pendingPrice == nil {
		return types.PriceRange{}, false
	}
	return *c.pendingPrice, true
}

func (c *FilterController) Pending() bool {
	return c.debouncer.Pending()
}

func (c *FilterController) Result() []*types.CatalogItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.result)
}

func (c *FilterController) Summary() types.Summary {
	c.mu.Lock()
	defer c.mu.Unlock()
	return catalog.Summarize(c.result, c.items)
}
