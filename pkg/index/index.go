package index

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/matst80/slask-catalog/pkg/catalog"
	"github.com/matst80/slask-catalog/pkg/storage"
	"github.com/matst80/slask-catalog/pkg/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

var (
	totalItems = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "slaskcatalog_items",
		Help: "The number of items in the current catalog snapshot",
	})
	noReplaces = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slaskcatalog_snapshot_replaces_total",
		Help: "The total number of catalog snapshot swaps",
	})
	noSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "slaskcatalog_snapshot_skipped_items_total",
		Help: "The total number of items dropped while loading snapshots",
	})
)

// Snapshot is an immutable catalog version. Views keep the snapshot they
// were mounted on.
type Snapshot struct {
	Items    []*types.CatalogItem
	Version  uint64
	Metadata types.FilterMetadata
	LoadedAt time.Time
}

type CatalogIndex struct {
	current atomic.Pointer[Snapshot]
	version atomic.Uint64
	logger  *zap.Logger
}

func NewCatalogIndex(logger *zap.Logger) *CatalogIndex {
	if logger == nil {
		logger = zap.NewNop()
	}
	idx := &CatalogIndex{logger: logger}
	idx.current.Store(&Snapshot{
		Items:    []*types.CatalogItem{},
		Metadata: catalog.BuildMetadata(nil),
		LoadedAt: time.Now(),
	})
	return idx
}

func (i *CatalogIndex) Snapshot() *Snapshot {
	return i.current.Load()
}

func (i *CatalogIndex) Items() []*types.CatalogItem {
	return i.current.Load().Items
}

func (i *CatalogIndex) Version() uint64 {
	return i.current.Load().Version
}

// Replace validates items and swaps them in as the new snapshot.
func (i *CatalogIndex) Replace(items []*types.CatalogItem) *Snapshot {
	clean := SanitizeItems(items, i.logger)
	skipped := len(items) - len(clean)
	if skipped > 0 {
		noSkipped.Add(float64(skipped))
	}
	snapshot := &Snapshot{
		Items:    clean,
		Version:  i.version.Add(1),
		Metadata: catalog.BuildMetadata(clean),
		LoadedAt: time.Now(),
	}
	i.current.Store(snapshot)
	totalItems.Set(float64(len(clean)))
	noReplaces.Inc()
	i.logger.Info("catalog snapshot replaced",
		zap.Uint64("version", snapshot.Version),
		zap.Int("items", len(clean)),
		zap.Int("skipped", skipped))
	return snapshot
}

func (i *CatalogIndex) Reload(ctx context.Context, source storage.Source) (*Snapshot, error) {
	items, err := source.LoadItems(ctx)
	if err != nil {
		return nil, err
	}
	return i.Replace(items), nil
}

// SanitizeItems drops items that break the data source contract and
// duplicate ids, keeping the first occurrence.
func SanitizeItems(items []*types.CatalogItem, logger *zap.Logger) []*types.CatalogItem {
	seen := make(map[types.ItemId]struct{}, len(items))
	ret := make([]*types.CatalogItem, 0, len(items))
	for pos, item := range items {
		if item == nil {
			logger.Warn("skipping empty catalog entry", zap.Int("position", pos))
			continue
		}
		if err := item.Validate(); err != nil {
			logger.Warn("skipping invalid catalog item", zap.String("id", string(item.Id)), zap.Error(err))
			continue
		}
		if _, ok := seen[item.Id]; ok {
			logger.Warn("skipping duplicate catalog item", zap.String("id", string(item.Id)))
			continue
		}
		seen[item.Id] = struct{}{}
		ret = append(ret, item)
	}
	return ret
}
