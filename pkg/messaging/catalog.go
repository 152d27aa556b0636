package messaging

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/matst80/slask-catalog/pkg/common/jsoncompat"
	"github.com/matst80/slask-catalog/pkg/index"
	"github.com/matst80/slask-catalog/pkg/storage"
	"github.com/matst80/slask-catalog/pkg/types"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const reloadTimeout = 30 * time.Second

type CatalogUpdater interface {
	Replace(items []*types.CatalogItem) *index.Snapshot
	Reload(ctx context.Context, source storage.Source) (*index.Snapshot, error)
}

// HandleCatalogChange applies one catalog_changed message. A body with items
// replaces the snapshot, an empty body reloads it from source.
func HandleCatalogChange(ctx context.Context, body []byte, idx CatalogUpdater, source storage.Source) (*index.Snapshot, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		if source == nil {
			return nil, fmt.Errorf("reload requested but no catalog source configured")
		}
		return idx.Reload(ctx, source)
	}
	var items []*types.CatalogItem
	if err := jsoncompat.Unmarshal(trimmed, &items); err != nil {
		return nil, fmt.Errorf("decode catalog change: %w", err)
	}
	return idx.Replace(items), nil
}

// ConnectCatalogChanges keeps idx in sync with catalog_changed messages.
func ConnectCatalogChanges(conn *amqp.Connection, prefix string, idx CatalogUpdater, source storage.Source, logger *zap.Logger) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	return ListenToTopic(ch, prefix, CatalogChanged, logger, func(d amqp.Delivery) error {
		ctx, cancel := context.WithTimeout(context.Background(), reloadTimeout)
		defer cancel()
		snapshot, err := HandleCatalogChange(ctx, d.Body, idx, source)
		if err != nil {
			return err
		}
		logger.Info("applied catalog change", zap.Uint64("version", snapshot.Version), zap.Int("items", len(snapshot.Items)))
		return nil
	})
}
