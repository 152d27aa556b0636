package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/matst80/slask-catalog/pkg/index"
	"github.com/matst80/slask-catalog/pkg/messaging"
	"github.com/matst80/slask-catalog/pkg/storage"
	"github.com/matst80/slask-catalog/pkg/types"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	publishFile    string
	publishToRedis bool
	publishReload  bool
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Push a catalog snapshot to running services",
	Long: `Publishes a catalog_changed message. By default the items are sent in the
message body. With --reload only an empty message is sent and every service
reloads from its own source, --redis stores the snapshot in redis first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		defer logger.Sync()
		if cfg.RabbitUrl == "" {
			return errors.New("RABBIT_URL is not set")
		}
		ctx := cmd.Context()

		var items []*types.CatalogItem
		if !publishReload || publishToRedis {
			if publishFile != "" {
				items, err = loadSnapshotFile(publishFile)
			} else {
				items, err = storage.NewDiskStorage(cfg.Country, cfg.DataDir).LoadItems(ctx)
			}
			if err != nil {
				return err
			}
			items = index.SanitizeItems(items, logger)
		}

		if publishToRedis {
			if cfg.RedisUrl == "" {
				return errors.New("REDIS_URL is not set")
			}
			redisStorage := storage.NewRedisStorage(cfg.RedisUrl, cfg.RedisPassword, cfg.RedisDb, cfg.RedisKey)
			if err = saveSnapshot(ctx, redisStorage, items); err != nil {
				return err
			}
			logger.Info("stored snapshot in redis", zap.String("key", redisStorage.Key), zap.Int("items", len(items)))
		}

		conn, err := amqp.DialConfig(cfg.RabbitUrl, amqp.Config{
			Properties: amqp.NewConnectionProperties(),
		})
		if err != nil {
			return err
		}
		defer conn.Close()

		if publishReload {
			err = messaging.SendChange[[]*types.CatalogItem](ctx, conn, cfg.TopicPrefix, messaging.CatalogChanged, nil)
		} else {
			err = messaging.SendChange(ctx, conn, cfg.TopicPrefix, messaging.CatalogChanged, &items)
		}
		if err != nil {
			return err
		}
		logger.Info("published catalog change",
			zap.String("prefix", cfg.TopicPrefix),
			zap.Bool("reload", publishReload),
			zap.Int("items", len(items)))
		return nil
	},
}

func saveSnapshot(ctx context.Context, sink storage.Sink, items []*types.CatalogItem) error {
	if err := sink.SaveItems(ctx, items); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

func init() {
	f := publishCmd.Flags()
	f.StringVar(&publishFile, "file", "", "snapshot file (json or json.gz), defaults to the data folder")
	f.BoolVar(&publishToRedis, "redis", false, "store the snapshot in redis before publishing")
	f.BoolVar(&publishReload, "reload", false, "send an empty message asking services to reload")
}
