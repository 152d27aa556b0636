package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/matst80/slask-catalog/pkg/common/jsoncompat"
	"github.com/matst80/slask-catalog/pkg/types"
	"github.com/redis/go-redis/v9"
)

const DefaultRedisKey = "_catalog"

var ErrNoSnapshot = errors.New("no catalog snapshot stored")

type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

// RedisStorage keeps the catalog snapshot as a JSON document under one key.
type RedisStorage struct {
	client redisClient
	Key    string
}

func NewRedisStorage(addr, password string, db int, key string) *RedisStorage {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return newRedisStorage(rdb, key)
}

func newRedisStorage(client redisClient, key string) *RedisStorage {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisStorage{client: client, Key: key}
}

func (r *RedisStorage) LoadItems(ctx context.Context) ([]*types.CatalogItem, error) {
	data, err := r.client.Get(ctx, r.Key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w under %s", ErrNoSnapshot, r.Key)
	}
	if err != nil {
		return nil, fmt.Errorf("load catalog snapshot from redis: %w", err)
	}
	var items []*types.CatalogItem
	if err = jsoncompat.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode catalog snapshot: %w", err)
	}
	return items, nil
}

func (r *RedisStorage) SaveItems(ctx context.Context, items []*types.CatalogItem) error {
	data, err := jsoncompat.Marshal(items)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.Key, data, 0).Err()
}
