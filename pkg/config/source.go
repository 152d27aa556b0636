package config

import (
	"github.com/matst80/slask-catalog/pkg/storage"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Source picks redis when a redis url is configured, the data folder
// otherwise.
func (c Config) Source() storage.Source {
	if c.RedisUrl != "" {
		return storage.NewRedisStorage(c.RedisUrl, c.RedisPassword, c.RedisDb, c.RedisKey)
	}
	return storage.NewDiskStorage(c.Country, c.DataDir)
}

func (c Config) Logger() (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if c.Debug {
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return zc.Build()
}
