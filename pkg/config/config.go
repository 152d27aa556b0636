// Package config reads service settings from the environment and an
// optional .env file.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/matst80/slask-catalog/pkg/common"
	"github.com/matst80/slask-catalog/pkg/controller"
)

type Config struct {
	ListenAddress string
	Country       string
	DataDir       string
	RedisUrl      string
	RedisPassword string
	RedisDb       int
	RedisKey      string
	RabbitUrl     string
	TopicPrefix   string
	PriceDebounce time.Duration
	ViewTTL       time.Duration
	RateLimit     float64
	RateBurst     int
	Timeouts      common.TimeoutConfig
	Debug         bool
}

func Default() Config {
	return Config{
		ListenAddress: ":8080",
		Country:       "se",
		DataDir:       "data",
		PriceDebounce: controller.DefaultPriceDebounce,
		ViewTTL:       30 * time.Minute,
		RateLimit:     200,
		RateBurst:     400,
		Timeouts:      common.DefaultTimeouts,
	}
}

// Load reads the given .env files (".env" when none are given) and then the
// process environment. Missing files are ignored.
func Load(files ...string) Config {
	_ = godotenv.Load(files...)
	return FromEnv(os.LookupEnv)
}

func FromEnv(lookup func(string) (string, bool)) Config {
	cfg := Default()
	str := func(curr *string, env string) {
		if v, ok := lookup(env); ok && v != "" {
			*curr = v
		}
	}
	integer := func(curr *int, env string) {
		if v, ok := lookup(env); ok {
			if n, err := strconv.Atoi(v); err == nil && n >= 0 {
				*curr = n
			}
		}
	}
	float := func(curr *float64, env string) {
		if v, ok := lookup(env); ok {
			if n, err := strconv.ParseFloat(v, 64); err == nil && n > 0 {
				*curr = n
			}
		}
	}
	duration := func(curr *time.Duration, env string, unit time.Duration) {
		if v, ok := lookup(env); ok {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				*curr = time.Duration(n) * unit
			}
		}
	}

	str(&cfg.ListenAddress, "LISTEN_ADDRESS")
	str(&cfg.Country, "COUNTRY")
	str(&cfg.DataDir, "DATA_DIR")
	str(&cfg.RedisUrl, "REDIS_URL")
	str(&cfg.RedisPassword, "REDIS_PASSWORD")
	integer(&cfg.RedisDb, "REDIS_DB")
	str(&cfg.RedisKey, "REDIS_KEY")
	str(&cfg.RabbitUrl, "RABBIT_URL")
	str(&cfg.TopicPrefix, "TOPIC_PREFIX")
	duration(&cfg.PriceDebounce, "PRICE_DEBOUNCE_MS", time.Millisecond)
	duration(&cfg.ViewTTL, "VIEW_TTL_SECONDS", time.Second)
	float(&cfg.RateLimit, "RATE_LIMIT")
	integer(&cfg.RateBurst, "RATE_BURST")
	duration(&cfg.Timeouts.Shutdown, "SHUTDOWN_TIMEOUT", time.Second)
	duration(&cfg.Timeouts.Hook, "HOOK_TIMEOUT", time.Second)
	if v, ok := lookup("DEBUG"); ok {
		cfg.Debug, _ = strconv.ParseBool(v)
	}
	if cfg.TopicPrefix == "" {
		cfg.TopicPrefix = cfg.Country
	}
	return cfg
}
