package shared

import (
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv       string
	HTTPAddr     string
	MetricsAddr  string
	MySQLDSN     string
	RedisAddr    string
	RedisDB      int
	RedisPass    string
	CacheTTL     time.Duration
	SyncInterval time.Duration // recurring feed re-import period
	SyncHorizon  time.Duration // how far ahead recurring events expand
	FeedRPS      int
	Workers      int // concurrent properties during the startup sweep
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	c := Config{
		AppEnv:       env("APP_ENV", "prod"),
		HTTPAddr:     env("HTTP_ADDR", ":8080"),
		MetricsAddr:  env("METRICS_ADDR", ":9100"),
		MySQLDSN:     env("MYSQL_DSN", "root:root@tcp(localhost:3306)/holydeo?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:    env("REDIS_ADDR", "localhost:6379"),
		RedisPass:    env("REDIS_PASSWORD", ""),
		RedisDB:      atoi("REDIS_DB", 0),
		CacheTTL:     time.Duration(atoi("CACHE_TTL_SECONDS", 900)) * time.Second,
		SyncInterval: time.Duration(atoi("SYNC_INTERVAL_MINUTES", 20)) * time.Minute,
		SyncHorizon:  time.Duration(atoi("SYNC_HORIZON_DAYS", 730)) * 24 * time.Hour,
		FeedRPS:      atoi("FEED_RPS", 5),
		Workers:      atoi("SYNC_WORKERS", 8),
	}
	if c.SyncInterval < time.Minute {
		log.Warn().Dur("interval", c.SyncInterval).Msg("SYNC_INTERVAL_MINUTES very low; feeds will be polled aggressively")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
