package config

// Redis backs the response cache, the rate limiter and the scheduler's run
// locks. When it cannot be reached at startup the constructor returns nil
// and each of those degrades: no caching, no limiting, local-only locks.

import (
	"context"
	"crypto/tls"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/vacation-rental/internal/applog"
)

// NewRedisClient builds a client from the environment:
//
//	REDIS_HOST and REDIS_PORT   host and port of the server
//	REDIS_ADDR                  host:port shorthand, used when host/port are unset
//	REDIS_PASSWORD              optional password
//	REDIS_DB                    database number (default 0)
//	REDIS_TLS                   "true" or "1" enables TLS
func NewRedisClient() *redis.Client {
	addr := os.Getenv("REDIS_ADDR")
	if host, port := os.Getenv("REDIS_HOST"), os.Getenv("REDIS_PORT"); host != "" && port != "" {
		addr = host + ":" + port
	}
	if addr == "" {
		addr = "localhost:6379"
	}
	dbNum := 0
	if n, err := strconv.Atoi(os.Getenv("REDIS_DB")); err == nil {
		dbNum = n
	}
	var tlsConf *tls.Config
	if v := os.Getenv("REDIS_TLS"); strings.EqualFold(v, "true") || v == "1" {
		tlsConf = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(&redis.Options{
		Addr:      addr,
		Password:  os.Getenv("REDIS_PASSWORD"),
		DB:        dbNum,
		TLSConfig: tlsConf,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		applog.Warn("redis unavailable, cache, rate limit and distributed locks disabled", "addr", addr, "err", err)
		_ = client.Close()
		return nil
	}
	return client
}
