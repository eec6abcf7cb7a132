// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package redis provides a managed client for volatile data storage.

Bookhub is stateless with respect to identity (tokens are never stored), so
Redis only coordinates background work between replicas: [Lock] is a
SET NX lease with a TTL, released only by the holder that acquired it.
*/
package redis

import (
	stdctx "context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/bookhub/pkg/uuid"
)

// Default timeouts for Redis operations.
const (
	dialTimeout  = 3 * time.Second
	readTimeout  = 2 * time.Second
	writeTimeout = 2 * time.Second
	pingTimeout  = 2 * time.Second
)

// NewClient parses a Redis URL and returns a ready-to-use client.
//
// # Parameters
//   - context: Context for the initial ping.
//   - redisURL: Redis connection URL.
//   - logger: Structured logger for connection events.
func NewClient(context stdctx.Context, redisURL string, logger *slog.Logger) (*redis.Client, error) {
	options, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis: invalid URL: %w", err)
	}

	// Pool configuration Tuning
	options.PoolSize = 4
	options.MinIdleConns = 1
	options.MaxIdleConns = 2

	options.DialTimeout = dialTimeout
	options.ReadTimeout = readTimeout
	options.WriteTimeout = writeTimeout

	client := redis.NewClient(options)

	// Validate connectivity immediately at startup.
	if err := Ping(context, client); err != nil {
		_ = client.Close()
		return nil, err
	}

	logger.Info("redis client connected",
		slog.String("addr", options.Addr),
		slog.Int("pool_size", options.PoolSize),
	)

	return client, nil
}

// Ping verifies that the Redis client is healthy.
func Ping(context stdctx.Context, client *redis.Client) error {
	pingCtx, cancel := stdctx.WithTimeout(context, pingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("redis: ping failed: %w", err)
	}

	return nil
}

// # Distributed Lock

// releaseScript deletes the key only when it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Lock is a best-effort mutual exclusion lease shared across replicas.
type Lock struct {
	client redis.UniversalClient
	key    string
	ttl    time.Duration
}

// NewLock creates a lock on key. The lease expires after ttl even if never released.
func NewLock(client redis.UniversalClient, key string, ttl time.Duration) *Lock {
	return &Lock{client: client, key: key, ttl: ttl}
}

// Acquire tries to take the lease once.
//
// # Returns
//   - release: Call to free the lease early. Nil when not acquired.
//   - acquired: False when another holder owns the lease.
func (lock *Lock) Acquire(context stdctx.Context) (release func(stdctx.Context) error, acquired bool, err error) {
	token := uuid.New()

	acquired, err = lock.client.SetNX(context, lock.key, token, lock.ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("redis: lock %s failed: %w", lock.key, err)
	}
	if !acquired {
		return nil, false, nil
	}

	release = func(context stdctx.Context) error {
		if err := releaseScript.Run(context, lock.client, []string{lock.key}, token).Err(); err != nil {
			return fmt.Errorf("redis: unlock %s failed: %w", lock.key, err)
		}
		return nil
	}
	return release, true, nil
}
