package cache

import (
	"context"
	"fmt"
	"log"
	"net"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient connects the optional list-cache / rate-limiter
// backend. The app runs fine without it; callers treat a nil client as
// "caching disabled". Timeouts are short; every caller has an uncached
// fallback path.
func NewRedisClient(host, port, password string, dbIndex int) (*redis.Client, error) {
	addr := net.JoinHostPort(host, port)

	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           dbIndex,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}

	return rdb, nil
}

// MaybeConnect returns nil when no redis host is configured or the
// connection fails; the caller degrades to the uncached path.
func MaybeConnect(host, port, password string) *redis.Client {
	if host == "" {
		return nil
	}

	rdb, err := NewRedisClient(host, port, password, 0)
	if err != nil {
		log.Printf("Redis unavailable, running without cache: %v", err)
		return nil
	}

	log.Println("Redis connected, observation list cache enabled.")
	return rdb
}
