// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// query.go provides the Valkey-backed query-result cache. Serialized
// list and detail responses are stored under their query fingerprint
// so repeated queries skip the database entirely. There is no explicit
// invalidation on write: staleness up to the TTL is the accepted
// tradeoff for a read-heavy, append-mostly content API.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

const (
	// queryKeyPrefix namespaces query-result keys in Valkey.
	queryKeyPrefix = "query:"

	// DefaultQueryTTL is how long a cached query result stays valid.
	DefaultQueryTTL = 5 * time.Minute
)

// QueryCache stores serialized query results in Valkey keyed by a
// canonical query fingerprint. All errors degrade to a miss: a cache
// outage must never fail a read request.
type QueryCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewQueryCache creates a query cache backed by the given Valkey client.
func NewQueryCache(client *redis.Client, ttl time.Duration) *QueryCache {
	if ttl == 0 {
		ttl = DefaultQueryTTL
	}
	return &QueryCache{client: client, ttl: ttl}
}

// Get retrieves the cached payload for a fingerprint. Returns false on
// miss or on any cache error.
func (qc *QueryCache) Get(ctx context.Context, fingerprint string) ([]byte, bool) {
	val, err := qc.client.Get(ctx, queryKeyPrefix+fingerprint).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("query cache get error", "fingerprint", fingerprint, "error", err)
		return nil, false
	}
	slog.Debug("query cache hit", "fingerprint", fingerprint)
	return val, true
}

// Set stores a payload for a fingerprint with the configured TTL.
// Failures are logged and swallowed.
func (qc *QueryCache) Set(ctx context.Context, fingerprint string, payload []byte) {
	if err := qc.client.Set(ctx, queryKeyPrefix+fingerprint, payload, qc.ttl).Err(); err != nil {
		slog.Warn("query cache set error", "fingerprint", fingerprint, "error", err)
	}
}

// GetJSON retrieves and decodes a cached value into dst. Returns false
// on miss; a corrupt payload is treated as a miss as well.
func (qc *QueryCache) GetJSON(ctx context.Context, fingerprint string, dst any) bool {
	payload, ok := qc.Get(ctx, fingerprint)
	if !ok {
		return false
	}
	if err := json.Unmarshal(payload, dst); err != nil {
		slog.Warn("query cache decode error", "fingerprint", fingerprint, "error", err)
		return false
	}
	return true
}

// SetJSON encodes and stores a value under a fingerprint.
func (qc *QueryCache) SetJSON(ctx context.Context, fingerprint string, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		slog.Warn("query cache encode error", "fingerprint", fingerprint, "error", err)
		return
	}
	qc.Set(ctx, fingerprint, payload)
}

// String is used in startup logging.
func (qc *QueryCache) String() string {
	return fmt.Sprintf("QueryCache(ttl=%s)", qc.ttl)
}
