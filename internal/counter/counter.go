// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package counter provides the write buffer for impression counting.
// Impressions are the highest-frequency, lowest-value event the system
// records; writing each one to PostgreSQL would cost a durable write
// per served item. Instead they accumulate in Valkey under atomic
// counters and are drained periodically by the analytics aggregator.
package counter

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// EntityType identifies which kind of entity a counter belongs to.
type EntityType string

const (
	EntityPost     EntityType = "post"
	EntityCategory EntityType = "category"
)

// Store buffers impression counts per entity. Implementations must
// make Incr atomic so concurrent request handlers never lose counts.
// The zero value of a counter is "absent": a key exists only between
// the first impression and the drain that consumes it.
type Store interface {
	// Incr adds one impression for the entity.
	Incr(ctx context.Context, entity EntityType, id uuid.UUID) error

	// PendingIDs returns the ids of all entities with buffered
	// impressions of the given type.
	PendingIDs(ctx context.Context, entity EntityType) ([]uuid.UUID, error)

	// Value reads the buffered count for an entity. Missing keys
	// read as zero.
	Value(ctx context.Context, entity EntityType, id uuid.UUID) (int64, error)

	// Delete removes the counter key. Called only after the buffered
	// value has been persisted, or when the key is stale.
	Delete(ctx context.Context, entity EntityType, id uuid.UUID) error
}

// ValkeyStore implements Store on a Valkey (Redis-compatible) client
// using INCR / SCAN / GET / DEL. Keys follow the scheme
// "<entity>:impressions:<uuid>" with string-encoded integer values.
type ValkeyStore struct {
	client *redis.Client
}

// NewValkeyStore creates a counter store backed by the given client.
func NewValkeyStore(client *redis.Client) *ValkeyStore {
	return &ValkeyStore{client: client}
}

// Key returns the Valkey key for an entity's impression counter.
func Key(entity EntityType, id uuid.UUID) string {
	return fmt.Sprintf("%s:impressions:%s", entity, id)
}

// Incr atomically increments the entity's impression counter.
func (s *ValkeyStore) Incr(ctx context.Context, entity EntityType, id uuid.UUID) error {
	if err := s.client.Incr(ctx, Key(entity, id)).Err(); err != nil {
		return fmt.Errorf("counter incr %s: %w", Key(entity, id), err)
	}
	return nil
}

// PendingIDs scans for all buffered counters of the given entity type.
// Keys whose suffix is not a valid UUID are skipped rather than
// failing the whole scan.
func (s *ValkeyStore) PendingIDs(ctx context.Context, entity EntityType) ([]uuid.UUID, error) {
	prefix := fmt.Sprintf("%s:impressions:", entity)

	var ids []uuid.UUID
	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, prefix+"*", 100).Result()
		if err != nil {
			return nil, fmt.Errorf("counter scan %s: %w", prefix, err)
		}
		for _, key := range keys {
			id, err := uuid.Parse(strings.TrimPrefix(key, prefix))
			if err != nil {
				continue
			}
			ids = append(ids, id)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return ids, nil
}

// Value reads the buffered count for an entity. A missing key is not
// an error; it reads as zero.
func (s *ValkeyStore) Value(ctx context.Context, entity EntityType, id uuid.UUID) (int64, error) {
	val, err := s.client.Get(ctx, Key(entity, id)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("counter get %s: %w", Key(entity, id), err)
	}
	return val, nil
}

// Delete removes the entity's counter key.
func (s *ValkeyStore) Delete(ctx context.Context, entity EntityType, id uuid.UUID) error {
	if err := s.client.Del(ctx, Key(entity, id)).Err(); err != nil {
		return fmt.Errorf("counter del %s: %w", Key(entity, id), err)
	}
	return nil
}
