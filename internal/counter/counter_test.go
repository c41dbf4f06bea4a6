// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package counter

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// testValkeyClient returns a Redis client for tests on DB 15.
// Skips if Valkey is unavailable.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")
	password := os.Getenv("VALKEY_PASSWORD")

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: password,
		DB:       15, // Use DB 15 for tests.
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping integration test: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		for _, pattern := range []string{"post:impressions:*", "category:impressions:*"} {
			keys, _ := client.Keys(ctx, pattern).Result()
			if len(keys) > 0 {
				client.Del(ctx, keys...)
			}
		}
		client.Close()
	})

	return client
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func TestKey(t *testing.T) {
	id := uuid.MustParse("a2aa1efc-5566-4ba2-8c71-d6e354a0fa5c")

	if got, want := Key(EntityPost, id), "post:impressions:a2aa1efc-5566-4ba2-8c71-d6e354a0fa5c"; got != want {
		t.Errorf("Key(post) = %q, want %q", got, want)
	}
	if got, want := Key(EntityCategory, id), "category:impressions:a2aa1efc-5566-4ba2-8c71-d6e354a0fa5c"; got != want {
		t.Errorf("Key(category) = %q, want %q", got, want)
	}
}

func TestIncrAndValue(t *testing.T) {
	client := testValkeyClient(t)
	s := NewValkeyStore(client)
	ctx := context.Background()
	id := uuid.New()

	// Missing key reads as zero.
	val, err := s.Value(ctx, EntityPost, id)
	if err != nil {
		t.Fatalf("Value: %v", err)
	}
	if val != 0 {
		t.Errorf("value before incr: got %d, want 0", val)
	}

	for _i := 0; _i < 3; _i++ {
		if err := s.Incr(ctx, EntityPost, id); err != nil {
			t.Fatalf("Incr: %v", err)
		}
	}

	val, err = s.Value(ctx, EntityPost, id)
	if err != nil {
		t.Fatalf("Value: %v", err)
	}
	if val != 3 {
		t.Errorf("value after 3 incrs: got %d, want 3", val)
	}
}

func TestIncrConcurrent(t *testing.T) {
	client := testValkeyClient(t)
	s := NewValkeyStore(client)
	ctx := context.Background()
	id := uuid.New()

	const workers = 20
	const perWorker = 10

	var wg sync.WaitGroup
	for _i := 0; _i < workers; _i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _i := 0; _i < perWorker; _i++ {
				s.Incr(ctx, EntityPost, id)
			}
		}()
	}
	wg.Wait()

	val, err := s.Value(ctx, EntityPost, id)
	if err != nil {
		t.Fatalf("Value: %v", err)
	}
	if val != workers*perWorker {
		t.Errorf("concurrent incr lost counts: got %d, want %d", val, workers*perWorker)
	}
}

func TestPendingIDs(t *testing.T) {
	client := testValkeyClient(t)
	s := NewValkeyStore(client)
	ctx := context.Background()

	postA, postB, cat := uuid.New(), uuid.New(), uuid.New()
	s.Incr(ctx, EntityPost, postA)
	s.Incr(ctx, EntityPost, postB)
	s.Incr(ctx, EntityCategory, cat)

	// A malformed key under the prefix must be skipped, not fail the scan.
	client.Set(ctx, "post:impressions:not-a-uuid", "7", 0)

	ids, err := s.PendingIDs(ctx, EntityPost)
	if err != nil {
		t.Fatalf("PendingIDs: %v", err)
	}

	found := map[uuid.UUID]bool{}
	for _, id := range ids {
		found[id] = true
	}
	if !found[postA] || !found[postB] {
		t.Errorf("pending post ids missing entries: %v", ids)
	}
	if found[cat] {
		t.Error("category id leaked into post scan")
	}
}

func TestDeleteDrainsExhaustively(t *testing.T) {
	client := testValkeyClient(t)
	s := NewValkeyStore(client)
	ctx := context.Background()
	id := uuid.New()

	for _i := 0; _i < 5; _i++ {
		s.Incr(ctx, EntityCategory, id)
	}
	if err := s.Delete(ctx, EntityCategory, id); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	val, err := s.Value(ctx, EntityCategory, id)
	if err != nil {
		t.Fatalf("Value: %v", err)
	}
	if val != 0 {
		t.Errorf("value after delete: got %d, want 0", val)
	}

	ids, err := s.PendingIDs(ctx, EntityCategory)
	if err != nil {
		t.Fatalf("PendingIDs: %v", err)
	}
	for _, pending := range ids {
		if pending == id {
			t.Error("deleted key still pending")
		}
	}
}
