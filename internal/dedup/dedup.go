// Package dedup provides a Redis-backed guard against redelivered trigger
// events. The bus delivers at least once; the guard marks an event handled
// only after its handler succeeded, so a failed or crashed handler never
// leaves a marker behind and redelivery stays possible.
package dedup

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store is the contract the event consumer uses to skip handled events.
type Store interface {
	// Seen reports whether the event id was already marked as handled by an
	// earlier delivery.
	Seen(ctx context.Context, eventID string) (bool, error)
	// MarkHandled records the event id after its handler succeeded. The
	// marker expires with the store's TTL.
	MarkHandled(ctx context.Context, eventID string) error
}

// RedisStore implements Store with a per-event key and a TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisStore creates a new Redis-backed dedup store
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		ttl:    ttl,
		prefix: "event_seen",
	}
}

func (s *RedisStore) key(eventID string) string {
	return fmt.Sprintf("%s:%s", s.prefix, eventID)
}

func (s *RedisStore) Seen(ctx context.Context, eventID string) (bool, error) {
	n, err := s.client.Exists(ctx, s.key(eventID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check event %s: %w", eventID, err)
	}
	return n > 0, nil
}

func (s *RedisStore) MarkHandled(ctx context.Context, eventID string) error {
	if err := s.client.Set(ctx, s.key(eventID), 1, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to mark event %s: %w", eventID, err)
	}
	return nil
}

// NewRedisClient connects to Redis and verifies the connection
func NewRedisClient(addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return client, nil
}
