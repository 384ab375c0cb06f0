package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore is the canonical Store. Records are JSON blobs under a
// key prefix; Redis's own TTL sweep is the expiry mechanism, so Get
// rarely sees an expired record, but the check stays for clock skew
// between us and the server.
type RedisStore struct {
	client      *redis.Client
	prefix      string
	lifetime    time.Duration
	touchWindow time.Duration
	now         func() time.Time
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client:      client,
		prefix:      "session:",
		lifetime:    Lifetime,
		touchWindow: TouchWindow,
		now:         time.Now,
	}
}

func (r *RedisStore) key(id string) string {
	return r.prefix + id
}

func (r *RedisStore) Create(ctx context.Context, rec Record) error {
	if rec.ID == "" {
		return fmt.Errorf("session: missing session id")
	}

	ttl := rec.ExpiresAt.Sub(r.now())
	if ttl <= 0 {
		return fmt.Errorf("session: expires_at must be in the future")
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("session: failed to marshal: %w", err)
	}

	if err := r.client.Set(ctx, r.key(rec.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (r *RedisStore) Get(ctx context.Context, id string) (*Record, error) {
	val, err := r.client.Get(ctx, r.key(id)).Result()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var rec Record
	if err := json.Unmarshal([]byte(val), &rec); err != nil {
		return nil, fmt.Errorf("session: failed to unmarshal: %w", err)
	}

	if rec.Expired(r.now()) {
		return nil, ErrNotFound
	}

	return &rec, nil
}

func (r *RedisStore) Save(ctx context.Context, rec Record) error {
	if rec.ID == "" {
		return fmt.Errorf("session: missing session id")
	}

	ttl := rec.ExpiresAt.Sub(r.now())
	if ttl <= 0 {
		// Expired while the request held it; drop instead of extending.
		return r.Delete(ctx, rec.ID)
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("session: failed to marshal: %w", err)
	}

	if err := r.client.Set(ctx, r.key(rec.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (r *RedisStore) Touch(ctx context.Context, id string) error {
	rec, err := r.Get(ctx, id)
	if err != nil {
		return err
	}

	now := r.now()
	if now.Sub(rec.LastTouchedAt) <= r.touchWindow {
		return nil
	}

	if extended := now.Add(r.lifetime); extended.After(rec.ExpiresAt) {
		rec.ExpiresAt = extended
	}
	rec.LastTouchedAt = now

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("session: failed to marshal: %w", err)
	}

	if err := r.client.Set(ctx, r.key(id), data, rec.ExpiresAt.Sub(now)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, r.key(id)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}
