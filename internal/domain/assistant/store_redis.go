package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps sessions in Redis so chat state survives restarts and is
// shared across instances. Saves refresh the TTL, giving sliding expiry.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

func sessionKey(id string) string { return "assistant:session:" + id }

func (r *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	raw, err := r.client.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return &Session{History: []Message{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session get: %w", err)
	}
	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("session decode: %w", err)
	}
	return &s, nil
}

func (r *RedisStore) Save(ctx context.Context, id string, s *Session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("session encode: %w", err)
	}
	if err := r.client.Set(ctx, sessionKey(id), raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("session save: %w", err)
	}
	return nil
}
