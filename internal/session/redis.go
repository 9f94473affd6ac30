package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	commonErrors "github.com/johnny-stegall/Digital-Assistant/internal/common/errors"
)

const redisKeyPrefix = "session:"

// RedisStore persists sessions in Redis so multiple assistant
// instances can serve the same conversation. Sessions expire after
// TTL of inactivity; every save refreshes the clock.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (r *RedisStore) Get(ctx context.Context, conversationID string) (*SearchSession, error) {
	raw, err := r.client.Get(ctx, redisKeyPrefix+conversationID).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, commonErrors.NewProviderFailure("redis", err)
	}

	var sess SearchSession
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, commonErrors.NewProviderFailure("redis",
			fmt.Errorf("corrupt session %s: %w", conversationID, err))
	}
	return &sess, nil
}

func (r *RedisStore) Save(ctx context.Context, conversationID string, sess *SearchSession) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return commonErrors.NewProviderFailure("redis", err)
	}
	if err := r.client.Set(ctx, redisKeyPrefix+conversationID, raw, r.ttl).Err(); err != nil {
		return commonErrors.NewProviderFailure("redis", err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, conversationID string) error {
	if err := r.client.Del(ctx, redisKeyPrefix+conversationID).Err(); err != nil {
		return commonErrors.NewProviderFailure("redis", err)
	}
	return nil
}
