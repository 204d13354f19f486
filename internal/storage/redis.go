package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisKV はRedisに保存するKV実装。
// ttlが正の場合は保存のたびに有効期限を更新する。期限切れの削除はRedisに任せる。
type RedisKV struct {
	client *redis.Client
	ttl    time.Duration
}

var _ Store = (*RedisKV)(nil)

// NewRedisKV は既存のクライアントからRedisKVを生成する。
func NewRedisKV(client *redis.Client, ttl time.Duration) *RedisKV {
	return &RedisKV{client: client, ttl: ttl}
}

// OpenRedis はredis://形式のURLからRedisKVを生成する。
func OpenRedis(redisURL string, ttl time.Duration) (*RedisKV, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	return NewRedisKV(redis.NewClient(opts), ttl), nil
}

// Load はスナップショットを取得する。
func (r *RedisKV) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	return data, nil
}

// Save はスナップショットを保存する。
func (r *RedisKV) Save(ctx context.Context, key string, data []byte) error {
	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// Ping はRedisへの疎通を確認する。
func (r *RedisKV) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close はクライアントを閉じる。
func (r *RedisKV) Close() error {
	return r.client.Close()
}
