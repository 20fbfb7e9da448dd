package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisMirror stores the mirrored document in Redis, for deployments
// where several frontend instances should share one mirror.
type RedisMirror struct {
	client *redis.Client
	prefix string
}

// NewRedisMirror connects and pings with a bounded timeout.
func NewRedisMirror(redisURL string) (*RedisMirror, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &RedisMirror{client: client, prefix: "mirror:"}, nil
}

// NewRedisMirrorWithClient wraps an existing Redis client.
func NewRedisMirrorWithClient(client *redis.Client) *RedisMirror {
	return &RedisMirror{client: client, prefix: "mirror:"}
}

func (m *RedisMirror) key(key string) string {
	return m.prefix + key
}

func (m *RedisMirror) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := m.client.Get(ctx, m.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMirrorMiss
	}
	if err != nil {
		return nil, fmt.Errorf("read mirror key %s: %w", key, err)
	}
	return data, nil
}

func (m *RedisMirror) Set(ctx context.Context, key string, data []byte) error {
	if err := m.client.Set(ctx, m.key(key), data, 0).Err(); err != nil {
		return fmt.Errorf("write mirror key %s: %w", key, err)
	}
	return nil
}

func (m *RedisMirror) Close() error {
	return m.client.Close()
}
