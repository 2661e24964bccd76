package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// DefaultRedisKey is where the history list is stored
const DefaultRedisKey = "nutricalc:history"

// redisClient is the subset of redis commands the store uses
type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// RedisStore keeps the history under a single redis key
type RedisStore struct {
	client redisClient
	conn   *redis.Client
	key    string
	logger *zap.Logger
}

// NewRedisStore connects to redisURL (redis://host:port/db) and checks the connection
func NewRedisStore(ctx context.Context, redisURL, key string, logger *zap.Logger) (*RedisStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	store := newRedisStore(client, key, logger)
	store.conn = client
	return store, nil
}

func newRedisStore(client redisClient, key string, logger *zap.Logger) *RedisStore {
	if key == "" {
		key = DefaultRedisKey
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisStore{client: client, key: key, logger: logger}
}

// Load reads the history. A missing key is an empty history.
func (s *RedisStore) Load(ctx context.Context) ([]string, error) {
	raw, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to get history: %w", err)
	}

	return decode(raw, "redis:"+s.key, s.logger), nil
}

// Save replaces the stored history
func (s *RedisStore) Save(ctx context.Context, history []string) error {
	data, err := encode(history)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}

	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to set history: %w", err)
	}
	return nil
}

// Close releases the redis connection
func (s *RedisStore) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}
