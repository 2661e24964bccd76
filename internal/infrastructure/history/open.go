package history

import (
	"context"
	"fmt"

	"github.com/nutricalc/backend/internal/domain"
	"go.uber.org/zap"
)

// Store kinds accepted by Open
const (
	KindFile  = "file"
	KindRedis = "redis"
)

// Options selects and configures a history store
type Options struct {
	Kind     string
	Path     string
	RedisURL string
	RedisKey string
}

// Open builds the configured store. The returned close func releases its connection.
func Open(ctx context.Context, opts Options, logger *zap.Logger) (domain.HistoryStore, func() error, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch opts.Kind {
	case KindRedis:
		store, err := NewRedisStore(ctx, opts.RedisURL, opts.RedisKey, logger)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	case KindFile, "":
		store := NewFileStore(opts.Path, logger)
		logger.Info("using file history store", zap.String("path", store.Path()))
		return store, func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unknown history store %q", opts.Kind)
	}
}
