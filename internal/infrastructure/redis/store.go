package redis

import (
	"context"
	"errors"

	goRedis "github.com/redis/go-redis/v9"

	"github.com/fastygo/todos/internal/config"
	"github.com/fastygo/todos/internal/infrastructure/kv"
)

const scanBatch = 100

// Store keeps each value in a plain Redis string under prefix+key.
type Store struct {
	client *goRedis.Client
	prefix string
}

var _ kv.Backend = (*Store)(nil)

// NewStore wraps client. The store takes ownership and closes it on Close.
func NewStore(client *goRedis.Client, prefix string) *Store {
	return &Store{client: client, prefix: prefix}
}

// Opener connects lazily using cfg.
func Opener(cfg config.RedisConfig) kv.Opener {
	return func(ctx context.Context) (kv.Backend, error) {
		client, err := NewClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return NewStore(client, cfg.Prefix), nil
	}
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, goRedis.Nil) {
		return nil, kv.ErrNotFound
	}
	return value, err
}

func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	return s.client.Set(ctx, s.prefix+key, value, 0).Err()
}

func (s *Store) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.prefix+key).Err()
}

// Usage sums STRLEN over every key under the prefix.
func (s *Store) Usage(ctx context.Context) (int64, error) {
	var (
		total  int64
		cursor uint64
	)
	for {
		keys, next, err := s.client.Scan(ctx, cursor, s.prefix+"*", scanBatch).Result()
		if err != nil {
			return 0, err
		}
		if len(keys) > 0 {
			pipe := s.client.Pipeline()
			lens := make([]*goRedis.IntCmd, len(keys))
			for i, k := range keys {
				lens[i] = pipe.StrLen(ctx, k)
			}
			if _, err := pipe.Exec(ctx); err != nil {
				return 0, err
			}
			for _, cmd := range lens {
				total += cmd.Val()
			}
		}
		cursor = next
		if cursor == 0 {
			return total, nil
		}
	}
}

func (s *Store) Close() error {
	return s.client.Close()
}
