package store

import (
	"context"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"GoldGrid/internal/model"
)

// RedisConfig configures the Redis snapshot store.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Key      string
}

// RedisStore keeps the document under a single Redis key.
type RedisStore struct {
	client *goredis.Client
	key    string
}

// NewRedisStore connects to Redis and pings the server.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, errors.Wrap(err, "redis ping")
	}

	log.Info().Str("addr", cfg.Addr).Str("key", cfg.Key).Msg("redis store connected")
	return NewRedisStoreWithClient(client, cfg.Key), nil
}

// NewRedisStoreWithClient wraps an existing client.
func NewRedisStoreWithClient(client *goredis.Client, key string) *RedisStore {
	return &RedisStore{client: client, key: key}
}

// Load reads the document; a missing key loads as an empty portfolio.
func (s *RedisStore) Load(ctx context.Context) (model.Portfolio, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err == goredis.Nil {
		return model.NewPortfolio(), nil
	}
	if err != nil {
		return model.Portfolio{}, errors.Wrapf(err, "redis get %s", s.key)
	}
	return Decode(data)
}

// Save overwrites the key with the full document.
func (s *RedisStore) Save(ctx context.Context, p model.Portfolio) error {
	data, err := Encode(p)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return errors.Wrapf(err, "redis set %s", s.key)
	}
	return nil
}

// Close releases the connection pool.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
