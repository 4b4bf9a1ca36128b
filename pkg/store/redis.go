package store

import (
	"context"

	"github.com/redis/go-redis/v9"

	"github.com/promptstack/promptstack/pkg/errors"
)

const redisStateKey = "promptstack:state"

// RedisStore keeps state in Redis so multiple server instances share the
// same working graph.
type RedisStore struct {
	client *redis.Client
	key    string
}

// RedisConfig configures the Redis connection.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int

	// Key overrides the default state key, allowing several isolated
	// workspaces on one Redis instance.
	Key string
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreUnavailable, err, "connect to redis at %s", cfg.Addr)
	}

	key := cfg.Key
	if key == "" {
		key = redisStateKey
	}
	return &RedisStore{client: client, key: key}, nil
}

func (s *RedisStore) Load(ctx context.Context) (*State, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err == redis.Nil {
		return DefaultState(), nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreUnavailable, err, "load state from redis")
	}
	return decodeState(data), nil
}

func (s *RedisStore) Save(ctx context.Context, state *State) error {
	data, err := encodeState(state)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return errors.Wrap(errors.ErrCodeStoreUnavailable, err, "save state to redis")
	}
	return nil
}

func (s *RedisStore) Reset(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return errors.Wrap(errors.ErrCodeStoreUnavailable, err, "reset state in redis")
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

var _ Store = (*RedisStore)(nil)
