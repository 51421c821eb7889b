package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	uploadKeyPrefix = "parley:upload:"
	defaultTTL      = 24 * time.Hour
)

// redisStore keeps uploads as JSON values with a TTL.
type redisStore struct {
	client   *redis.Client
	ttl      time.Duration
	maxBytes int64
}

func newRedisStore(client *redis.Client, ttl time.Duration, maxBytes int64) *redisStore {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &redisStore{client: client, ttl: ttl, maxBytes: maxBytes}
}

func (s *redisStore) key(id string) string {
	return uploadKeyPrefix + id
}

func (s *redisStore) Put(ctx context.Context, u Upload) (File, error) {
	f, err := newFile(u, s.maxBytes)
	if err != nil {
		return File{}, err
	}
	val, err := json.Marshal(f)
	if err != nil {
		return File{}, fmt.Errorf("encoding upload: %w", err)
	}
	if err := s.client.Set(ctx, s.key(f.ID), val, s.ttl).Err(); err != nil {
		return File{}, fmt.Errorf("storing upload: %w", err)
	}
	return f.meta(), nil
}

func (s *redisStore) Get(ctx context.Context, id string) (*File, error) {
	val, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading upload: %w", err)
	}

	var f File
	if err := json.Unmarshal(val, &f); err != nil {
		return nil, fmt.Errorf("decoding upload: %w", err)
	}
	return &f, nil
}

func (s *redisStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, s.key(id)).Err()
}

func (s *redisStore) Close() error {
	return s.client.Close()
}
