package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisStore persists session contents in Redis as JSON values under a
// global key prefix, so multiple applications can share one server.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
	log    *zap.SugaredLogger
}

// NewRedisStore creates a RedisStore. keyPrefix is a short string unique to
// the application (e.g. "MYAPP"); sessions expire after ttl without writes.
func NewRedisStore(client redis.UniversalClient, keyPrefix string, ttl time.Duration, logger *zap.SugaredLogger) *RedisStore {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &RedisStore{
		client: client,
		prefix: keyPrefix,
		ttl:    ttl,
		log:    logger.Named("session-store"),
	}
}

func (s *RedisStore) key(id string) string {
	return fmt.Sprintf("~~%s~~:session:%s", s.prefix, id)
}

// Get implements Store. A missing session yields an empty map, not an
// error.
func (s *RedisStore) Get(ctx context.Context, id string) (map[string]any, error) {
	val, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return make(map[string]any), nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading session %s: %w", id, err)
	}

	var data map[string]any
	if err := json.Unmarshal(val, &data); err != nil {
		s.log.Warnw("Discarding undecodable session", "id", id, "error", err)
		return make(map[string]any), nil
	}
	return data, nil
}

// Put implements Store.
func (s *RedisStore) Put(ctx context.Context, id string, data map[string]any) error {
	encoded, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encoding session %s: %w", id, err)
	}
	if err := s.client.Set(ctx, s.key(id), encoded, s.ttl).Err(); err != nil {
		return fmt.Errorf("storing session %s: %w", id, err)
	}
	return nil
}

// Delete implements Store.
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("deleting session %s: %w", id, err)
	}
	return nil
}
