package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/vibast-solutions/ms-go-mood-journal/app/entity"

	"github.com/redis/go-redis/v9"
)

const redisSessionPrefix = "mj:session:"

// RedisSessionStore stores each session as a JSON value whose key expires
// together with the session.
type RedisSessionStore struct {
	client redis.Cmdable
	now    func() time.Time
}

func NewRedisSessionStore(client redis.Cmdable) *RedisSessionStore {
	return &RedisSessionStore{client: client, now: time.Now}
}

func (s *RedisSessionStore) Create(ctx context.Context, session *entity.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}

	ttl := session.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return fmt.Errorf("session %s already expired", session.ID)
	}
	return s.client.Set(ctx, redisSessionPrefix+session.ID, data, ttl).Err()
}

func (s *RedisSessionStore) Find(ctx context.Context, id string) (*entity.Session, error) {
	data, err := s.client.Get(ctx, redisSessionPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	session := &entity.Session{}
	if err := json.Unmarshal(data, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, id string) (bool, error) {
	removed, err := s.client.Del(ctx, redisSessionPrefix+id).Result()
	if err != nil {
		return false, err
	}
	return removed > 0, nil
}

// DeleteExpired is a no-op: Redis evicts keys when their TTL runs out.
func (s *RedisSessionStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return 0, nil
}
