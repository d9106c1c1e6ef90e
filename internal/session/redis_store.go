package session

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "session:"

// RedisStore keeps each session as a key that expires with the session.
type RedisStore struct {
	Client *redis.Client
	Prefix string
	Now    func() time.Time
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{Client: client, Prefix: defaultKeyPrefix, Now: time.Now}
}

func (s *RedisStore) key(tokenID string) string {
	return s.Prefix + tokenID
}

func (s *RedisStore) Save(ctx context.Context, tokenID string, userID uint, expiresAt time.Time) error {
	ttl := expiresAt.Sub(s.Now())
	if ttl <= 0 {
		return errors.New("session already expired")
	}
	return s.Client.Set(ctx, s.key(tokenID), strconv.FormatUint(uint64(userID), 10), ttl).Err()
}

func (s *RedisStore) Resolve(ctx context.Context, tokenID string) (uint, bool, error) {
	v, err := s.Client.Get(ctx, s.key(tokenID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, false, nil
		}
		return 0, false, err
	}
	id, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, false, err
	}
	return uint(id), true, nil
}

func (s *RedisStore) Revoke(ctx context.Context, tokenID string) error {
	n, err := s.Client.Del(ctx, s.key(tokenID)).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNoSession
	}
	return nil
}
