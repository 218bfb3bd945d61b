package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/FilBrou/grandprix-grab-go-sub000/internal/redisx"
)

// RedisStore reads sessions written by the identity provider.
type RedisStore struct{ RDB *redis.Client }

func (s *RedisStore) User(ctx context.Context, token string) (User, error) {
	raw, err := s.RDB.Get(ctx, fmt.Sprintf(redisx.KeySession, token)).Result()
	if errors.Is(err, redis.Nil) {
		return User{}, ErrNoSession
	}
	if err != nil {
		return User{}, err
	}
	var u User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return User{}, fmt.Errorf("auth: decode session: %w", err)
	}
	return u, nil
}

// Save is used by tooling and tests to mint a session.
func (s *RedisStore) Save(ctx context.Context, token string, u User, ttl time.Duration) error {
	b, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return s.RDB.Set(ctx, fmt.Sprintf(redisx.KeySession, token), b, ttl).Err()
}
