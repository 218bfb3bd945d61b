package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/FilBrou/grandprix-grab-go-sub000/internal/redisx"
)

// RedisStore keeps each cart as a hash keyed by user id, one field per item,
// plus a reverse set per item so the feed consumer can find holders.
type RedisStore struct{ RDB *redis.Client }

func cartKey(userID string) string    { return fmt.Sprintf(redisx.KeyCart, userID) }
func holdersKey(itemID string) string { return fmt.Sprintf(redisx.KeyCartHolders, itemID) }

func (s *RedisStore) Lines(ctx context.Context, userID string) ([]Line, error) {
	raw, err := s.RDB.HGetAll(ctx, cartKey(userID)).Result()
	if err != nil {
		return nil, err
	}
	out := make([]Line, 0, len(raw))
	for _, v := range raw {
		var l Line
		if err := json.Unmarshal([]byte(v), &l); err != nil {
			return nil, fmt.Errorf("cart: decode line: %w", err)
		}
		out = append(out, l)
	}
	return out, nil
}

func (s *RedisStore) Get(ctx context.Context, userID, itemID string) (Line, bool, error) {
	raw, err := s.RDB.HGet(ctx, cartKey(userID), itemID).Result()
	if errors.Is(err, redis.Nil) {
		return Line{}, false, nil
	}
	if err != nil {
		return Line{}, false, err
	}
	var l Line
	if err := json.Unmarshal([]byte(raw), &l); err != nil {
		return Line{}, false, fmt.Errorf("cart: decode line: %w", err)
	}
	return l, true, nil
}

func (s *RedisStore) Put(ctx context.Context, userID string, l Line) error {
	b, err := json.Marshal(l)
	if err != nil {
		return err
	}
	pipe := s.RDB.TxPipeline()
	pipe.HSet(ctx, cartKey(userID), l.ItemID, b)
	pipe.Expire(ctx, cartKey(userID), redisx.TTLCart)
	pipe.SAdd(ctx, holdersKey(l.ItemID), userID)
	pipe.Expire(ctx, holdersKey(l.ItemID), redisx.TTLCart)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *RedisStore) Remove(ctx context.Context, userID, itemID string) error {
	pipe := s.RDB.TxPipeline()
	pipe.HDel(ctx, cartKey(userID), itemID)
	pipe.SRem(ctx, holdersKey(itemID), userID)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisStore) Clear(ctx context.Context, userID string) error {
	lines, err := s.Lines(ctx, userID)
	if err != nil {
		return err
	}
	pipe := s.RDB.TxPipeline()
	for _, l := range lines {
		pipe.SRem(ctx, holdersKey(l.ItemID), userID)
	}
	pipe.Del(ctx, cartKey(userID))
	_, err = pipe.Exec(ctx)
	return err
}

func (s *RedisStore) HoldersOf(ctx context.Context, itemID string) ([]string, error) {
	return s.RDB.SMembers(ctx, holdersKey(itemID)).Result()
}
