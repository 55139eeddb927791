package session

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "hoteldesk:session:"

// setAccessScript updates the access field only when the hash already holds
// a refresh token.
var setAccessScript = redis.NewScript(`
local refresh = redis.call("HGET", KEYS[1], ARGV[2])
if not refresh or refresh == "" then
	return 0
end
redis.call("HSET", KEYS[1], ARGV[1], ARGV[3])
return 1
`)

// RedisStore keeps one hash per profile with the two token fields.
type RedisStore struct {
	client redis.Cmdable
	key    string
}

func NewRedisStore(client redis.Cmdable, profile string) *RedisStore {
	return &RedisStore{client: client, key: RedisKey(profile)}
}

func RedisKey(profile string) string {
	return redisKeyPrefix + profile
}

func (s *RedisStore) Load(ctx context.Context) (Tokens, error) {
	fields, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return Tokens{}, fmt.Errorf("failed to load session %s: %w", s.key, err)
	}
	return Tokens{Access: fields[AccessTokenKey], Refresh: fields[RefreshTokenKey]}, nil
}

func (s *RedisStore) Save(ctx context.Context, tokens Tokens) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.key)
		pipe.HSet(ctx, s.key, AccessTokenKey, tokens.Access, RefreshTokenKey, tokens.Refresh)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save session %s: %w", s.key, err)
	}
	return nil
}

func (s *RedisStore) SetAccess(ctx context.Context, access string) error {
	updated, err := setAccessScript.Run(ctx, s.client, []string{s.key}, AccessTokenKey, RefreshTokenKey, access).Int()
	if err != nil {
		return fmt.Errorf("failed to update access token in %s: %w", s.key, err)
	}
	if updated == 0 {
		return ErrNoSession
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("failed to clear session %s: %w", s.key, err)
	}
	return nil
}
