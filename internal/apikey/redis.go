package apikey

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// LoadRedisKeys returns the members of the Redis set stored at setKey.
// It is meant to be called once during startup; the result is folded into a
// KeySet and Redis is not consulted again. A nil client or empty setKey
// yields no keys.
func LoadRedisKeys(ctx context.Context, client *redis.Client, setKey string) ([]string, error) {
	if client == nil || setKey == "" {
		return nil, nil
	}
	members, err := client.SMembers(ctx, setKey).Result()
	if err != nil {
		return nil, fmt.Errorf("load api keys from redis set %q: %w", setKey, err)
	}
	return members, nil
}

// AddRedisKeys adds keys to the Redis set and returns how many were new.
// Running servers only see them after a restart.
func AddRedisKeys(ctx context.Context, client *redis.Client, setKey string, keys ...string) (int64, error) {
	if len(keys) == 0 {
		return 0, nil
	}
	members := make([]interface{}, len(keys))
	for i, k := range keys {
		members[i] = k
	}
	n, err := client.SAdd(ctx, setKey, members...).Result()
	if err != nil {
		return 0, fmt.Errorf("add api keys to redis set %q: %w", setKey, err)
	}
	return n, nil
}

// RemoveRedisKeys removes keys from the Redis set and returns how many were present.
func RemoveRedisKeys(ctx context.Context, client *redis.Client, setKey string, keys ...string) (int64, error) {
	if len(keys) == 0 {
		return 0, nil
	}
	members := make([]interface{}, len(keys))
	for i, k := range keys {
		members[i] = k
	}
	n, err := client.SRem(ctx, setKey, members...).Result()
	if err != nil {
		return 0, fmt.Errorf("remove api keys from redis set %q: %w", setKey, err)
	}
	return n, nil
}
