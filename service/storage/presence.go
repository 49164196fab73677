package storage

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// The presence mirror lets services outside the gateway process answer
// "is this user online" without reaching into the in-memory registry.
// Routing decisions never read it; the registry stays the source of truth.
//
// key: vochat:presence:<user>, value: node id, TTL bounds staleness when a
// gateway dies without cleaning up.

func presenceKey(user string) string { return "vochat:presence:" + user }

// PresenceOnline marks the user online on the given node and arms the TTL.
func PresenceOnline(ctx context.Context, user, nodeID string, ttl time.Duration) error {
	rdb := GetRedis()
	if rdb == nil {
		return nil
	}
	return rdb.Set(ctx, presenceKey(user), nodeID, ttl).Err()
}

// PresenceRenew extends the TTL without touching the value.
func PresenceRenew(ctx context.Context, user string, ttl time.Duration) error {
	rdb := GetRedis()
	if rdb == nil {
		return nil
	}
	return rdb.Expire(ctx, presenceKey(user), ttl).Err()
}

// PresenceOffline removes the mirror entry.
func PresenceOffline(ctx context.Context, user string) error {
	rdb := GetRedis()
	if rdb == nil {
		return nil
	}
	return rdb.Del(ctx, presenceKey(user)).Err()
}

// PresenceLookup reports which node the user is on, if any.
func PresenceLookup(ctx context.Context, user string) (nodeID string, online bool, err error) {
	rdb := GetRedis()
	if rdb == nil {
		return "", false, nil
	}
	val, err := rdb.Get(ctx, presenceKey(user)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}
