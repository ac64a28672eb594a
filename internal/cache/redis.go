package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wishwell/giftsync/internal/config"
)

// Cache key formats for the read endpoints. Bulk writes invalidate these
// eagerly so clients never re-read a stale baseline after a save.
const (
	rosterKeyFmt       = "roster:%d"
	contributorsKeyFmt = "contributors:item:%d"
	trackingKeyFmt     = "tracking:event:%d"

	rosterTTL       = 5 * time.Minute
	contributorsTTL = time.Minute
	trackingTTL     = time.Minute
)

var client *redis.Client

// Init connects to redis. A failed connection leaves caching disabled;
// every helper degrades to a miss when no client is available.
func Init(conf config.RedisConfig) error {
	c := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%v:%v", conf.Host, conf.Port),
		Password: conf.Password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()

		return err
	}

	client = c

	return nil
}

// GetRoster returns the cached roster JSON for ownerID.
func GetRoster(ctx context.Context, ownerID uint) ([]byte, bool) {
	return get(ctx, fmt.Sprintf(rosterKeyFmt, ownerID))
}

// SetRoster caches the roster JSON for ownerID.
func SetRoster(ctx context.Context, ownerID uint, data []byte) {
	set(ctx, fmt.Sprintf(rosterKeyFmt, ownerID), data, rosterTTL)
}

// InvalidateRoster drops the cached roster for ownerID.
func InvalidateRoster(ctx context.Context, ownerID uint) {
	del(ctx, fmt.Sprintf(rosterKeyFmt, ownerID))
}

// GetContributors returns the cached contributor baseline JSON for itemID.
func GetContributors(ctx context.Context, itemID uint) ([]byte, bool) {
	return get(ctx, fmt.Sprintf(contributorsKeyFmt, itemID))
}

// SetContributors caches the contributor baseline JSON for itemID.
func SetContributors(ctx context.Context, itemID uint, data []byte) {
	set(ctx, fmt.Sprintf(contributorsKeyFmt, itemID), data, contributorsTTL)
}

// InvalidateContributors drops the cached baseline for itemID.
func InvalidateContributors(ctx context.Context, itemID uint) {
	del(ctx, fmt.Sprintf(contributorsKeyFmt, itemID))
}

// GetTracking returns the cached tracking state JSON for eventID.
func GetTracking(ctx context.Context, eventID uint) ([]byte, bool) {
	return get(ctx, fmt.Sprintf(trackingKeyFmt, eventID))
}

// SetTracking caches the tracking state JSON for eventID.
func SetTracking(ctx context.Context, eventID uint, data []byte) {
	set(ctx, fmt.Sprintf(trackingKeyFmt, eventID), data, trackingTTL)
}

// InvalidateTracking drops the cached tracking state for eventID.
func InvalidateTracking(ctx context.Context, eventID uint) {
	del(ctx, fmt.Sprintf(trackingKeyFmt, eventID))
}

func get(ctx context.Context, key string) ([]byte, bool) {
	if client == nil {
		return nil, false
	}

	data, err := client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}

	return data, true
}

func set(ctx context.Context, key string, data []byte, ttl time.Duration) {
	if client == nil {
		return
	}

	client.Set(ctx, key, data, ttl)
}

func del(ctx context.Context, key string) {
	if client == nil {
		return
	}

	client.Del(ctx, key)
}
