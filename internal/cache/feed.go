// Package cache holds the Redis-backed home-feed cache. Each user gets one
// sorted set of post ids scored by creation timestamp, capped and TTL'd, so a
// feed read is a single ZREVRANGE instead of a cross-table scan.
package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	feedKeyPrefix = "feed:user:"

	// FeedCacheCap is the maximum number of post ids kept per user.
	FeedCacheCap = 500

	// FeedCacheTTL expires idle feeds so unfollowed-then-dormant accounts
	// don't hold memory forever.
	FeedCacheTTL = 7 * 24 * time.Hour
)

// PostScore pairs a post id with its creation time, the unit of storage for
// the feed cache.
type PostScore struct {
	PostID    int64
	CreatedAt int64 // unix seconds
}

// FeedCache is the interface the feed service and fan-out workers talk to.
// The Redis implementation is below; tests substitute in-memory fakes.
type FeedCache interface {
	// AddPost inserts one post into a user's cached feed, trimming past the
	// cap and refreshing the TTL.
	AddPost(ctx context.Context, userID, postID, createdAt int64) error

	// RemovePost drops one post from a user's cached feed.
	RemovePost(ctx context.Context, userID, postID int64) error

	// RemovePosts drops a batch of posts from a user's cached feed. Used when
	// an unfollow removes everything the followee ever contributed.
	RemovePosts(ctx context.Context, userID int64, postIDs []int64) error

	// Feed returns up to limit post ids, newest first.
	Feed(ctx context.Context, userID int64, limit int) ([]int64, error)

	// Warm bulk-loads a user's feed after a cache miss.
	Warm(ctx context.Context, userID int64, posts []PostScore) error

	// Exists reports whether the user has a cached feed at all. False means
	// the caller should warm before reading.
	Exists(ctx context.Context, userID int64) (bool, error)
}

type redisFeedCache struct {
	client *redis.Client
}

// NewFeedCache returns a FeedCache backed by Redis sorted sets.
func NewFeedCache(client *redis.Client) FeedCache {
	return &redisFeedCache{client: client}
}

func feedKey(userID int64) string {
	return fmt.Sprintf("%s%d", feedKeyPrefix, userID)
}

func (c *redisFeedCache) AddPost(ctx context.Context, userID, postID, createdAt int64) error {
	key := feedKey(userID)

	pipe := c.client.Pipeline()
	pipe.ZAdd(ctx, key, redis.Z{
		Score:  float64(createdAt),
		Member: strconv.FormatInt(postID, 10),
	})
	// Keep only the FeedCacheCap newest entries.
	pipe.ZRemRangeByRank(ctx, key, 0, int64(-FeedCacheCap-1))
	pipe.Expire(ctx, key, FeedCacheTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("add post to feed cache: %w", err)
	}
	return nil
}

func (c *redisFeedCache) RemovePost(ctx context.Context, userID, postID int64) error {
	err := c.client.ZRem(ctx, feedKey(userID), strconv.FormatInt(postID, 10)).Err()
	if err != nil {
		return fmt.Errorf("remove post from feed cache: %w", err)
	}
	return nil
}

func (c *redisFeedCache) RemovePosts(ctx context.Context, userID int64, postIDs []int64) error {
	if len(postIDs) == 0 {
		return nil
	}
	members := make([]interface{}, len(postIDs))
	for i, id := range postIDs {
		members[i] = strconv.FormatInt(id, 10)
	}
	if err := c.client.ZRem(ctx, feedKey(userID), members...).Err(); err != nil {
		return fmt.Errorf("remove posts from feed cache: %w", err)
	}
	return nil
}

func (c *redisFeedCache) Feed(ctx context.Context, userID int64, limit int) ([]int64, error) {
	key := feedKey(userID)

	members, err := c.client.ZRevRange(ctx, key, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("read feed cache: %w", err)
	}

	// Reading a feed counts as activity.
	c.client.Expire(ctx, key, FeedCacheTTL)

	postIDs := make([]int64, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse cached post id %q: %w", m, err)
		}
		postIDs = append(postIDs, id)
	}
	return postIDs, nil
}

func (c *redisFeedCache) Warm(ctx context.Context, userID int64, posts []PostScore) error {
	if len(posts) == 0 {
		return nil
	}

	key := feedKey(userID)
	members := make([]redis.Z, len(posts))
	for i, p := range posts {
		members[i] = redis.Z{
			Score:  float64(p.CreatedAt),
			Member: strconv.FormatInt(p.PostID, 10),
		}
	}

	pipe := c.client.Pipeline()
	pipe.ZAdd(ctx, key, members...)
	pipe.ZRemRangeByRank(ctx, key, 0, int64(-FeedCacheCap-1))
	pipe.Expire(ctx, key, FeedCacheTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("warm feed cache: %w", err)
	}
	return nil
}

func (c *redisFeedCache) Exists(ctx context.Context, userID int64) (bool, error) {
	n, err := c.client.Exists(ctx, feedKey(userID)).Result()
	if err != nil {
		return false, fmt.Errorf("check feed cache exists: %w", err)
	}
	return n > 0, nil
}
