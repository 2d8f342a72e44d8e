package worker

import (
	"context"
	"fmt"
	"log"

	"inkwell/internal/cache"
	"inkwell/internal/queue"
)

// BackfillLimit caps how many of a followee's existing posts get copied into
// a new follower's feed cache.
const BackfillLimit = 50

// FollowerProvider resolves who follows an author, so a post event can fan
// out without the worker depending on the whole repository layer.
type FollowerProvider interface {
	FollowerIDs(ctx context.Context, userID int64) ([]int64, error)
}

// PostsProvider resolves an author's recent posts as (id, created_at) pairs
// for backfill and removal.
type PostsProvider interface {
	RecentByAuthor(ctx context.Context, authorID int64, limit int) ([]cache.PostScore, error)
}

// Handler applies feed events to follower caches.
type Handler struct {
	feedCache cache.FeedCache
	followers FollowerProvider
	posts     PostsProvider
}

func NewHandler(feedCache cache.FeedCache, followers FollowerProvider, posts PostsProvider) *Handler {
	return &Handler{
		feedCache: feedCache,
		followers: followers,
		posts:     posts,
	}
}

// HandleEvent routes one event. Per-follower cache failures are logged and
// skipped rather than failing the whole fan-out; a stale cache self-corrects
// on its next warm.
func (h *Handler) HandleEvent(ctx context.Context, event queue.FeedEvent) error {
	switch event.Type {
	case queue.EventPostCreated:
		return h.handlePostCreated(ctx, event)
	case queue.EventPostDeleted:
		return h.handlePostDeleted(ctx, event)
	case queue.EventUserFollowed:
		return h.handleUserFollowed(ctx, event)
	case queue.EventUserUnfollowed:
		return h.handleUserUnfollowed(ctx, event)
	default:
		return fmt.Errorf("unknown event type: %s", event.Type)
	}
}

// handlePostCreated pushes the new post into each follower's cached feed.
// The author's own feed is not touched: home feeds contain followed authors
// only.
func (h *Handler) handlePostCreated(ctx context.Context, event queue.FeedEvent) error {
	followerIDs, err := h.followers.FollowerIDs(ctx, event.AuthorID)
	if err != nil {
		return fmt.Errorf("get followers: %w", err)
	}

	var failed int
	for _, followerID := range followerIDs {
		if err := h.feedCache.AddPost(ctx, followerID, event.PostID, event.Timestamp); err != nil {
			log.Printf("[Worker] PostCreated: add to user=%d failed: %v", followerID, err)
			failed++
		}
	}

	log.Printf("[Worker] PostCreated: post=%d author=%d fanout=%d failed=%d",
		event.PostID, event.AuthorID, len(followerIDs), failed)
	return nil
}

func (h *Handler) handlePostDeleted(ctx context.Context, event queue.FeedEvent) error {
	followerIDs, err := h.followers.FollowerIDs(ctx, event.AuthorID)
	if err != nil {
		return fmt.Errorf("get followers: %w", err)
	}

	var failed int
	for _, followerID := range followerIDs {
		if err := h.feedCache.RemovePost(ctx, followerID, event.PostID); err != nil {
			log.Printf("[Worker] PostDeleted: remove from user=%d failed: %v", followerID, err)
			failed++
		}
	}

	log.Printf("[Worker] PostDeleted: post=%d author=%d fanout=%d failed=%d",
		event.PostID, event.AuthorID, len(followerIDs), failed)
	return nil
}

// handleUserFollowed backfills the followee's recent posts into the
// follower's cached feed, but only when that cache already exists — a missing
// cache gets warmed from scratch on the next read anyway.
func (h *Handler) handleUserFollowed(ctx context.Context, event queue.FeedEvent) error {
	exists, err := h.feedCache.Exists(ctx, event.FollowerID)
	if err != nil {
		return fmt.Errorf("check follower cache: %w", err)
	}
	if !exists {
		return nil
	}

	posts, err := h.posts.RecentByAuthor(ctx, event.FolloweeID, BackfillLimit)
	if err != nil {
		return fmt.Errorf("get recent posts: %w", err)
	}
	if len(posts) == 0 {
		return nil
	}

	if err := h.feedCache.Warm(ctx, event.FollowerID, posts); err != nil {
		return fmt.Errorf("backfill follower cache: %w", err)
	}

	log.Printf("[Worker] UserFollowed: follower=%d followee=%d backfilled=%d",
		event.FollowerID, event.FolloweeID, len(posts))
	return nil
}

// handleUserUnfollowed removes the followee's posts from the follower's
// cached feed.
func (h *Handler) handleUserUnfollowed(ctx context.Context, event queue.FeedEvent) error {
	exists, err := h.feedCache.Exists(ctx, event.FollowerID)
	if err != nil {
		return fmt.Errorf("check follower cache: %w", err)
	}
	if !exists {
		return nil
	}

	posts, err := h.posts.RecentByAuthor(ctx, event.FolloweeID, cache.FeedCacheCap)
	if err != nil {
		return fmt.Errorf("get followee posts: %w", err)
	}

	postIDs := make([]int64, len(posts))
	for i, p := range posts {
		postIDs[i] = p.PostID
	}

	if err := h.feedCache.RemovePosts(ctx, event.FollowerID, postIDs); err != nil {
		return fmt.Errorf("remove followee posts: %w", err)
	}

	log.Printf("[Worker] UserUnfollowed: follower=%d followee=%d removed=%d",
		event.FollowerID, event.FolloweeID, len(postIDs))
	return nil
}
