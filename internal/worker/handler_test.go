package worker

import (
	"context"
	"errors"
	"testing"

	"inkwell/internal/cache"
	"inkwell/internal/queue"
)

// fakeFeedCache keeps a set of post ids per user, merging on Warm the way the
// sorted-set implementation does.
type fakeFeedCache struct {
	feeds map[int64]map[int64]bool

	addErr error
}

func newFakeFeedCache() *fakeFeedCache {
	return &fakeFeedCache{feeds: make(map[int64]map[int64]bool)}
}

func (f *fakeFeedCache) ensure(userID int64) map[int64]bool {
	if f.feeds[userID] == nil {
		f.feeds[userID] = make(map[int64]bool)
	}
	return f.feeds[userID]
}

func (f *fakeFeedCache) AddPost(ctx context.Context, userID, postID, createdAt int64) error {
	if f.addErr != nil {
		return f.addErr
	}
	f.ensure(userID)[postID] = true
	return nil
}

func (f *fakeFeedCache) RemovePost(ctx context.Context, userID, postID int64) error {
	delete(f.feeds[userID], postID)
	return nil
}

func (f *fakeFeedCache) RemovePosts(ctx context.Context, userID int64, postIDs []int64) error {
	for _, id := range postIDs {
		delete(f.feeds[userID], id)
	}
	return nil
}

func (f *fakeFeedCache) Feed(ctx context.Context, userID int64, limit int) ([]int64, error) {
	var ids []int64
	for id := range f.feeds[userID] {
		ids = append(ids, id)
	}
	return ids, nil
}

func (f *fakeFeedCache) Warm(ctx context.Context, userID int64, posts []cache.PostScore) error {
	set := f.ensure(userID)
	for _, p := range posts {
		set[p.PostID] = true
	}
	return nil
}

func (f *fakeFeedCache) Exists(ctx context.Context, userID int64) (bool, error) {
	_, ok := f.feeds[userID]
	return ok, nil
}

type fakeFollowers struct {
	byAuthor map[int64][]int64
	err      error
}

func (f *fakeFollowers) FollowerIDs(ctx context.Context, userID int64) ([]int64, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.byAuthor[userID], nil
}

type fakePosts struct {
	byAuthor map[int64][]cache.PostScore
}

func (f *fakePosts) RecentByAuthor(ctx context.Context, authorID int64, limit int) ([]cache.PostScore, error) {
	posts := f.byAuthor[authorID]
	if len(posts) > limit {
		posts = posts[:limit]
	}
	return posts, nil
}

func TestHandler_PostCreated_FansOutToFollowers(t *testing.T) {
	feedCache := newFakeFeedCache()
	followers := &fakeFollowers{byAuthor: map[int64][]int64{2: {1, 3}}}
	h := NewHandler(feedCache, followers, &fakePosts{})

	event := queue.FeedEvent{Type: queue.EventPostCreated, PostID: 100, AuthorID: 2, Timestamp: 1000}
	if err := h.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, followerID := range []int64{1, 3} {
		if !feedCache.feeds[followerID][100] {
			t.Errorf("post 100 missing from follower %d's cache", followerID)
		}
	}
	// The author's own feed stays untouched.
	if feedCache.feeds[2][100] {
		t.Error("author's own cache should not receive their post")
	}
}

func TestHandler_PostCreated_PartialCacheFailureIsNotFatal(t *testing.T) {
	feedCache := newFakeFeedCache()
	feedCache.addErr = errors.New("redis down")
	followers := &fakeFollowers{byAuthor: map[int64][]int64{2: {1}}}
	h := NewHandler(feedCache, followers, &fakePosts{})

	event := queue.FeedEvent{Type: queue.EventPostCreated, PostID: 100, AuthorID: 2, Timestamp: 1000}
	if err := h.HandleEvent(context.Background(), event); err != nil {
		t.Errorf("per-follower cache failures should be swallowed, got: %v", err)
	}
}

func TestHandler_PostDeleted_RemovesFromFollowers(t *testing.T) {
	feedCache := newFakeFeedCache()
	feedCache.ensure(1)[100] = true
	feedCache.ensure(1)[101] = true
	followers := &fakeFollowers{byAuthor: map[int64][]int64{2: {1}}}
	h := NewHandler(feedCache, followers, &fakePosts{})

	event := queue.FeedEvent{Type: queue.EventPostDeleted, PostID: 100, AuthorID: 2}
	if err := h.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if feedCache.feeds[1][100] {
		t.Error("deleted post should be gone from follower cache")
	}
	if !feedCache.feeds[1][101] {
		t.Error("unrelated post should survive")
	}
}

func TestHandler_UserFollowed_BackfillsWarmCacheOnly(t *testing.T) {
	posts := &fakePosts{byAuthor: map[int64][]cache.PostScore{
		2: {{PostID: 100, CreatedAt: 1000}, {PostID: 101, CreatedAt: 2000}},
	}}

	t.Run("cold cache is left alone", func(t *testing.T) {
		feedCache := newFakeFeedCache()
		h := NewHandler(feedCache, &fakeFollowers{}, posts)

		event := queue.FeedEvent{Type: queue.EventUserFollowed, FollowerID: 1, FolloweeID: 2}
		if err := h.HandleEvent(context.Background(), event); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, ok := feedCache.feeds[1]; ok {
			t.Error("a cold cache should not be created by a follow event")
		}
	})

	t.Run("warm cache gets the backfill", func(t *testing.T) {
		feedCache := newFakeFeedCache()
		feedCache.ensure(1)[50] = true
		h := NewHandler(feedCache, &fakeFollowers{}, posts)

		event := queue.FeedEvent{Type: queue.EventUserFollowed, FollowerID: 1, FolloweeID: 2}
		if err := h.HandleEvent(context.Background(), event); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, id := range []int64{50, 100, 101} {
			if !feedCache.feeds[1][id] {
				t.Errorf("post %d missing after backfill", id)
			}
		}
	})
}

func TestHandler_UserUnfollowed_RemovesFolloweePosts(t *testing.T) {
	posts := &fakePosts{byAuthor: map[int64][]cache.PostScore{
		2: {{PostID: 100, CreatedAt: 1000}, {PostID: 101, CreatedAt: 2000}},
	}}
	feedCache := newFakeFeedCache()
	feedCache.ensure(1)[100] = true
	feedCache.ensure(1)[101] = true
	feedCache.ensure(1)[200] = true // from another followee
	h := NewHandler(feedCache, &fakeFollowers{}, posts)

	event := queue.FeedEvent{Type: queue.EventUserUnfollowed, FollowerID: 1, FolloweeID: 2}
	if err := h.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if feedCache.feeds[1][100] || feedCache.feeds[1][101] {
		t.Error("unfollowed author's posts should be removed")
	}
	if !feedCache.feeds[1][200] {
		t.Error("other authors' posts should survive an unfollow")
	}
}

func TestHandler_UnknownEventType(t *testing.T) {
	h := NewHandler(newFakeFeedCache(), &fakeFollowers{}, &fakePosts{})

	err := h.HandleEvent(context.Background(), queue.FeedEvent{Type: "comment_added"})
	if err == nil {
		t.Error("unknown event types should error so the worker logs them")
	}
}
