package service

import (
	"context"
	"errors"
	"time"

	"inkwell/internal/cache"
	"inkwell/internal/model"
	"inkwell/internal/queue"
)

// =============================================================================
// MOCK REPOSITORIES
// =============================================================================
//
// The services depend on the repository INTERFACES, so tests swap in mocks
// with per-test behavior. Each mock is a struct of function fields: a nil
// field gets a sensible zero-behavior default, and call slices record what
// happened for assertions.

type mockUserRepository struct {
	createFn           func(ctx context.Context, user *model.User) error
	getByIDFn          func(ctx context.Context, id int64) (*model.User, error)
	getByIDsFn         func(ctx context.Context, ids []int64) ([]model.User, error)
	getByUsernameFn    func(ctx context.Context, username string) (*model.User, error)
	existsByUsernameFn func(ctx context.Context, username string) (bool, error)
	existsByEmailFn    func(ctx context.Context, email string) (bool, error)

	createCalls []*model.User
}

func (m *mockUserRepository) Create(ctx context.Context, user *model.User) error {
	m.createCalls = append(m.createCalls, user)
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	user.ID = int64(len(m.createCalls))
	user.CreatedAt = time.Now()
	return nil
}

func (m *mockUserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) GetByIDs(ctx context.Context, ids []int64) ([]model.User, error) {
	if m.getByIDsFn != nil {
		return m.getByIDsFn(ctx, ids)
	}
	return nil, nil
}

func (m *mockUserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	if m.getByUsernameFn != nil {
		return m.getByUsernameFn(ctx, username)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	if m.existsByUsernameFn != nil {
		return m.existsByUsernameFn(ctx, username)
	}
	return false, nil
}

func (m *mockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if m.existsByEmailFn != nil {
		return m.existsByEmailFn(ctx, email)
	}
	return false, nil
}

type mockPostRepository struct {
	createFn        func(ctx context.Context, post *model.Post) error
	getByIDFn       func(ctx context.Context, postID int64) (*model.Post, error)
	getByIDsFn      func(ctx context.Context, postIDs []int64) ([]model.Post, error)
	getAuthorIDFn   func(ctx context.Context, postID int64) (int64, error)
	updateContentFn func(ctx context.Context, postID int64, title, body string) error
	deleteFn        func(ctx context.Context, postID int64) error
	getByAuthorFn   func(ctx context.Context, authorID int64) ([]model.Post, error)
	getByAuthorsFn  func(ctx context.Context, authorIDs []int64, limit int) ([]model.Post, error)
	countByAuthorFn func(ctx context.Context, authorID int64) (int, error)
	searchFn        func(ctx context.Context, term string, limit int) ([]model.Post, error)
	recentByAuthorFn func(ctx context.Context, authorID int64, limit int) ([]cache.PostScore, error)
	feedPostIDsFn    func(ctx context.Context, authorIDs []int64, limit int) ([]cache.PostScore, error)

	createCalls []*model.Post
	updateCalls []int64
	deleteCalls []int64
}

func (m *mockPostRepository) Create(ctx context.Context, post *model.Post) error {
	m.createCalls = append(m.createCalls, post)
	if m.createFn != nil {
		return m.createFn(ctx, post)
	}
	post.ID = int64(len(m.createCalls))
	post.CreatedAt = time.Now()
	return nil
}

func (m *mockPostRepository) GetByID(ctx context.Context, postID int64) (*model.Post, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, postID)
	}
	return nil, model.ErrPostNotFound
}

func (m *mockPostRepository) GetByIDs(ctx context.Context, postIDs []int64) ([]model.Post, error) {
	if m.getByIDsFn != nil {
		return m.getByIDsFn(ctx, postIDs)
	}
	return nil, nil
}

func (m *mockPostRepository) GetAuthorID(ctx context.Context, postID int64) (int64, error) {
	if m.getAuthorIDFn != nil {
		return m.getAuthorIDFn(ctx, postID)
	}
	return 0, model.ErrPostNotFound
}

func (m *mockPostRepository) UpdateContent(ctx context.Context, postID int64, title, body string) error {
	m.updateCalls = append(m.updateCalls, postID)
	if m.updateContentFn != nil {
		return m.updateContentFn(ctx, postID, title, body)
	}
	return nil
}

func (m *mockPostRepository) Delete(ctx context.Context, postID int64) error {
	m.deleteCalls = append(m.deleteCalls, postID)
	if m.deleteFn != nil {
		return m.deleteFn(ctx, postID)
	}
	return nil
}

func (m *mockPostRepository) GetByAuthor(ctx context.Context, authorID int64) ([]model.Post, error) {
	if m.getByAuthorFn != nil {
		return m.getByAuthorFn(ctx, authorID)
	}
	return nil, nil
}

func (m *mockPostRepository) GetByAuthors(ctx context.Context, authorIDs []int64, limit int) ([]model.Post, error) {
	if m.getByAuthorsFn != nil {
		return m.getByAuthorsFn(ctx, authorIDs, limit)
	}
	return nil, nil
}

func (m *mockPostRepository) CountByAuthor(ctx context.Context, authorID int64) (int, error) {
	if m.countByAuthorFn != nil {
		return m.countByAuthorFn(ctx, authorID)
	}
	return 0, nil
}

func (m *mockPostRepository) Search(ctx context.Context, term string, limit int) ([]model.Post, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, term, limit)
	}
	return nil, nil
}

func (m *mockPostRepository) RecentByAuthor(ctx context.Context, authorID int64, limit int) ([]cache.PostScore, error) {
	if m.recentByAuthorFn != nil {
		return m.recentByAuthorFn(ctx, authorID, limit)
	}
	return nil, nil
}

func (m *mockPostRepository) FeedPostIDs(ctx context.Context, authorIDs []int64, limit int) ([]cache.PostScore, error) {
	if m.feedPostIDsFn != nil {
		return m.feedPostIDsFn(ctx, authorIDs, limit)
	}
	return nil, nil
}

type mockFollowRepository struct {
	createFn         func(ctx context.Context, followerID, followeeID int64) (bool, error)
	deleteFn         func(ctx context.Context, followerID, followeeID int64) error
	existsFn         func(ctx context.Context, followerID, followeeID int64) (bool, error)
	countFollowersFn func(ctx context.Context, userID int64) (int, error)
	countFollowingFn func(ctx context.Context, userID int64) (int, error)
	followersFn      func(ctx context.Context, userID int64) ([]model.PublicProfile, error)
	followingFn      func(ctx context.Context, userID int64) ([]model.PublicProfile, error)
	followerIDsFn    func(ctx context.Context, userID int64) ([]int64, error)
	followeeIDsFn    func(ctx context.Context, userID int64) ([]int64, error)

	createCalls [][2]int64
	deleteCalls [][2]int64
}

func (m *mockFollowRepository) Create(ctx context.Context, followerID, followeeID int64) (bool, error) {
	m.createCalls = append(m.createCalls, [2]int64{followerID, followeeID})
	if m.createFn != nil {
		return m.createFn(ctx, followerID, followeeID)
	}
	return true, nil
}

func (m *mockFollowRepository) Delete(ctx context.Context, followerID, followeeID int64) error {
	m.deleteCalls = append(m.deleteCalls, [2]int64{followerID, followeeID})
	if m.deleteFn != nil {
		return m.deleteFn(ctx, followerID, followeeID)
	}
	return nil
}

func (m *mockFollowRepository) Exists(ctx context.Context, followerID, followeeID int64) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, followerID, followeeID)
	}
	return false, nil
}

func (m *mockFollowRepository) CountFollowers(ctx context.Context, userID int64) (int, error) {
	if m.countFollowersFn != nil {
		return m.countFollowersFn(ctx, userID)
	}
	return 0, nil
}

func (m *mockFollowRepository) CountFollowing(ctx context.Context, userID int64) (int, error) {
	if m.countFollowingFn != nil {
		return m.countFollowingFn(ctx, userID)
	}
	return 0, nil
}

func (m *mockFollowRepository) Followers(ctx context.Context, userID int64) ([]model.PublicProfile, error) {
	if m.followersFn != nil {
		return m.followersFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockFollowRepository) Following(ctx context.Context, userID int64) ([]model.PublicProfile, error) {
	if m.followingFn != nil {
		return m.followingFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockFollowRepository) FollowerIDs(ctx context.Context, userID int64) ([]int64, error) {
	if m.followerIDsFn != nil {
		return m.followerIDsFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockFollowRepository) FolloweeIDs(ctx context.Context, userID int64) ([]int64, error) {
	if m.followeeIDsFn != nil {
		return m.followeeIDsFn(ctx, userID)
	}
	return nil, nil
}

// =============================================================================
// MOCK CACHE AND PUBLISHER
// =============================================================================

// mockFeedCache is an in-memory FeedCache: one ordered slice per user,
// newest first, enough to exercise the cached feed path without Redis.
type mockFeedCache struct {
	feeds map[int64][]cache.PostScore

	failAll bool
}

func newMockFeedCache() *mockFeedCache {
	return &mockFeedCache{feeds: make(map[int64][]cache.PostScore)}
}

func (m *mockFeedCache) AddPost(ctx context.Context, userID, postID, createdAt int64) error {
	if m.failAll {
		return errCacheDown
	}
	m.feeds[userID] = append(m.feeds[userID], cache.PostScore{PostID: postID, CreatedAt: createdAt})
	return nil
}

func (m *mockFeedCache) RemovePost(ctx context.Context, userID, postID int64) error {
	if m.failAll {
		return errCacheDown
	}
	return m.RemovePosts(ctx, userID, []int64{postID})
}

func (m *mockFeedCache) RemovePosts(ctx context.Context, userID int64, postIDs []int64) error {
	if m.failAll {
		return errCacheDown
	}
	drop := make(map[int64]bool, len(postIDs))
	for _, id := range postIDs {
		drop[id] = true
	}
	kept := m.feeds[userID][:0]
	for _, s := range m.feeds[userID] {
		if !drop[s.PostID] {
			kept = append(kept, s)
		}
	}
	m.feeds[userID] = kept
	return nil
}

func (m *mockFeedCache) Feed(ctx context.Context, userID int64, limit int) ([]int64, error) {
	if m.failAll {
		return nil, errCacheDown
	}
	scores := append([]cache.PostScore(nil), m.feeds[userID]...)
	// Highest score first, matching ZREVRANGE.
	for i := 0; i < len(scores); i++ {
		for j := i + 1; j < len(scores); j++ {
			if scores[j].CreatedAt > scores[i].CreatedAt ||
				(scores[j].CreatedAt == scores[i].CreatedAt && scores[j].PostID > scores[i].PostID) {
				scores[i], scores[j] = scores[j], scores[i]
			}
		}
	}
	if len(scores) > limit {
		scores = scores[:limit]
	}
	ids := make([]int64, len(scores))
	for i, s := range scores {
		ids[i] = s.PostID
	}
	return ids, nil
}

func (m *mockFeedCache) Warm(ctx context.Context, userID int64, posts []cache.PostScore) error {
	if m.failAll {
		return errCacheDown
	}
	m.feeds[userID] = append([]cache.PostScore(nil), posts...)
	return nil
}

func (m *mockFeedCache) Exists(ctx context.Context, userID int64) (bool, error) {
	if m.failAll {
		return false, errCacheDown
	}
	_, ok := m.feeds[userID]
	return ok, nil
}

var errCacheDown = errors.New("cache unavailable")

// mockPublisher records every event instead of hitting a stream.
type mockPublisher struct {
	published []queue.FeedEvent
	failAll   bool
}

func (m *mockPublisher) Publish(ctx context.Context, stream string, event queue.FeedEvent) (string, error) {
	if m.failAll {
		return "", errCacheDown
	}
	m.published = append(m.published, event)
	return "1-0", nil
}

func (m *mockPublisher) eventsOfType(eventType string) []queue.FeedEvent {
	var out []queue.FeedEvent
	for _, e := range m.published {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}
