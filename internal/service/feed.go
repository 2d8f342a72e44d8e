package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"inkwell/internal/avatar"
	"inkwell/internal/cache"
	"inkwell/internal/model"
	"inkwell/internal/repository"
)

const (
	// FeedDefaultLimit is the page size when the caller asks for nothing.
	FeedDefaultLimit = 25

	// FeedMaxLimit caps a single feed read.
	FeedMaxLimit = 100

	// SearchLimit caps a search result set.
	SearchLimit = 50

	// CacheWarmLimit is how many posts a cold cache gets loaded with.
	CacheWarmLimit = cache.FeedCacheCap
)

// FeedService assembles every post read path the same way: match posts,
// join each with its author's public profile, project into PostView (the raw
// author id is dropped, IsVisitorOwner is computed before the join), keeping
// the match step's ordering.
type FeedService struct {
	postRepo   repository.PostRepository
	userRepo   repository.UserRepository
	followRepo repository.FollowRepository
	feedCache  cache.FeedCache
}

func NewFeedService(
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	followRepo repository.FollowRepository,
	feedCache cache.FeedCache,
) *FeedService {
	return &FeedService{
		postRepo:   postRepo,
		userRepo:   userRepo,
		followRepo: followRepo,
		feedCache:  feedCache,
	}
}

// GetPost returns a single post view. Match by id, then the shared join and
// projection.
func (s *FeedService) GetPost(ctx context.Context, postID, visitorID int64) (*model.PostView, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	views, err := s.assemble(ctx, []model.Post{*post}, visitorID)
	if err != nil {
		return nil, err
	}
	if len(views) == 0 {
		// Author vanished between match and join; treat as absent.
		return nil, model.ErrPostNotFound
	}
	return &views[0], nil
}

// PostsByAuthor returns an author's posts, newest first.
func (s *FeedService) PostsByAuthor(ctx context.Context, authorID, visitorID int64) ([]model.PostView, error) {
	posts, err := s.postRepo.GetByAuthor(ctx, authorID)
	if err != nil {
		return nil, err
	}
	return s.assemble(ctx, posts, visitorID)
}

// PostsByUsername resolves the author by name first, failing fast with
// ErrUserNotFound before any post query.
func (s *FeedService) PostsByUsername(ctx context.Context, username string, visitorID int64) ([]model.PostView, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return nil, model.ErrUserNotFound
	}

	author, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	return s.PostsByAuthor(ctx, author.ID, visitorID)
}

// HomeFeed returns posts from the authors the user follows, newest first.
// The visitor's own posts are not part of their feed.
//
// The cached path serves ids out of Redis (warming on miss) and hydrates
// them through the same match -> join -> project pipeline. Any cache failure
// falls back to the direct database path, so a dead Redis degrades latency,
// not correctness.
func (s *FeedService) HomeFeed(ctx context.Context, userID int64, limit int) ([]model.PostView, error) {
	if limit <= 0 {
		limit = FeedDefaultLimit
	}
	if limit > FeedMaxLimit {
		limit = FeedMaxLimit
	}

	if s.feedCache != nil {
		views, err := s.homeFeedCached(ctx, userID, limit)
		if err == nil {
			return views, nil
		}
		log.Printf("[FeedService] cache path failed for user=%d, falling back to db: %v", userID, err)
	}

	return s.homeFeedDirect(ctx, userID, limit)
}

func (s *FeedService) homeFeedCached(ctx context.Context, userID int64, limit int) ([]model.PostView, error) {
	exists, err := s.feedCache.Exists(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !exists {
		if err := s.warmCache(ctx, userID); err != nil {
			return nil, err
		}
	}

	postIDs, err := s.feedCache.Feed(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	if len(postIDs) == 0 {
		return []model.PostView{}, nil
	}

	// GetByIDs preserves the cached (newest-first) order.
	posts, err := s.postRepo.GetByIDs(ctx, postIDs)
	if err != nil {
		return nil, err
	}

	return s.assemble(ctx, posts, userID)
}

func (s *FeedService) homeFeedDirect(ctx context.Context, userID int64, limit int) ([]model.PostView, error) {
	followeeIDs, err := s.followRepo.FolloweeIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get followee ids: %w", err)
	}
	if len(followeeIDs) == 0 {
		return []model.PostView{}, nil
	}

	posts, err := s.postRepo.GetByAuthors(ctx, followeeIDs, limit)
	if err != nil {
		return nil, err
	}

	return s.assemble(ctx, posts, userID)
}

func (s *FeedService) warmCache(ctx context.Context, userID int64) error {
	followeeIDs, err := s.followRepo.FolloweeIDs(ctx, userID)
	if err != nil {
		return fmt.Errorf("get followee ids: %w", err)
	}
	if len(followeeIDs) == 0 {
		return nil
	}

	scores, err := s.postRepo.FeedPostIDs(ctx, followeeIDs, CacheWarmLimit)
	if err != nil {
		return fmt.Errorf("get feed post ids: %w", err)
	}
	if len(scores) == 0 {
		return nil
	}

	if err := s.feedCache.Warm(ctx, userID, scores); err != nil {
		return fmt.Errorf("warm cache: %w", err)
	}

	log.Printf("[FeedService] cache warmed: user=%d posts=%d", userID, len(scores))
	return nil
}

// Search matches posts by text relevance, ordered by relevance descending
// with the store's stable tiebreak. A blank term yields an empty result, not
// an error.
func (s *FeedService) Search(ctx context.Context, term string, visitorID int64) ([]model.PostView, error) {
	if strings.TrimSpace(term) == "" {
		return []model.PostView{}, nil
	}

	posts, err := s.postRepo.Search(ctx, term, SearchLimit)
	if err != nil {
		return nil, err
	}

	return s.assemble(ctx, posts, visitorID)
}

// assemble is the join + project half of every read path. One batched author
// lookup serves the whole page; a post whose author cannot be resolved is
// dropped rather than shown half-formed. Input order is preserved.
func (s *FeedService) assemble(ctx context.Context, posts []model.Post, visitorID int64) ([]model.PostView, error) {
	if len(posts) == 0 {
		return []model.PostView{}, nil
	}

	authorIDSet := make(map[int64]struct{}, len(posts))
	for _, p := range posts {
		authorIDSet[p.AuthorID] = struct{}{}
	}
	authorIDs := make([]int64, 0, len(authorIDSet))
	for id := range authorIDSet {
		authorIDs = append(authorIDs, id)
	}

	authors, err := s.userRepo.GetByIDs(ctx, authorIDs)
	if err != nil {
		return nil, fmt.Errorf("join authors: %w", err)
	}

	profiles := make(map[int64]model.PublicProfile, len(authors))
	for _, a := range authors {
		profiles[a.ID] = model.PublicProfile{
			ID:        a.ID,
			Username:  a.Username,
			Email:     a.Email,
			AvatarURL: avatar.URL(a.Email),
		}
	}

	views := make([]model.PostView, 0, len(posts))
	for _, p := range posts {
		author, ok := profiles[p.AuthorID]
		if !ok {
			log.Printf("[FeedService] dropping post=%d: author=%d not found", p.ID, p.AuthorID)
			continue
		}
		views = append(views, model.PostView{
			ID:             p.ID,
			Title:          p.Title,
			Body:           p.Body,
			CreatedAt:      p.CreatedAt,
			Author:         author,
			IsVisitorOwner: visitorID != 0 && p.AuthorID == visitorID,
		})
	}

	return views, nil
}
