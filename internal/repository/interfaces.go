package repository

import (
	"context"

	"inkwell/internal/cache"
	"inkwell/internal/model"
)

// UserRepository owns user records. Usernames and emails are stored
// normalized (trimmed, lowercased) and carry unique constraints; the
// constraint is the backstop for the check-then-act registration flow.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByIDs(ctx context.Context, ids []int64) ([]model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// PostRepository owns post records. All multi-row reads come back ordered
// (created_at DESC, id DESC — or relevance for Search); the feed assembler
// preserves that order through join and projection.
type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	GetByID(ctx context.Context, postID int64) (*model.Post, error)
	GetByIDs(ctx context.Context, postIDs []int64) ([]model.Post, error)
	GetAuthorID(ctx context.Context, postID int64) (int64, error)
	UpdateContent(ctx context.Context, postID int64, title, body string) error
	Delete(ctx context.Context, postID int64) error
	GetByAuthor(ctx context.Context, authorID int64) ([]model.Post, error)
	GetByAuthors(ctx context.Context, authorIDs []int64, limit int) ([]model.Post, error)
	CountByAuthor(ctx context.Context, authorID int64) (int, error)
	Search(ctx context.Context, term string, limit int) ([]model.Post, error)
	// RecentByAuthor and FeedPostIDs return (id, created_at) pairs for the
	// feed cache: backfill on follow and warm on cache miss.
	RecentByAuthor(ctx context.Context, authorID int64, limit int) ([]cache.PostScore, error)
	FeedPostIDs(ctx context.Context, authorIDs []int64, limit int) ([]cache.PostScore, error)
}

// FollowRepository owns the directed follower -> followee edges.
type FollowRepository interface {
	// Create inserts the edge and reports whether a row was actually
	// written; false means the edge already existed.
	Create(ctx context.Context, followerID, followeeID int64) (bool, error)
	Delete(ctx context.Context, followerID, followeeID int64) error
	Exists(ctx context.Context, followerID, followeeID int64) (bool, error)
	CountFollowers(ctx context.Context, userID int64) (int, error)
	CountFollowing(ctx context.Context, userID int64) (int, error)
	Followers(ctx context.Context, userID int64) ([]model.PublicProfile, error)
	Following(ctx context.Context, userID int64) ([]model.PublicProfile, error)
	FollowerIDs(ctx context.Context, userID int64) ([]int64, error)
	FolloweeIDs(ctx context.Context, userID int64) ([]int64, error)
}
