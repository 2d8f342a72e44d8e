package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"inkwell/internal/model"
)

type followRepository struct {
	db *sqlx.DB
}

func NewFollowRepository(db *sqlx.DB) FollowRepository {
	return &followRepository{db: db}
}

// Create inserts the edge. The composite primary key plus ON CONFLICT DO
// NOTHING makes duplicate follows a no-op; the rows-affected count tells the
// caller whether anything was written.
func (r *followRepository) Create(ctx context.Context, followerID, followeeID int64) (bool, error) {
	query := `
		INSERT INTO follows (follower_id, followee_id)
		VALUES ($1, $2)
		ON CONFLICT (follower_id, followee_id) DO NOTHING
	`
	result, err := r.db.ExecContext(ctx, query, followerID, followeeID)
	if err != nil {
		return false, fmt.Errorf("create follow: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("get rows affected: %w", err)
	}

	return rows > 0, nil
}

func (r *followRepository) Delete(ctx context.Context, followerID, followeeID int64) error {
	query := `DELETE FROM follows WHERE follower_id = $1 AND followee_id = $2`
	result, err := r.db.ExecContext(ctx, query, followerID, followeeID)
	if err != nil {
		return fmt.Errorf("delete follow: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrNotFollowing
	}

	return nil
}

func (r *followRepository) Exists(ctx context.Context, followerID, followeeID int64) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM follows WHERE follower_id = $1 AND followee_id = $2)`
	var exists bool
	err := r.db.GetContext(ctx, &exists, query, followerID, followeeID)
	if err != nil {
		return false, fmt.Errorf("check follow existence: %w", err)
	}
	return exists, nil
}

func (r *followRepository) CountFollowers(ctx context.Context, userID int64) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM follows WHERE followee_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("count followers: %w", err)
	}
	return count, nil
}

func (r *followRepository) CountFollowing(ctx context.Context, userID int64) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM follows WHERE follower_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("count following: %w", err)
	}
	return count, nil
}

// Followers lists the profiles following userID, newest edge first. Email
// rides along only so the service can derive avatars.
func (r *followRepository) Followers(ctx context.Context, userID int64) ([]model.PublicProfile, error) {
	query := `
		SELECT u.id, u.username, u.email
		FROM follows f
		JOIN users u ON u.id = f.follower_id
		WHERE f.followee_id = $1
		ORDER BY f.created_at DESC
	`

	var profiles []model.PublicProfile
	err := r.db.SelectContext(ctx, &profiles, query, userID)
	if err != nil {
		return nil, fmt.Errorf("get followers: %w", err)
	}

	return profiles, nil
}

func (r *followRepository) Following(ctx context.Context, userID int64) ([]model.PublicProfile, error) {
	query := `
		SELECT u.id, u.username, u.email
		FROM follows f
		JOIN users u ON u.id = f.followee_id
		WHERE f.follower_id = $1
		ORDER BY f.created_at DESC
	`

	var profiles []model.PublicProfile
	err := r.db.SelectContext(ctx, &profiles, query, userID)
	if err != nil {
		return nil, fmt.Errorf("get following: %w", err)
	}

	return profiles, nil
}

func (r *followRepository) FollowerIDs(ctx context.Context, userID int64) ([]int64, error) {
	var ids []int64
	err := r.db.SelectContext(ctx, &ids, `SELECT follower_id FROM follows WHERE followee_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("get follower ids: %w", err)
	}
	return ids, nil
}

func (r *followRepository) FolloweeIDs(ctx context.Context, userID int64) ([]int64, error) {
	var ids []int64
	err := r.db.SelectContext(ctx, &ids, `SELECT followee_id FROM follows WHERE follower_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("get followee ids: %w", err)
	}
	return ids, nil
}
