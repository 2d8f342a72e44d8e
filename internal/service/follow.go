package service

import (
	"context"
	"fmt"
	"log"

	"inkwell/internal/avatar"
	"inkwell/internal/model"
	"inkwell/internal/queue"
	"inkwell/internal/repository"
)

// FollowService owns the social graph operations.
type FollowService struct {
	followRepo repository.FollowRepository
	userRepo   repository.UserRepository
	publisher  queue.Publisher
}

func NewFollowService(followRepo repository.FollowRepository, userRepo repository.UserRepository, publisher queue.Publisher) *FollowService {
	return &FollowService{
		followRepo: followRepo,
		userRepo:   userRepo,
		publisher:  publisher,
	}
}

// Follow creates the directed edge. Self-follow and duplicate edges are
// rejected; the followee must exist.
func (s *FollowService) Follow(ctx context.Context, followerID, followeeID int64) error {
	if followerID == followeeID {
		return model.ErrCannotFollowSelf
	}

	if _, err := s.userRepo.GetByID(ctx, followeeID); err != nil {
		return err
	}

	inserted, err := s.followRepo.Create(ctx, followerID, followeeID)
	if err != nil {
		return err
	}
	if !inserted {
		return model.ErrAlreadyFollowing
	}

	if s.publisher != nil {
		event := queue.NewUserFollowedEvent(followerID, followeeID)
		if _, err := s.publisher.Publish(ctx, queue.StreamFeed, event); err != nil {
			log.Printf("[FollowService] publish UserFollowed failed: follower=%d followee=%d err=%v",
				followerID, followeeID, err)
		}
	}

	return nil
}

// Unfollow removes the edge; a missing edge is ErrNotFollowing.
func (s *FollowService) Unfollow(ctx context.Context, followerID, followeeID int64) error {
	if err := s.followRepo.Delete(ctx, followerID, followeeID); err != nil {
		return err
	}

	if s.publisher != nil {
		event := queue.NewUserUnfollowedEvent(followerID, followeeID)
		if _, err := s.publisher.Publish(ctx, queue.StreamFeed, event); err != nil {
			log.Printf("[FollowService] publish UserUnfollowed failed: follower=%d followee=%d err=%v",
				followerID, followeeID, err)
		}
	}

	return nil
}

// IsFollowing reports whether follower currently follows followee.
func (s *FollowService) IsFollowing(ctx context.Context, followerID, followeeID int64) (bool, error) {
	return s.followRepo.Exists(ctx, followerID, followeeID)
}

func (s *FollowService) CountFollowers(ctx context.Context, userID int64) (int, error) {
	return s.followRepo.CountFollowers(ctx, userID)
}

func (s *FollowService) CountFollowing(ctx context.Context, userID int64) (int, error) {
	return s.followRepo.CountFollowing(ctx, userID)
}

// Followers lists the public profiles following userID, newest edge first.
func (s *FollowService) Followers(ctx context.Context, userID int64) ([]model.PublicProfile, error) {
	profiles, err := s.followRepo.Followers(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get followers: %w", err)
	}
	return withAvatars(profiles), nil
}

// Following lists the public profiles userID follows, newest edge first.
func (s *FollowService) Following(ctx context.Context, userID int64) ([]model.PublicProfile, error) {
	profiles, err := s.followRepo.Following(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get following: %w", err)
	}
	return withAvatars(profiles), nil
}

func withAvatars(profiles []model.PublicProfile) []model.PublicProfile {
	for i := range profiles {
		profiles[i].AvatarURL = avatar.URL(profiles[i].Email)
	}
	return profiles
}
