package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"

	"inkwell/internal/avatar"
	"inkwell/internal/model"
	"inkwell/internal/repository"
	"inkwell/internal/validation"
)

// UserService handles registration, login and public profile reads.
type UserService struct {
	repo       repository.UserRepository
	postRepo   repository.PostRepository
	followRepo repository.FollowRepository
}

func NewUserService(repo repository.UserRepository, postRepo repository.PostRepository, followRepo repository.FollowRepository) *UserService {
	return &UserService{
		repo:       repo,
		postRepo:   postRepo,
		followRepo: followRepo,
	}
}

// Register creates a new account. Username and email are normalized (trim +
// lowercase) before any rule runs, every failed rule accumulates into one
// ValidationError, and the password is bcrypt-hashed with a fresh salt.
//
// Uniqueness is check-then-act: the probes run here, and the table's unique
// constraints catch the race where two registrations pass the probe at once.
// A losing racer gets the same "already taken" message the probe would have
// produced.
func (s *UserService) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	username := strings.ToLower(strings.TrimSpace(req.Username))
	email := strings.ToLower(strings.TrimSpace(req.Email))

	msgs, err := validation.Registration(ctx, username, email, req.Password, validation.UniquenessProbes{
		UsernameTaken: s.repo.ExistsByUsername,
		EmailTaken:    s.repo.ExistsByEmail,
	})
	if err != nil {
		return nil, fmt.Errorf("validate registration: %w", err)
	}
	if len(msgs) > 0 {
		return nil, model.NewValidationError(msgs)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if msg, ok := uniqueViolationMessage(err); ok {
			return nil, model.NewValidationError([]string{msg})
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	user.AvatarURL = avatar.URL(user.Email)
	return user, nil
}

// Login authenticates by normalized username and password. A missing user
// and a wrong password produce the same error.
func (s *UserService) Login(ctx context.Context, req *model.LoginRequest) (*model.User, error) {
	username := strings.ToLower(strings.TrimSpace(req.Username))

	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, model.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, model.ErrInvalidCredentials
	}

	user.AvatarURL = avatar.URL(user.Email)
	return user, nil
}

// GetByID retrieves a user with their derived avatar.
func (s *UserService) GetByID(ctx context.Context, id int64) (*model.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	user.AvatarURL = avatar.URL(user.Email)
	return user, nil
}

// FindByUsername returns the public-safe projection of a user. Blank input
// is a miss, never a store call.
func (s *UserService) FindByUsername(ctx context.Context, username string) (*model.PublicProfile, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return nil, model.ErrUserNotFound
	}

	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	return &model.PublicProfile{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		AvatarURL: avatar.URL(user.Email),
	}, nil
}

// UsernameExists probes whether a normalized username is taken. Exposed for
// live availability checks during sign-up.
func (s *UserService) UsernameExists(ctx context.Context, username string) (bool, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return false, nil
	}
	return s.repo.ExistsByUsername(ctx, username)
}

// EmailExists probes whether a normalized email is taken.
func (s *UserService) EmailExists(ctx context.Context, email string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return false, nil
	}
	return s.repo.ExistsByEmail(ctx, email)
}

// Profile assembles the public profile page data: the profile itself plus
// post/follower/following counts and the visitor's relationship to it.
func (s *UserService) Profile(ctx context.Context, username string, visitorID int64) (*model.ProfileResponse, error) {
	profile, err := s.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	postCount, err := s.postRepo.CountByAuthor(ctx, profile.ID)
	if err != nil {
		return nil, fmt.Errorf("count posts: %w", err)
	}
	followerCount, err := s.followRepo.CountFollowers(ctx, profile.ID)
	if err != nil {
		return nil, fmt.Errorf("count followers: %w", err)
	}
	followingCount, err := s.followRepo.CountFollowing(ctx, profile.ID)
	if err != nil {
		return nil, fmt.Errorf("count following: %w", err)
	}

	resp := &model.ProfileResponse{
		Profile:          *profile,
		PostCount:        postCount,
		FollowerCount:    followerCount,
		FollowingCount:   followingCount,
		IsVisitorProfile: visitorID != 0 && visitorID == profile.ID,
	}

	if visitorID != 0 && visitorID != profile.ID {
		isFollowing, err := s.followRepo.Exists(ctx, visitorID, profile.ID)
		if err == nil {
			resp.IsFollowing = isFollowing
		}
	}

	return resp, nil
}

// uniqueViolationMessage maps a Postgres 23505 on users to the matching
// taken-field message.
func uniqueViolationMessage(err error) (string, bool) {
	pqErr, ok := err.(*pq.Error)
	if !ok || pqErr.Code != "23505" {
		return "", false
	}
	if strings.Contains(pqErr.Constraint, "email") {
		return "That email is already being used.", true
	}
	return "That username is already taken.", true
}
