package model

import (
	"errors"
	"time"
)

// User represents a registered account. Email and the password hash never
// leave the server; the avatar URL is derived from the email on read and is
// not a database column.
type User struct {
	ID           int64     `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	Email        string    `db:"email" json:"-"`
	PasswordHash string    `db:"password_hash" json:"-"`
	AvatarURL    string    `db:"-" json:"avatar_url"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// PublicProfile is the subset of a user record safe to show to other users.
// Email is carried only so the avatar can be derived; it is never serialized.
type PublicProfile struct {
	ID        int64  `db:"id" json:"id"`
	Username  string `db:"username" json:"username"`
	Email     string `db:"email" json:"-"`
	AvatarURL string `db:"-" json:"avatar_url"`
}

// ProfileResponse is a public profile enriched with counts and the viewer's
// relationship to it.
type ProfileResponse struct {
	Profile          PublicProfile `json:"profile"`
	PostCount        int           `json:"post_count"`
	FollowerCount    int           `json:"follower_count"`
	FollowingCount   int           `json:"following_count"`
	IsFollowing      bool          `json:"is_following"`
	IsVisitorProfile bool          `json:"is_visitor_profile"`
}

// RegisterRequest is the request body for creating an account.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the request body for logging in.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse returns the authenticated user together with a signed token.
type LoginResponse struct {
	User      *User  `json:"user"`
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"` // seconds
}

var (
	// ErrUserNotFound is returned when a user cannot be found
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidCredentials is returned when login credentials are incorrect
	ErrInvalidCredentials = errors.New("invalid credentials")
)
