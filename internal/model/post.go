package model

import (
	"errors"
	"time"
)

// Post is the stored shape of a post. AuthorID and CreatedAt are set once at
// creation and never change; only Title and Body may be updated, and only by
// the author.
type Post struct {
	ID        int64     `db:"id" json:"id"`
	AuthorID  int64     `db:"author_id" json:"-"`
	Title     string    `db:"title" json:"title"`
	Body      string    `db:"body" json:"body"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"-"`
}

// PostView is the public projection of a post: the raw author id is replaced
// by the author's public profile, and IsVisitorOwner tells the caller whether
// the current visitor wrote it. Anonymous visitors (id 0) never own anything.
type PostView struct {
	ID             int64         `json:"id"`
	Title          string        `json:"title"`
	Body           string        `json:"body"`
	CreatedAt      time.Time     `json:"created_at"`
	Author         PublicProfile `json:"author"`
	IsVisitorOwner bool          `json:"is_visitor_owner"`
}

// PostRequest is the request body for creating or updating a post.
type PostRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

var (
	ErrPostNotFound = errors.New("post not found")
	ErrNotPostOwner = errors.New("not the owner of this post")
)
