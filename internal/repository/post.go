package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"inkwell/internal/cache"
	"inkwell/internal/model"
)

type postRepository struct {
	db *sqlx.DB
}

func NewPostRepository(db *sqlx.DB) PostRepository {
	return &postRepository{db: db}
}

// Create inserts a new post. Title and body arrive already sanitized; the
// repository never touches content.
func (r *postRepository) Create(ctx context.Context, p *model.Post) error {
	query := `
		INSERT INTO posts (author_id, title, body)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRowxContext(ctx, query, p.AuthorID, p.Title, p.Body).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert post: %w", err)
	}

	return nil
}

func (r *postRepository) GetByID(ctx context.Context, postID int64) (*model.Post, error) {
	query := `
		SELECT id, author_id, title, body, created_at, updated_at
		FROM posts
		WHERE id = $1
	`

	var p model.Post
	err := r.db.GetContext(ctx, &p, query, postID)
	if err == sql.ErrNoRows {
		return nil, model.ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}

	return &p, nil
}

// GetByIDs retrieves a batch of posts and re-orders them to match the input
// id order. Used when hydrating a cached feed, where the cache already
// decided the ordering.
func (r *postRepository) GetByIDs(ctx context.Context, postIDs []int64) ([]model.Post, error) {
	if len(postIDs) == 0 {
		return []model.Post{}, nil
	}

	query := `
		SELECT id, author_id, title, body, created_at, updated_at
		FROM posts
		WHERE id = ANY($1)
	`

	var posts []model.Post
	err := r.db.SelectContext(ctx, &posts, query, pq.Array(postIDs))
	if err != nil {
		return nil, fmt.Errorf("get posts by ids: %w", err)
	}

	byID := make(map[int64]model.Post, len(posts))
	for _, p := range posts {
		byID[p.ID] = p
	}
	ordered := make([]model.Post, 0, len(postIDs))
	for _, id := range postIDs {
		if p, ok := byID[id]; ok {
			ordered = append(ordered, p)
		}
	}

	return ordered, nil
}

// GetAuthorID resolves just the owner of a post, for ownership gates.
func (r *postRepository) GetAuthorID(ctx context.Context, postID int64) (int64, error) {
	var authorID int64
	err := r.db.GetContext(ctx, &authorID, `SELECT author_id FROM posts WHERE id = $1`, postID)
	if err == sql.ErrNoRows {
		return 0, model.ErrPostNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("get author id: %w", err)
	}
	return authorID, nil
}

// UpdateContent applies a partial update of title and body only. author_id
// and created_at are deliberately outside the SET list.
func (r *postRepository) UpdateContent(ctx context.Context, postID int64, title, body string) error {
	query := `UPDATE posts SET title = $1, body = $2, updated_at = NOW() WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, title, body, postID)
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrPostNotFound
	}
	return nil
}

func (r *postRepository) Delete(ctx context.Context, postID int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, postID)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrPostNotFound
	}
	return nil
}

func (r *postRepository) GetByAuthor(ctx context.Context, authorID int64) ([]model.Post, error) {
	query := `
		SELECT id, author_id, title, body, created_at, updated_at
		FROM posts
		WHERE author_id = $1
		ORDER BY created_at DESC, id DESC
	`

	var posts []model.Post
	err := r.db.SelectContext(ctx, &posts, query, authorID)
	if err != nil {
		return nil, fmt.Errorf("get posts by author: %w", err)
	}

	return posts, nil
}

// GetByAuthors is the home-feed match step: posts whose author is in the
// followed set, newest first.
func (r *postRepository) GetByAuthors(ctx context.Context, authorIDs []int64, limit int) ([]model.Post, error) {
	if len(authorIDs) == 0 {
		return []model.Post{}, nil
	}

	query := `
		SELECT id, author_id, title, body, created_at, updated_at
		FROM posts
		WHERE author_id = ANY($1)
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`

	var posts []model.Post
	err := r.db.SelectContext(ctx, &posts, query, pq.Array(authorIDs), limit)
	if err != nil {
		return nil, fmt.Errorf("get posts by authors: %w", err)
	}

	return posts, nil
}

func (r *postRepository) CountByAuthor(ctx context.Context, authorID int64) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM posts WHERE author_id = $1`, authorID)
	if err != nil {
		return 0, fmt.Errorf("count posts by author: %w", err)
	}
	return count, nil
}

// Search runs Postgres full-text search over title and body, ordered by
// relevance. Ties fall back to the same created_at DESC, id DESC order every
// other listing uses.
func (r *postRepository) Search(ctx context.Context, term string, limit int) ([]model.Post, error) {
	if strings.TrimSpace(term) == "" {
		return []model.Post{}, nil
	}

	query := `
		SELECT id, author_id, title, body, created_at, updated_at
		FROM posts
		WHERE to_tsvector('english', title || ' ' || body) @@ plainto_tsquery('english', $1)
		ORDER BY ts_rank(to_tsvector('english', title || ' ' || body), plainto_tsquery('english', $1)) DESC,
		         created_at DESC, id DESC
		LIMIT $2
	`

	var posts []model.Post
	err := r.db.SelectContext(ctx, &posts, query, term, limit)
	if err != nil {
		return nil, fmt.Errorf("search posts: %w", err)
	}

	return posts, nil
}

// RecentByAuthor returns (id, created_at) pairs for one author, newest
// first. Feeds the cache backfill when someone follows that author.
func (r *postRepository) RecentByAuthor(ctx context.Context, authorID int64, limit int) ([]cache.PostScore, error) {
	query := `
		SELECT id, EXTRACT(EPOCH FROM created_at)::bigint AS created_at
		FROM posts
		WHERE author_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	return r.selectPostScores(ctx, query, authorID, limit)
}

// FeedPostIDs returns (id, created_at) pairs across a set of authors, newest
// first. Feeds cache warming on a feed-cache miss.
func (r *postRepository) FeedPostIDs(ctx context.Context, authorIDs []int64, limit int) ([]cache.PostScore, error) {
	if len(authorIDs) == 0 {
		return []cache.PostScore{}, nil
	}

	query := `
		SELECT id, EXTRACT(EPOCH FROM created_at)::bigint AS created_at
		FROM posts
		WHERE author_id = ANY($1)
		ORDER BY created_at DESC
		LIMIT $2
	`
	return r.selectPostScores(ctx, query, pq.Array(authorIDs), limit)
}

func (r *postRepository) selectPostScores(ctx context.Context, query string, args ...interface{}) ([]cache.PostScore, error) {
	type row struct {
		ID        int64 `db:"id"`
		CreatedAt int64 `db:"created_at"`
	}
	var rows []row
	err := r.db.SelectContext(ctx, &rows, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select post scores: %w", err)
	}

	scores := make([]cache.PostScore, len(rows))
	for i, rw := range rows {
		scores[i] = cache.PostScore{PostID: rw.ID, CreatedAt: rw.CreatedAt}
	}
	return scores, nil
}
