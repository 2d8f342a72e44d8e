package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"inkwell/internal/model"
	"inkwell/internal/queue"
	"inkwell/internal/repository"
	"inkwell/internal/validation"
)

// stripPolicy removes every tag and attribute, keeping text content only.
var stripPolicy = bluemonday.StrictPolicy()

// PostService handles the post write paths: create, update, delete. Reads go
// through the feed assembler so every view is author-enriched the same way.
type PostService struct {
	postRepo  repository.PostRepository
	publisher queue.Publisher
}

func NewPostService(postRepo repository.PostRepository, publisher queue.Publisher) *PostService {
	return &PostService{
		postRepo:  postRepo,
		publisher: publisher,
	}
}

// Create sanitizes and validates the submission, persists it, and announces
// it for feed fan-out. Nothing is written on validation failure.
func (s *PostService) Create(ctx context.Context, authorID int64, req model.PostRequest) (*model.Post, error) {
	title, body := sanitizeContent(req.Title, req.Body)
	if msgs := validation.PostContent(title, body); len(msgs) > 0 {
		return nil, model.NewValidationError(msgs)
	}

	post := &model.Post{
		AuthorID: authorID,
		Title:    title,
		Body:     body,
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}

	// Best-effort: a lost event only delays follower caches.
	if s.publisher != nil {
		event := queue.NewPostCreatedEvent(post.ID, authorID)
		if _, err := s.publisher.Publish(ctx, queue.StreamFeed, event); err != nil {
			log.Printf("[PostService] publish PostCreated failed: post=%d err=%v", post.ID, err)
		}
	}

	return post, nil
}

// Update re-sanitizes and applies a partial update of title and body. The
// ownership gate runs first: a non-author gets ErrNotPostOwner and no write
// happens. AuthorID and CreatedAt are never touched.
func (s *PostService) Update(ctx context.Context, postID, requestingUserID int64, req model.PostRequest) error {
	ownerID, err := s.postRepo.GetAuthorID(ctx, postID)
	if err != nil {
		return err
	}
	if ownerID != requestingUserID {
		return model.ErrNotPostOwner
	}

	title, body := sanitizeContent(req.Title, req.Body)
	if msgs := validation.PostContent(title, body); len(msgs) > 0 {
		return model.NewValidationError(msgs)
	}

	if err := s.postRepo.UpdateContent(ctx, postID, title, body); err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	return nil
}

// Delete removes a post after the same ownership gate as Update, then
// announces the deletion so follower caches drop it.
func (s *PostService) Delete(ctx context.Context, postID, requestingUserID int64) error {
	ownerID, err := s.postRepo.GetAuthorID(ctx, postID)
	if err != nil {
		return err
	}
	if ownerID != requestingUserID {
		return model.ErrNotPostOwner
	}

	if err := s.postRepo.Delete(ctx, postID); err != nil {
		return fmt.Errorf("delete post: %w", err)
	}

	if s.publisher != nil {
		event := queue.NewPostDeletedEvent(postID, ownerID)
		if _, err := s.publisher.Publish(ctx, queue.StreamFeed, event); err != nil {
			log.Printf("[PostService] publish PostDeleted failed: post=%d err=%v", postID, err)
		}
	}

	return nil
}

// sanitizeContent strips all markup and trims whitespace from both fields.
func sanitizeContent(title, body string) (string, string) {
	return strings.TrimSpace(stripPolicy.Sanitize(title)),
		strings.TrimSpace(stripPolicy.Sanitize(body))
}
