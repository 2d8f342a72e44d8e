package service

import (
	"context"
	"errors"
	"testing"

	"inkwell/internal/model"
	"inkwell/internal/queue"
)

// =============================================================================
// CREATE TESTS
// =============================================================================

func TestPostService_Create_Success(t *testing.T) {
	mockPosts := &mockPostRepository{}
	pub := &mockPublisher{}
	svc := NewPostService(mockPosts, pub)

	post, err := svc.Create(context.Background(), 7, model.PostRequest{
		Title: "  First post  ",
		Body:  "Hello world",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if post.Title != "First post" {
		t.Errorf("title = %q, want trimmed %q", post.Title, "First post")
	}
	if post.AuthorID != 7 {
		t.Errorf("author id = %d, want 7", post.AuthorID)
	}

	events := pub.eventsOfType(queue.EventPostCreated)
	if len(events) != 1 {
		t.Fatalf("published %d post_created events, want 1", len(events))
	}
	if events[0].PostID != post.ID || events[0].AuthorID != 7 {
		t.Errorf("event = %+v, want post=%d author=7", events[0], post.ID)
	}
}

func TestPostService_Create_StripsMarkup(t *testing.T) {
	mockPosts := &mockPostRepository{}
	svc := NewPostService(mockPosts, &mockPublisher{})

	post, err := svc.Create(context.Background(), 1, model.PostRequest{
		Title: "<h1>Big</h1> news",
		Body:  "<b>Hello</b> world<script>alert(1)</script>",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if post.Title != "Big news" {
		t.Errorf("title = %q, want %q", post.Title, "Big news")
	}
	if post.Body != "Hello world" {
		t.Errorf("body = %q, want %q", post.Body, "Hello world")
	}
}

func TestPostService_Create_Validation(t *testing.T) {
	tests := []struct {
		name     string
		req      model.PostRequest
		wantMsgs []string
	}{
		{
			name:     "both blank",
			req:      model.PostRequest{},
			wantMsgs: []string{"You must provide a title.", "You must provide post content."},
		},
		{
			name:     "missing body",
			req:      model.PostRequest{Title: "A title"},
			wantMsgs: []string{"You must provide post content."},
		},
		{
			name: "markup-only content is empty after sanitizing",
			req:  model.PostRequest{Title: "<b></b>", Body: "<i>  </i>"},
			wantMsgs: []string{
				"You must provide a title.",
				"You must provide post content.",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockPosts := &mockPostRepository{}
			svc := NewPostService(mockPosts, &mockPublisher{})

			_, err := svc.Create(context.Background(), 1, tt.req)

			var vErr *model.ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("error = %v, want ValidationError", err)
			}
			if len(vErr.Messages) != len(tt.wantMsgs) {
				t.Fatalf("messages = %v, want %v", vErr.Messages, tt.wantMsgs)
			}
			for i, want := range tt.wantMsgs {
				if vErr.Messages[i] != want {
					t.Errorf("message[%d] = %q, want %q", i, vErr.Messages[i], want)
				}
			}
			if len(mockPosts.createCalls) != 0 {
				t.Error("nothing should be written on validation failure")
			}
		})
	}
}

// =============================================================================
// OWNERSHIP GATE TESTS
// =============================================================================

func TestPostService_Update_NotOwner(t *testing.T) {
	mockPosts := &mockPostRepository{
		getAuthorIDFn: func(ctx context.Context, postID int64) (int64, error) {
			return 7, nil
		},
	}
	svc := NewPostService(mockPosts, &mockPublisher{})

	err := svc.Update(context.Background(), 1, 9, model.PostRequest{Title: "New", Body: "Body"})
	if !errors.Is(err, model.ErrNotPostOwner) {
		t.Errorf("error = %v, want ErrNotPostOwner", err)
	}
	if len(mockPosts.updateCalls) != 0 {
		t.Error("no write should happen for a non-owner")
	}
}

func TestPostService_Update_Owner(t *testing.T) {
	mockPosts := &mockPostRepository{
		getAuthorIDFn: func(ctx context.Context, postID int64) (int64, error) {
			return 7, nil
		},
		updateContentFn: func(ctx context.Context, postID int64, title, body string) error {
			if title != "New title" || body != "New body" {
				t.Errorf("update got (%q, %q), want sanitized values", title, body)
			}
			return nil
		},
	}
	svc := NewPostService(mockPosts, &mockPublisher{})

	err := svc.Update(context.Background(), 1, 7, model.PostRequest{
		Title: " <em>New title</em> ",
		Body:  "New body",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mockPosts.updateCalls) != 1 {
		t.Errorf("update called %d times, want 1", len(mockPosts.updateCalls))
	}
}

func TestPostService_Update_MissingPost(t *testing.T) {
	mockPosts := &mockPostRepository{
		getAuthorIDFn: func(ctx context.Context, postID int64) (int64, error) {
			return 0, model.ErrPostNotFound
		},
	}
	svc := NewPostService(mockPosts, &mockPublisher{})

	err := svc.Update(context.Background(), 99, 7, model.PostRequest{Title: "T", Body: "B"})
	if !errors.Is(err, model.ErrPostNotFound) {
		t.Errorf("error = %v, want ErrPostNotFound", err)
	}
}

func TestPostService_Delete(t *testing.T) {
	tests := []struct {
		name       string
		requesting int64
		wantErr    error
		wantDelete bool
	}{
		{name: "owner deletes", requesting: 7, wantErr: nil, wantDelete: true},
		{name: "non-owner rejected", requesting: 9, wantErr: model.ErrNotPostOwner, wantDelete: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockPosts := &mockPostRepository{
				getAuthorIDFn: func(ctx context.Context, postID int64) (int64, error) {
					return 7, nil
				},
			}
			pub := &mockPublisher{}
			svc := NewPostService(mockPosts, pub)

			err := svc.Delete(context.Background(), 42, tt.requesting)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("error = %v, want %v", err, tt.wantErr)
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}

			gotDelete := len(mockPosts.deleteCalls) == 1
			if gotDelete != tt.wantDelete {
				t.Errorf("delete called = %v, want %v", gotDelete, tt.wantDelete)
			}

			events := pub.eventsOfType(queue.EventPostDeleted)
			if tt.wantDelete && len(events) != 1 {
				t.Errorf("published %d post_deleted events, want 1", len(events))
			}
			if !tt.wantDelete && len(events) != 0 {
				t.Errorf("no event should be published on a rejected delete")
			}
		})
	}
}

func TestPostService_Create_PublishFailureIsNotFatal(t *testing.T) {
	mockPosts := &mockPostRepository{}
	svc := NewPostService(mockPosts, &mockPublisher{failAll: true})

	post, err := svc.Create(context.Background(), 1, model.PostRequest{Title: "T", Body: "B"})
	if err != nil {
		t.Fatalf("a publish failure must not fail the create: %v", err)
	}
	if post == nil || post.ID == 0 {
		t.Error("post should still be persisted")
	}
}
