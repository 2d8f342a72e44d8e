package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"inkwell/internal/httputil"
	"inkwell/internal/model"
	"inkwell/internal/service"
	"inkwell/internal/transport/http/middleware"
)

type PostHandler struct {
	postService *service.PostService
	feedService *service.FeedService
}

func NewPostHandler(postService *service.PostService, feedService *service.FeedService) *PostHandler {
	return &PostHandler{
		postService: postService,
		feedService: feedService,
	}
}

// postID parses the {id} route parameter. A malformed id is reported as not
// found: the URL names a post that cannot exist.
func postID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// Create handles POST /api/posts.
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req model.PostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	post, err := h.postService.Create(r.Context(), userID, req)
	if err != nil {
		var vErr *model.ValidationError
		if errors.As(err, &vErr) {
			httputil.WriteValidationError(w, vErr.Messages)
			return
		}
		log.Printf("[ERROR] Create post handler: user=%d err=%v", userID, err)
		httputil.WriteInternalError(w, "Please try again later")
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, post)
}

// GetByID handles GET /api/posts/{id}.
func (h *PostHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := postID(r)
	if !ok {
		httputil.WriteNotFound(w, "Post not found")
		return
	}

	view, err := h.feedService.GetPost(r.Context(), id, middleware.VisitorID(r.Context()))
	if err != nil {
		if errors.Is(err, model.ErrPostNotFound) {
			httputil.WriteNotFound(w, "Post not found")
			return
		}
		log.Printf("[ERROR] Get post handler: post=%d err=%v", id, err)
		httputil.WriteInternalError(w, "Please try again later")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, view)
}

// Update handles PUT /api/posts/{id}.
func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	id, ok := postID(r)
	if !ok {
		httputil.WriteNotFound(w, "Post not found")
		return
	}

	var req model.PostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	err := h.postService.Update(r.Context(), id, userID, req)
	if err != nil {
		var vErr *model.ValidationError
		switch {
		case errors.As(err, &vErr):
			httputil.WriteValidationError(w, vErr.Messages)
		case errors.Is(err, model.ErrPostNotFound):
			httputil.WriteNotFound(w, "Post not found")
		case errors.Is(err, model.ErrNotPostOwner):
			httputil.WriteForbidden(w, "You can only edit your own posts")
		default:
			log.Printf("[ERROR] Update post handler: user=%d post=%d err=%v", userID, id, err)
			httputil.WriteInternalError(w, "Please try again later")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Post updated successfully",
	})
}

// Delete handles DELETE /api/posts/{id}.
func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	id, ok := postID(r)
	if !ok {
		httputil.WriteNotFound(w, "Post not found")
		return
	}

	err := h.postService.Delete(r.Context(), id, userID)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrPostNotFound):
			httputil.WriteNotFound(w, "Post not found")
		case errors.Is(err, model.ErrNotPostOwner):
			httputil.WriteForbidden(w, "You can only delete your own posts")
		default:
			log.Printf("[ERROR] Delete post handler: user=%d post=%d err=%v", userID, id, err)
			httputil.WriteInternalError(w, "Please try again later")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Post deleted successfully",
	})
}

// GetUserPosts handles GET /api/users/{username}/posts.
func (h *PostHandler) GetUserPosts(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	views, err := h.feedService.PostsByUsername(r.Context(), username, middleware.VisitorID(r.Context()))
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			httputil.WriteNotFound(w, "User not found")
			return
		}
		log.Printf("[ERROR] Get user posts handler: username=%q err=%v", username, err)
		httputil.WriteInternalError(w, "Please try again later")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, views)
}
