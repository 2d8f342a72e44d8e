package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"inkwell/internal/httputil"
	"inkwell/internal/model"
	"inkwell/internal/service"
	"inkwell/internal/transport/http/middleware"
)

type FollowHandler struct {
	followService *service.FollowService
	userService   *service.UserService
}

func NewFollowHandler(followService *service.FollowService, userService *service.UserService) *FollowHandler {
	return &FollowHandler{
		followService: followService,
		userService:   userService,
	}
}

// resolveUsername maps the {username} route parameter to a user id.
func (h *FollowHandler) resolveUsername(w http.ResponseWriter, r *http.Request) (int64, bool) {
	username := chi.URLParam(r, "username")

	profile, err := h.userService.FindByUsername(r.Context(), username)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			httputil.WriteNotFound(w, "User not found")
			return 0, false
		}
		log.Printf("[ERROR] Resolve username handler: username=%q err=%v", username, err)
		httputil.WriteInternalError(w, "Please try again later")
		return 0, false
	}
	return profile.ID, true
}

// Follow handles POST /api/users/{username}/follow.
func (h *FollowHandler) Follow(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	followeeID, ok := h.resolveUsername(w, r)
	if !ok {
		return
	}

	err := h.followService.Follow(r.Context(), userID, followeeID)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrCannotFollowSelf):
			httputil.WriteBadRequest(w, "You cannot follow yourself")
		case errors.Is(err, model.ErrAlreadyFollowing):
			httputil.WriteConflict(w, "You are already following this user")
		case errors.Is(err, model.ErrUserNotFound):
			httputil.WriteNotFound(w, "User not found")
		default:
			log.Printf("[ERROR] Follow handler: follower=%d followee=%d err=%v", userID, followeeID, err)
			httputil.WriteInternalError(w, "Please try again later")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Followed successfully",
	})
}

// Unfollow handles DELETE /api/users/{username}/follow.
func (h *FollowHandler) Unfollow(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	followeeID, ok := h.resolveUsername(w, r)
	if !ok {
		return
	}

	err := h.followService.Unfollow(r.Context(), userID, followeeID)
	if err != nil {
		if errors.Is(err, model.ErrNotFollowing) {
			httputil.WriteNotFound(w, "You are not following this user")
			return
		}
		log.Printf("[ERROR] Unfollow handler: follower=%d followee=%d err=%v", userID, followeeID, err)
		httputil.WriteInternalError(w, "Please try again later")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Unfollowed successfully",
	})
}

// GetFollowers handles GET /api/users/{username}/followers.
func (h *FollowHandler) GetFollowers(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.resolveUsername(w, r)
	if !ok {
		return
	}

	profiles, err := h.followService.Followers(r.Context(), userID)
	if err != nil {
		log.Printf("[ERROR] Get followers handler: user=%d err=%v", userID, err)
		httputil.WriteInternalError(w, "Please try again later")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, profiles)
}

// GetFollowing handles GET /api/users/{username}/following.
func (h *FollowHandler) GetFollowing(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.resolveUsername(w, r)
	if !ok {
		return
	}

	profiles, err := h.followService.Following(r.Context(), userID)
	if err != nil {
		log.Printf("[ERROR] Get following handler: user=%d err=%v", userID, err)
		httputil.WriteInternalError(w, "Please try again later")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, profiles)
}
