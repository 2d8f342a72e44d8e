package handler

import (
	"log"
	"net/http"
	"strconv"

	"inkwell/internal/httputil"
	"inkwell/internal/service"
	"inkwell/internal/transport/http/middleware"
)

type FeedHandler struct {
	feedService *service.FeedService
}

func NewFeedHandler(feedService *service.FeedService) *FeedHandler {
	return &FeedHandler{
		feedService: feedService,
	}
}

// GetFeed handles GET /api/feed.
// Returns posts from the authors the authenticated user follows, newest
// first; the user's own posts are not included.
func (h *FeedHandler) GetFeed(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	limit := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil || parsed <= 0 {
			httputil.WriteBadRequest(w, "Invalid limit parameter")
			return
		}
		limit = parsed
	}

	views, err := h.feedService.HomeFeed(r.Context(), userID, limit)
	if err != nil {
		log.Printf("[ERROR] Feed handler: user=%d err=%v", userID, err)
		httputil.WriteInternalError(w, "Please try again later")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, views)
}

// Search handles GET /api/posts/search?q=.
// Public; a blank query returns an empty list.
func (h *FeedHandler) Search(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("q")

	views, err := h.feedService.Search(r.Context(), term, middleware.VisitorID(r.Context()))
	if err != nil {
		log.Printf("[ERROR] Search handler: term=%q err=%v", term, err)
		httputil.WriteInternalError(w, "Please try again later")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, views)
}
