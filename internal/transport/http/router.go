package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"inkwell/internal/handler"
	"inkwell/internal/httputil"
	"inkwell/internal/service"
	authmw "inkwell/internal/transport/http/middleware"
)

// RouterConfig holds the dependencies needed to create routes
type RouterConfig struct {
	AuthHandler   *handler.AuthHandler
	UserHandler   *handler.UserHandler
	PostHandler   *handler.PostHandler
	FollowHandler *handler.FollowHandler
	FeedHandler   *handler.FeedHandler
	AuthService   *service.AuthService
}

// NewRouter creates and configures a new Chi router with all route groups.
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	// Health check endpoint (useful for deployment/monitoring)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, 200, map[string]string{"status": "ok"})
	})

	requireAuth := authmw.Auth(cfg.AuthService)
	optionalAuth := authmw.OptionalAuth(cfg.AuthService)

	r.Route("/api", func(r chi.Router) {
		// Public routes - no authentication required
		r.Post("/register", cfg.AuthHandler.Register)
		r.Post("/login", cfg.AuthHandler.Login)
		r.Post("/username-exists", cfg.UserHandler.UsernameExists)
		r.Post("/email-exists", cfg.UserHandler.EmailExists)

		// Public reads with optional authentication, so ownership and
		// follow flags resolve for logged-in visitors
		r.Group(func(r chi.Router) {
			r.Use(optionalAuth)

			r.Get("/posts/search", cfg.FeedHandler.Search)
			r.Get("/posts/{id}", cfg.PostHandler.GetByID)
			r.Get("/users/{username}", cfg.UserHandler.GetProfile)
			r.Get("/users/{username}/posts", cfg.PostHandler.GetUserPosts)
			r.Get("/users/{username}/followers", cfg.FollowHandler.GetFollowers)
			r.Get("/users/{username}/following", cfg.FollowHandler.GetFollowing)
		})

		// Protected routes - require authentication
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)

			r.Get("/me", cfg.AuthHandler.Me)
			r.Get("/feed", cfg.FeedHandler.GetFeed)

			r.Post("/posts", cfg.PostHandler.Create)
			r.Put("/posts/{id}", cfg.PostHandler.Update)
			r.Delete("/posts/{id}", cfg.PostHandler.Delete)

			r.Post("/users/{username}/follow", cfg.FollowHandler.Follow)
			r.Delete("/users/{username}/follow", cfg.FollowHandler.Unfollow)
		})
	})

	return r
}
