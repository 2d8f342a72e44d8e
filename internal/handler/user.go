package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"inkwell/internal/httputil"
	"inkwell/internal/model"
	"inkwell/internal/service"
	"inkwell/internal/transport/http/middleware"
)

type UserHandler struct {
	userService *service.UserService
}

func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// GetProfile handles GET /api/users/{username}.
// Public; an authenticated visitor additionally gets the relationship flags.
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	visitorID := middleware.VisitorID(r.Context())

	profile, err := h.userService.Profile(r.Context(), username, visitorID)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			httputil.WriteNotFound(w, "User not found")
			return
		}
		log.Printf("[ERROR] Get profile handler: username=%q err=%v", username, err)
		httputil.WriteInternalError(w, "Please try again later")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, profile)
}

type existsRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

type existsResponse struct {
	Exists bool `json:"exists"`
}

// UsernameExists handles POST /api/username-exists, the live availability
// probe sign-up forms poll while the user types.
func (h *UserHandler) UsernameExists(w http.ResponseWriter, r *http.Request) {
	var req existsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	exists, err := h.userService.UsernameExists(r.Context(), req.Username)
	if err != nil {
		log.Printf("[ERROR] Username exists handler: err=%v", err)
		httputil.WriteInternalError(w, "Please try again later")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, existsResponse{Exists: exists})
}

// EmailExists handles POST /api/email-exists.
func (h *UserHandler) EmailExists(w http.ResponseWriter, r *http.Request) {
	var req existsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	exists, err := h.userService.EmailExists(r.Context(), req.Email)
	if err != nil {
		log.Printf("[ERROR] Email exists handler: err=%v", err)
		httputil.WriteInternalError(w, "Please try again later")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, existsResponse{Exists: exists})
}
