package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"inkwell/internal/httputil"
	"inkwell/internal/model"
	"inkwell/internal/service"
	"inkwell/internal/transport/http/middleware"
)

type AuthHandler struct {
	userService *service.UserService
	authService *service.AuthService
}

func NewAuthHandler(userService *service.UserService, authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		authService: authService,
	}
}

// Register handles POST /api/register.
// A successful registration logs the user straight in: the response carries a
// signed token alongside the new account.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	user, err := h.userService.Register(r.Context(), &req)
	if err != nil {
		var vErr *model.ValidationError
		if errors.As(err, &vErr) {
			httputil.WriteValidationError(w, vErr.Messages)
			return
		}
		log.Printf("[ERROR] Register handler: username=%q err=%v", req.Username, err)
		httputil.WriteInternalError(w, "Please try again later")
		return
	}

	token, err := h.authService.IssueToken(user.ID)
	if err != nil {
		log.Printf("[ERROR] Register handler: issue token user=%d err=%v", user.ID, err)
		httputil.WriteInternalError(w, "Please try again later")
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, model.LoginResponse{
		User:      user,
		Token:     token,
		ExpiresIn: h.authService.MaxAgeSeconds(),
	})
}

// Login handles POST /api/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	user, err := h.userService.Login(r.Context(), &req)
	if err != nil {
		if errors.Is(err, model.ErrInvalidCredentials) {
			httputil.WriteUnauthorized(w, "Invalid username or password")
			return
		}
		log.Printf("[ERROR] Login handler: username=%q err=%v", req.Username, err)
		httputil.WriteInternalError(w, "Please try again later")
		return
	}

	token, err := h.authService.IssueToken(user.ID)
	if err != nil {
		log.Printf("[ERROR] Login handler: issue token user=%d err=%v", user.ID, err)
		httputil.WriteInternalError(w, "Please try again later")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, model.LoginResponse{
		User:      user,
		Token:     token,
		ExpiresIn: h.authService.MaxAgeSeconds(),
	})
}

// Me handles GET /api/me.
// Returns the account behind the presented token.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	user, err := h.userService.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			// Token outlived the account.
			httputil.WriteUnauthorized(w, "Account no longer exists")
			return
		}
		log.Printf("[ERROR] Me handler: user=%d err=%v", userID, err)
		httputil.WriteInternalError(w, "Please try again later")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, user)
}
