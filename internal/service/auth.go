package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"inkwell/internal/model"
)

// DefaultTokenMaxAge is how long an issued token stays valid: 30 hours,
// in seconds.
const DefaultTokenMaxAge = 30 * 60 * 60

// AuthService issues and verifies the HMAC-signed bearer tokens that carry a
// session. Tokens are stateless: nothing is stored server-side, expiry alone
// ends a session.
type AuthService struct {
	secret []byte
	maxAge time.Duration
}

// NewAuthService builds a token issuer. maxAgeSeconds <= 0 falls back to
// DefaultTokenMaxAge.
func NewAuthService(secret string, maxAgeSeconds int) *AuthService {
	if maxAgeSeconds <= 0 {
		maxAgeSeconds = DefaultTokenMaxAge
	}
	return &AuthService{
		secret: []byte(secret),
		maxAge: time.Duration(maxAgeSeconds) * time.Second,
	}
}

// MaxAgeSeconds reports the configured token lifetime, for response payloads.
func (s *AuthService) MaxAgeSeconds() int {
	return int(s.maxAge / time.Second)
}

// IssueToken signs a token binding the user id until now+maxAge.
func (s *AuthService) IssueToken(userID int64) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": userID,
		"jti":     uuid.New().String(),
		"iat":     now.Unix(),
		"exp":     now.Add(s.maxAge).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ParseToken verifies signature and expiry and returns the embedded user id.
// An expired token is jwt.ErrTokenExpired (wrapped); anything else malformed
// or tampered comes back as a parse error.
func (s *AuthService) ParseToken(tokenString string) (int64, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return 0, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return 0, fmt.Errorf("invalid token claims")
	}

	rawID, ok := claims["user_id"].(float64)
	if !ok || rawID <= 0 {
		return 0, fmt.Errorf("token missing user id")
	}
	return int64(rawID), nil
}

// Authenticate resolves a bearer token to the user id it was issued for,
// mapping every failure mode onto ErrInvalidCredentials for callers that do
// not care why.
func (s *AuthService) Authenticate(tokenString string) (int64, error) {
	userID, err := s.ParseToken(tokenString)
	if err != nil {
		return 0, model.ErrInvalidCredentials
	}
	return userID, nil
}
