package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"rolecoach/internal/apperr"
	"rolecoach/internal/model"
)

type contextKey string

const (
	TrainerIDKey contextKey = "trainerId"
	RequestIDKey contextKey = "requestId"
)

// TokenValidator validates trainer tokens
type TokenValidator interface {
	ValidateTrainerToken(token string) (*model.TrainerClaims, error)
}

// AuthMiddleware provides JWT authentication middleware
type AuthMiddleware struct {
	auth TokenValidator
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(auth TokenValidator) *AuthMiddleware {
	return &AuthMiddleware{auth: auth}
}

// RequireTrainer validates the trainer JWT from the Authorization header
func (m *AuthMiddleware) RequireTrainer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractBearerToken(r)
		if token == "" {
			writeUnauthorized(w, "missing authorization header")
			return
		}

		claims, err := m.auth.ValidateTrainerToken(token)
		if err != nil {
			writeUnauthorized(w, "invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), TrainerIDKey, claims.TrainerID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetTrainerID extracts trainer ID from context
func GetTrainerID(ctx context.Context) string {
	if v, ok := ctx.Value(TrainerIDKey).(string); ok {
		return v
	}
	return ""
}

func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(apperr.Unauthorized(message))
}
