package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	logpkg "github.com/notesmith/smart-notes/internal/logger"
	"github.com/notesmith/smart-notes/internal/models"
	"github.com/notesmith/smart-notes/internal/request"
	"github.com/notesmith/smart-notes/internal/services/auth"
)

// SessionCookieName is the cookie set by the OAuth2 callback. Browser
// clients send it instead of an Authorization header.
const SessionCookieName = "session"

// UserLoader loads users during authentication. *database.UserRepository
// satisfies it.
type UserLoader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Auth creates authentication middleware that validates session tokens.
// Tokens are accepted from the Authorization header (Bearer scheme) or
// from the session cookie.
func Auth(tokens *auth.TokenService, users UserLoader, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, err := extractToken(r)
			if err != nil {
				respondAuthError(w, err.Error(), logger)
				return
			}

			claims, err := tokens.Verify(tokenString)
			if err != nil {
				logger.Debug("token_verification_failed",
					zap.String("error", logpkg.SanitizeError(err)),
				)
				respondAuthError(w, "Invalid or expired token", logger)
				return
			}

			userID, err := uuid.Parse(claims.Sub)
			if err != nil {
				respondAuthError(w, "Invalid or expired token", logger)
				return
			}

			ctx := r.Context()
			user, err := users.GetByID(ctx, userID)
			if err != nil {
				// The subject of a valid token should exist; treat a missing
				// user the same as a bad token rather than leaking state.
				logger.Warn("authenticated_user_not_found",
					zap.String("user_id", userID.String()),
					zap.String("error", logpkg.SanitizeError(err)),
				)
				respondAuthError(w, "Invalid or expired token", logger)
				return
			}

			if !user.Active {
				respondForbidden(w, "Account is disabled", logger)
				return
			}

			next.ServeHTTP(w, r.WithContext(request.WithUser(ctx, user)))
		})
	}
}

type authError struct{ msg string }

func (e *authError) Error() string { return e.msg }

func extractToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return "", &authError{"Invalid Authorization header format"}
		}
		return parts[1], nil
	}

	cookie, err := r.Cookie(SessionCookieName)
	if err == nil && cookie.Value != "" {
		return cookie.Value, nil
	}

	return "", &authError{"Missing credentials"}
}

func respondAuthError(w http.ResponseWriter, message string, logger *zap.Logger) {
	respondStatusJSON(w, http.StatusUnauthorized, message, logger)
}

func respondForbidden(w http.ResponseWriter, message string, logger *zap.Logger) {
	respondStatusJSON(w, http.StatusForbidden, message, logger)
}

func respondStatusJSON(w http.ResponseWriter, status int, message string, logger *zap.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]any{
		"success": false,
		"error":   message,
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.Error("failed_to_encode_error_response", zap.Error(err))
	}
}
