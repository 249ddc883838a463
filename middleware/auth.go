package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"storefront-api/models"
	"storefront-api/services/auth"
	"storefront-api/utils"
)

type contextKey string

const UserContextKey contextKey = "user"

// TokenValidator is satisfied by *auth.JWTService.
type TokenValidator interface {
	ValidateToken(token string) (*models.AdminUser, error)
}

// AuthMiddleware rejects requests without a valid admin bearer token.
func AuthMiddleware(validator TokenValidator, logger *zap.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				utils.SendErrorResponse(w, http.StatusUnauthorized, "Missing authorization header")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
				utils.SendErrorResponse(w, http.StatusUnauthorized, "Invalid authorization header format")
				return
			}

			user, err := validator.ValidateToken(strings.TrimSpace(parts[1]))
			if err != nil {
				logger.Warn("token validation failed",
					zap.String("remote_addr", r.RemoteAddr), zap.Error(err))

				message := "Authentication failed"
				switch {
				case errors.Is(err, auth.ErrTokenExpired):
					message = "Token expired"
				case errors.Is(err, auth.ErrInvalidToken):
					message = "Invalid token"
				}
				utils.SendErrorResponse(w, http.StatusUnauthorized, message)
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin must run after AuthMiddleware.
func RequireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := GetUserFromContext(r.Context())
			if user == nil {
				utils.SendErrorResponse(w, http.StatusUnauthorized, "Authentication required")
				return
			}
			if !user.IsActive {
				utils.SendErrorResponse(w, http.StatusForbidden, "Account is inactive")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func GetUserFromContext(ctx context.Context) *models.AdminUser {
	user, ok := ctx.Value(UserContextKey).(*models.AdminUser)
	if !ok {
		return nil
	}
	return user
}
