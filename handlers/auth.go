package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"storefront-api/middleware"
	"storefront-api/models"
	"storefront-api/services/auth"
	"storefront-api/utils"
)

// Authenticator signs in back-office accounts.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (*models.AuthResponse, error)
}

type AuthHandler struct {
	auth   Authenticator
	logger *zap.Logger
}

func NewAuthHandler(a Authenticator, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{auth: a, logger: logger}
}

// Login authenticates an admin and returns a bearer token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.AuthRequest
	if err := decodeJSON(w, r, &req); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if err := validate.Struct(req); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	resp, err := h.auth.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		h.logger.Warn("admin login failed", zap.String("username", req.Username), zap.Error(err))

		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			utils.SendErrorResponse(w, http.StatusUnauthorized, "Invalid username or password")
		case errors.Is(err, auth.ErrUserInactive):
			utils.SendErrorResponse(w, http.StatusForbidden, "Account is inactive")
		case errors.Is(err, auth.ErrNotConfigured):
			utils.SendErrorResponse(w, http.StatusServiceUnavailable, "Admin login is disabled")
		default:
			utils.SendErrorResponse(w, http.StatusInternalServerError, "Authentication failed")
		}
		return
	}

	h.logger.Info("admin logged in", zap.String("username", resp.User.Username))

	utils.SendSuccessResponse(w, models.APIResponse{
		Status:  "success",
		Message: "Authentication successful",
		Data:    resp,
	})
}

// Me returns the admin carried by the bearer token.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		utils.SendErrorResponse(w, http.StatusUnauthorized, "Authentication required")
		return
	}
	utils.SendSuccessResponse(w, models.APIResponse{Status: "success", Data: user})
}
