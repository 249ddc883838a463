package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"storefront-api/database"
	"storefront-api/models"
)

const AccessTokenDuration = 2 * time.Hour

const adminRole = "admin"

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserInactive       = errors.New("user account inactive")
	ErrTokenExpired       = errors.New("token expired")
	ErrInvalidToken       = errors.New("invalid token")
	ErrNotConfigured      = errors.New("admin authentication is not configured")
)

// AdminStore finds back-office accounts by username and hashed passphrase.
type AdminStore interface {
	FindAdmin(ctx context.Context, username, passphraseHash string) (*models.AdminUser, error)
}

type JWTService struct {
	secretKey []byte
	issuer    string
	admins    AdminStore
	now       func() time.Time
}

type Claims struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

func NewJWTService(secretKey, issuer string, admins AdminStore) *JWTService {
	return &JWTService{
		secretKey: []byte(secretKey),
		issuer:    issuer,
		admins:    admins,
		now:       time.Now,
	}
}

// HashPassphrase is the hex SHA-256 digest stored in admin_users.passphrase.
func HashPassphrase(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

func (j *JWTService) Authenticate(ctx context.Context, username, password string) (*models.AuthResponse, error) {
	if len(j.secretKey) == 0 || j.admins == nil {
		return nil, ErrNotConfigured
	}

	admin, err := j.admins.FindAdmin(ctx, username, HashPassphrase(password))
	if err != nil {
		if errors.Is(err, database.ErrAdminNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !admin.IsActive {
		return nil, ErrUserInactive
	}

	token, expiresAt, err := j.GenerateToken(*admin, AccessTokenDuration)
	if err != nil {
		return nil, fmt.Errorf("error generating access token: %w", err)
	}

	return &models.AuthResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      *admin,
	}, nil
}

func (j *JWTService) GenerateToken(user models.AdminUser, duration time.Duration) (string, time.Time, error) {
	now := j.now()
	expiresAt := now.Add(duration)
	claims := Claims{
		Username: user.Username,
		Email:    user.Email,
		Role:     adminRole,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Username,
			Issuer:    j.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secretKey)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func (j *JWTService) ValidateToken(tokenString string) (*models.AdminUser, error) {
	if len(j.secretKey) == 0 {
		return nil, ErrNotConfigured
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.secretKey, nil
	}, jwt.WithIssuer(j.issuer), jwt.WithTimeFunc(j.now))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Role != adminRole {
		return nil, ErrInvalidToken
	}

	return &models.AdminUser{
		Username: claims.Username,
		Email:    claims.Email,
		IsActive: true,
	}, nil
}
