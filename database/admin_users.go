package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"storefront-api/models"
)

var ErrAdminNotFound = errors.New("admin user not found")

// FindAdmin looks up an admin by username and hashed passphrase.
func (c *Connection) FindAdmin(ctx context.Context, username, passphraseHash string) (*models.AdminUser, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var admin models.AdminUser
	err := c.db.QueryRowContext(ctx, `
		SELECT username, email, is_active
		FROM admin_users
		WHERE username = ? AND passphrase = ?
	`, username, passphraseHash).Scan(&admin.Username, &admin.Email, &admin.IsActive)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAdminNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &admin, nil
}
