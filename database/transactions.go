package database

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"storefront-api/models"
)

type Transaction struct {
	tx     *sql.Tx
	logger *zap.Logger
}

func (t *Transaction) Commit() error {
	return t.tx.Commit()
}

func (t *Transaction) Rollback() error {
	return t.tx.Rollback()
}

func (t *Transaction) UpsertProduct(ctx context.Context, p models.Product) error {
	query := `
		INSERT INTO products (
			id, name, price, description, category,
			font_enabled, style_enabled, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, NOW())
		ON DUPLICATE KEY UPDATE
			name = VALUES(name),
			price = VALUES(price),
			description = VALUES(description),
			category = VALUES(category),
			font_enabled = VALUES(font_enabled),
			style_enabled = VALUES(style_enabled),
			deleted_at = NULL,
			updated_at = NOW()
	`

	_, err := t.tx.ExecContext(ctx, query,
		p.ID,
		p.Name,
		p.Price,
		p.Description,
		p.Category,
		p.FontEnabled,
		p.StyleEnabled,
	)
	if err != nil {
		t.logger.Error("error saving product", zap.String("product_id", p.ID), zap.Error(err))
		return fmt.Errorf("failed to save product %s: %w", p.ID, err)
	}
	return nil
}

// ReplaceProductImages rewrites the image list of a product, keeping the given order.
func (t *Transaction) ReplaceProductImages(ctx context.Context, productID string, images []string) error {
	if _, err := t.tx.ExecContext(ctx, `DELETE FROM product_images WHERE product_id = ?`, productID); err != nil {
		return fmt.Errorf("failed to clear images of %s: %w", productID, err)
	}

	for i, url := range images {
		_, err := t.tx.ExecContext(ctx, `
			INSERT INTO product_images (product_id, position, url)
			VALUES (?, ?, ?)
		`, productID, i, url)
		if err != nil {
			t.logger.Error("error saving product image",
				zap.String("product_id", productID), zap.Int("position", i), zap.Error(err))
			return fmt.Errorf("failed to save image %d of %s: %w", i, productID, err)
		}
	}
	return nil
}
