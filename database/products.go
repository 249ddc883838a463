package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"storefront-api/models"
	"storefront-api/services/catalog"
)

// Images are folded into one column so a product is a single row.
const productColumns = `
	SELECT p.id, p.name, p.price, p.description, p.category,
	       p.font_enabled, p.style_enabled,
	       GROUP_CONCAT(pi.url ORDER BY pi.position SEPARATOR '\n') AS images
	FROM products p
	LEFT JOIN product_images pi ON pi.product_id = p.id
`

const imageSeparator = "\n"

var _ catalog.Catalog = (*Connection)(nil)

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProduct(row rowScanner) (models.Product, error) {
	var p models.Product
	var description, category, images sql.NullString

	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Price,
		&description,
		&category,
		&p.FontEnabled,
		&p.StyleEnabled,
		&images,
	)
	if err != nil {
		return models.Product{}, err
	}

	p.Description = description.String
	p.Category = category.String
	if images.Valid && images.String != "" {
		p.Images = strings.Split(images.String, imageSeparator)
	} else {
		p.Images = []string{}
	}
	return p, nil
}

// GetProducts lists live products, optionally restricted to one category.
func (c *Connection) GetProducts(ctx context.Context, category string) ([]models.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	query := productColumns + ` WHERE p.deleted_at IS NULL`
	var args []interface{}
	if category != "" {
		query += ` AND p.category = ?`
		args = append(args, category)
	}
	query += ` GROUP BY p.id ORDER BY p.id ASC`

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing products: %w", err)
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning product: %w", err)
		}
		products = append(products, p)
	}

	return products, rows.Err()
}

func (c *Connection) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	query := productColumns + ` WHERE p.id = ? AND p.deleted_at IS NULL GROUP BY p.id`

	p, err := scanProduct(c.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, catalog.ErrProductNotFound
		}
		c.logger.Error("error getting product", zap.String("product_id", id), zap.Error(err))
		return nil, fmt.Errorf("error getting product %s: %w", id, err)
	}
	return &p, nil
}

// SaveProduct creates or replaces a product and its images atomically.
// Saving a soft-deleted product brings it back.
func (c *Connection) SaveProduct(ctx context.Context, p models.Product) error {
	tx, err := c.BeginTransaction(ctx)
	if err != nil {
		return err
	}

	if err := tx.UpsertProduct(ctx, p); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.ReplaceProductImages(ctx, p.ID, p.Images); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit product %s: %w", p.ID, err)
	}

	c.logger.Info("product saved", zap.String("product_id", p.ID), zap.Int("images", len(p.Images)))
	return nil
}

// SoftDeleteProduct hides a product from the catalog. Carts that already hold it keep their lines.
func (c *Connection) SoftDeleteProduct(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	result, err := c.db.ExecContext(ctx, `
		UPDATE products SET deleted_at = NOW()
		WHERE id = ? AND deleted_at IS NULL
	`, id)
	if err != nil {
		return fmt.Errorf("error deleting product %s: %w", id, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error getting rows affected: %w", err)
	}
	if rows == 0 {
		return catalog.ErrProductNotFound
	}

	c.logger.Info("product deleted", zap.String("product_id", id))
	return nil
}
