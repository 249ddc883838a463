package database

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-api/models"
	"storefront-api/services/catalog"
)

var productRowColumns = []string{
	"id", "name", "price", "description", "category", "font_enabled", "style_enabled", "images",
}

func newMockConnection(t *testing.T) (*Connection, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return WrapDB(db, nil), mock
}

func TestGetProducts_FiltersByCategory(t *testing.T) {
	conn, mock := newMockConnection(t)

	mock.ExpectQuery(`WHERE p.deleted_at IS NULL AND p.category = \?`).
		WithArgs("hats").
		WillReturnRows(sqlmock.NewRows(productRowColumns).
			AddRow("cap-1", "Dad Cap", 18.5, "Washed cotton", "hats", true, false, "/a.jpg\n/b.jpg").
			AddRow("cap-2", "Trucker", 21.0, nil, "hats", false, false, nil))

	products, err := conn.GetProducts(context.Background(), "hats")
	require.NoError(t, err)
	require.Len(t, products, 2)

	assert.Equal(t, []string{"/a.jpg", "/b.jpg"}, products[0].Images)
	assert.True(t, products[0].FontEnabled)
	assert.Equal(t, "", products[1].Description)
	assert.Empty(t, products[1].Images)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetProducts_AllCategories(t *testing.T) {
	conn, mock := newMockConnection(t)

	mock.ExpectQuery(`WHERE p.deleted_at IS NULL GROUP BY p.id`).
		WithArgs().
		WillReturnRows(sqlmock.NewRows(productRowColumns))

	products, err := conn.GetProducts(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, products)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetProductByID_NotFound(t *testing.T) {
	conn, mock := newMockConnection(t)

	mock.ExpectQuery(`WHERE p.id = \?`).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows(productRowColumns))

	_, err := conn.GetProductByID(context.Background(), "ghost")
	assert.ErrorIs(t, err, catalog.ErrProductNotFound)
}

func TestGetProductByID_QueryErrorIsWrapped(t *testing.T) {
	conn, mock := newMockConnection(t)
	boom := errors.New("connection reset")

	mock.ExpectQuery(`WHERE p.id = \?`).WithArgs("tee").WillReturnError(boom)

	_, err := conn.GetProductByID(context.Background(), "tee")
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, catalog.ErrProductNotFound)
}

func TestSaveProduct_ReplacesImagesInOneTransaction(t *testing.T) {
	conn, mock := newMockConnection(t)
	p := models.Product{ID: "tee", Name: "Classic Tee", Price: 29.99, Images: []string{"/front.jpg", "/back.jpg"}}

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO products`).
		WithArgs("tee", "Classic Tee", 29.99, "", "", false, false).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`DELETE FROM product_images`).WithArgs("tee").WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(`INSERT INTO product_images`).WithArgs("tee", 0, "/front.jpg").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`INSERT INTO product_images`).WithArgs("tee", 1, "/back.jpg").WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	require.NoError(t, conn.SaveProduct(context.Background(), p))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveProduct_RollsBackOnImageFailure(t *testing.T) {
	conn, mock := newMockConnection(t)
	p := models.Product{ID: "tee", Name: "Classic Tee", Price: 29.99, Images: []string{"/front.jpg"}}

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO products`).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`DELETE FROM product_images`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`INSERT INTO product_images`).WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := conn.SaveProduct(context.Background(), p)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSoftDeleteProduct(t *testing.T) {
	conn, mock := newMockConnection(t)

	mock.ExpectExec(`UPDATE products SET deleted_at = NOW\(\)`).
		WithArgs("tee").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE products SET deleted_at = NOW\(\)`).
		WithArgs("tee").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, conn.SoftDeleteProduct(context.Background(), "tee"))
	assert.ErrorIs(t, conn.SoftDeleteProduct(context.Background(), "tee"), catalog.ErrProductNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindAdmin(t *testing.T) {
	conn, mock := newMockConnection(t)

	mock.ExpectQuery(`FROM admin_users`).
		WithArgs("root", "hash").
		WillReturnRows(sqlmock.NewRows([]string{"username", "email", "is_active"}).AddRow("root", "root@example.com", true))
	mock.ExpectQuery(`FROM admin_users`).
		WithArgs("root", "wrong").
		WillReturnRows(sqlmock.NewRows([]string{"username", "email", "is_active"}))

	admin, err := conn.FindAdmin(context.Background(), "root", "hash")
	require.NoError(t, err)
	assert.Equal(t, "root@example.com", admin.Email)
	assert.True(t, admin.IsActive)

	_, err = conn.FindAdmin(context.Background(), "root", "wrong")
	assert.ErrorIs(t, err, ErrAdminNotFound)
}
