package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/transbarber/storefront/internal/models"
	"github.com/transbarber/storefront/internal/repository/postgres"
)

const (
	insertFavoriteQuery = `
						INSERT INTO favorites (user_id, product_id)
						VALUES ($1, $2)
						ON CONFLICT (user_id, product_id) DO NOTHING
`
	deleteFavoriteQuery = `
						DELETE FROM favorites
						WHERE user_id = $1 AND product_id = $2
`
	selectFavoriteProductsQuery = `
						SELECT p.id, p.name, p.description, p.price, p.category, p.stock, p.image_url, p.shipping_cost, p.created_at
						FROM favorites f
						JOIN products p ON p.id = f.product_id
						WHERE f.user_id = $1
						ORDER BY f.created_at DESC
`
)

// FavoriteRepository provides access to per-user saved products
type FavoriteRepository struct {
	db *postgres.DB
}

// NewFavoriteRepository creates new FavoriteRepository instance
func NewFavoriteRepository(db *postgres.DB) *FavoriteRepository {
	return &FavoriteRepository{db: db}
}

// AddFavorite marks product as favorite for user
func (fr *FavoriteRepository) AddFavorite(ctx context.Context, userID, productID uuid.UUID) error {
	_, err := fr.db.Exec(ctx, insertFavoriteQuery, userID, productID)
	return err
}

// RemoveFavorite unmarks product as favorite for user
func (fr *FavoriteRepository) RemoveFavorite(ctx context.Context, userID, productID uuid.UUID) error {
	cmd, err := fr.db.Exec(ctx, deleteFavoriteQuery, userID, productID)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return models.ErrDataNotFound
	}

	return nil
}

// GetFavoriteProducts returns products saved by user
func (fr *FavoriteRepository) GetFavoriteProducts(ctx context.Context, userID uuid.UUID) ([]models.Product, error) {
	rows, err := fr.db.Query(ctx, selectFavoriteProductsQuery, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []models.Product{}

	for rows.Next() {
		product := models.Product{}
		err = rows.Scan(&product.ID, &product.Name, &product.Description, &product.Price, &product.Category,
			&product.Stock, &product.ImageURL, &product.ShippingCost, &product.CreatedAt)
		if err != nil {
			continue
		}
		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return products, nil
}
