package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/transbarber/storefront/internal/models"
	"github.com/transbarber/storefront/internal/repository/postgres"
)

const (
	// concurrent adds of the same product must not lose increments
	upsertCartItemQuery = `
						INSERT INTO cart_items (user_id, product_id, quantity)
						VALUES ($1, $2, $3)
						ON CONFLICT (user_id, product_id) DO UPDATE
						SET quantity = cart_items.quantity + EXCLUDED.quantity
						RETURNING id, user_id, product_id, quantity
`
	selectCartItemsQuery = `
						SELECT ci.id, ci.user_id, ci.product_id, ci.quantity,
							   p.id, p.name, p.description, p.price, p.category, p.stock, p.image_url, p.shipping_cost, p.created_at
						FROM cart_items ci
						JOIN products p ON p.id = ci.product_id
						WHERE ci.user_id = $1
`
	updateCartItemQuery = `
						UPDATE cart_items
						SET quantity = $1
						WHERE id = $2 AND user_id = $3
`
	deleteCartItemQuery = `
						DELETE FROM cart_items
						WHERE id = $1 AND user_id = $2
`
	clearCartQuery = `
						DELETE FROM cart_items
						WHERE user_id = $1
`
)

// CartRepository provides access to per-user cart items
type CartRepository struct {
	db *postgres.DB
}

// NewCartRepository creates new CartRepository instance
func NewCartRepository(db *postgres.DB) *CartRepository {
	return &CartRepository{db: db}
}

// AddItem adds quantity of product to user cart
func (cr *CartRepository) AddItem(ctx context.Context, item *models.CartItem) (*models.CartItem, error) {
	err := cr.db.QueryRow(ctx, upsertCartItemQuery, item.UserID, item.ProductID, item.Quantity).
		Scan(&item.ID, &item.UserID, &item.ProductID, &item.Quantity)
	if err != nil {
		return nil, err
	}

	return item, nil
}

// GetItemsByUserID returns user cart with product data
func (cr *CartRepository) GetItemsByUserID(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error) {
	rows, err := cr.db.Query(ctx, selectCartItemsQuery, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.CartItem{}

	for rows.Next() {
		item := models.CartItem{Product: &models.Product{}}
		err = rows.Scan(&item.ID, &item.UserID, &item.ProductID, &item.Quantity,
			&item.Product.ID, &item.Product.Name, &item.Product.Description, &item.Product.Price,
			&item.Product.Category, &item.Product.Stock, &item.Product.ImageURL,
			&item.Product.ShippingCost, &item.Product.CreatedAt)
		if err != nil {
			continue
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

// UpdateQuantity sets quantity of cart item owned by user
func (cr *CartRepository) UpdateQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int32) error {
	cmd, err := cr.db.Exec(ctx, updateCartItemQuery, quantity, itemID, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.ErrDataNotFound
		}
		return err
	}

	if cmd.RowsAffected() == 0 {
		return models.ErrDataNotFound
	}

	return nil
}

// DeleteItem removes cart item owned by user
func (cr *CartRepository) DeleteItem(ctx context.Context, userID, itemID uuid.UUID) error {
	cmd, err := cr.db.Exec(ctx, deleteCartItemQuery, itemID, userID)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return models.ErrDataNotFound
	}

	return nil
}

// ClearCart removes all cart items of user
func (cr *CartRepository) ClearCart(ctx context.Context, userID uuid.UUID) error {
	_, err := cr.db.Exec(ctx, clearCartQuery, userID)
	return err
}
