package service

import (
	"context"
	"math"

	"github.com/google/uuid"
	"github.com/transbarber/storefront/internal/models"
)

// CartRepository is interface for interacting with cart data
type CartRepository interface {
	// AddItem adds quantity of product to user cart
	AddItem(ctx context.Context, item *models.CartItem) (*models.CartItem, error)
	// GetItemsByUserID returns user cart with product data
	GetItemsByUserID(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error)
	// UpdateQuantity sets quantity of cart item owned by user
	UpdateQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int32) error
	// DeleteItem removes cart item owned by user
	DeleteItem(ctx context.Context, userID, itemID uuid.UUID) error
	// ClearCart removes all cart items of user
	ClearCart(ctx context.Context, userID uuid.UUID) error
}

// CartService implements per-user cart operations
type CartService struct {
	repo     CartRepository
	products ProductRepository
}

// NewCartService creates new CartService instance
func NewCartService(repo CartRepository, products ProductRepository) *CartService {
	return &CartService{repo: repo, products: products}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Subtotal sums cart item prices times quantities
func Subtotal(items []models.CartItem) float64 {
	sum := 0.0
	for _, item := range items {
		if item.Product == nil {
			continue
		}
		sum += item.Product.Price * float64(item.Quantity)
	}
	return round2(sum)
}

// GetCart returns user cart items with product data
func (cs *CartService) GetCart(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error) {
	return cs.repo.GetItemsByUserID(ctx, userID)
}

// AddItem adds product quantity to user cart
func (cs *CartService) AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int32) (*models.CartItem, error) {
	if quantity <= 0 {
		return nil, models.ErrValidation
	}

	// reject carts referencing products that no longer exist
	if _, err := cs.products.GetProductByID(ctx, productID); err != nil {
		return nil, err
	}

	item := models.CartItem{
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
	}

	return cs.repo.AddItem(ctx, &item)
}

// UpdateQuantity sets quantity of cart item
func (cs *CartService) UpdateQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int32) error {
	if quantity <= 0 {
		return models.ErrValidation
	}
	return cs.repo.UpdateQuantity(ctx, userID, itemID, quantity)
}

// RemoveItem deletes cart item
func (cs *CartService) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) error {
	return cs.repo.DeleteItem(ctx, userID, itemID)
}
