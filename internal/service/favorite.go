package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/transbarber/storefront/internal/models"
)

// FavoriteRepository is interface for interacting with saved products
type FavoriteRepository interface {
	AddFavorite(ctx context.Context, userID, productID uuid.UUID) error
	RemoveFavorite(ctx context.Context, userID, productID uuid.UUID) error
	GetFavoriteProducts(ctx context.Context, userID uuid.UUID) ([]models.Product, error)
}

// FavoriteService implements per-user favorites
type FavoriteService struct {
	repo     FavoriteRepository
	products ProductRepository
}

// NewFavoriteService creates new FavoriteService instance
func NewFavoriteService(repo FavoriteRepository, products ProductRepository) *FavoriteService {
	return &FavoriteService{repo: repo, products: products}
}

// Add marks product as favorite
func (fs *FavoriteService) Add(ctx context.Context, userID, productID uuid.UUID) error {
	if _, err := fs.products.GetProductByID(ctx, productID); err != nil {
		return err
	}
	return fs.repo.AddFavorite(ctx, userID, productID)
}

// Remove unmarks product as favorite
func (fs *FavoriteService) Remove(ctx context.Context, userID, productID uuid.UUID) error {
	return fs.repo.RemoveFavorite(ctx, userID, productID)
}

// List returns user favorite products
func (fs *FavoriteService) List(ctx context.Context, userID uuid.UUID) ([]models.Product, error) {
	return fs.repo.GetFavoriteProducts(ctx, userID)
}
