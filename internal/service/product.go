package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/transbarber/storefront/internal/cache"
	"github.com/transbarber/storefront/internal/logger"
	"github.com/transbarber/storefront/internal/models"
	"go.uber.org/zap"
)

// ProductRepository is interface for interacting with product catalog
type ProductRepository interface {
	// CreateProduct inserts new product to database
	CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error)
	// GetProducts returns products, optionally filtered by category
	GetProducts(ctx context.Context, category string) ([]models.Product, error)
	// GetProductByID returns product by id
	GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	// UpdateProduct updates product fields
	UpdateProduct(ctx context.Context, product *models.Product) (*models.Product, error)
	// DeleteProduct removes product from catalog
	DeleteProduct(ctx context.Context, id uuid.UUID) error
}

// ProductService implements catalog reads behind a cache and admin mutations
type ProductService struct {
	repo  ProductRepository
	cache cache.ProductCache
}

// NewProductService creates new ProductService instance
func NewProductService(repo ProductRepository, cache cache.ProductCache) *ProductService {
	return &ProductService{repo: repo, cache: cache}
}

// ListProducts returns catalog, cached per category. Cache failures fall
// through to the database.
func (ps *ProductService) ListProducts(ctx context.Context, category string) ([]models.Product, error) {
	if products, err := ps.cache.Get(ctx, category); err == nil {
		return products, nil
	}

	products, err := ps.repo.GetProducts(ctx, category)
	if err != nil {
		return nil, err
	}

	if err := ps.cache.Set(ctx, category, products); err != nil {
		logger.Log.Warn("product cache set failed", zap.Error(err))
	}

	return products, nil
}

// GetProduct returns single product
func (ps *ProductService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	return ps.repo.GetProductByID(ctx, id)
}

func (ps *ProductService) validate(product *models.Product) error {
	if product.Name == "" || product.Price <= 0 || product.Stock < 0 {
		return models.ErrValidation
	}
	return nil
}

func (ps *ProductService) invalidate(ctx context.Context) {
	if err := ps.cache.Invalidate(ctx); err != nil {
		logger.Log.Warn("product cache invalidation failed", zap.Error(err))
	}
}

// CreateProduct adds product to catalog, admin only
func (ps *ProductService) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := ps.validate(product); err != nil {
		return nil, err
	}

	created, err := ps.repo.CreateProduct(ctx, product)
	if err != nil {
		return nil, err
	}

	ps.invalidate(ctx)
	return created, nil
}

// UpdateProduct edits product, admin only
func (ps *ProductService) UpdateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := ps.validate(product); err != nil {
		return nil, err
	}

	updated, err := ps.repo.UpdateProduct(ctx, product)
	if err != nil {
		return nil, err
	}

	ps.invalidate(ctx)
	return updated, nil
}

// DeleteProduct removes product, admin only
func (ps *ProductService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if err := ps.repo.DeleteProduct(ctx, id); err != nil {
		return err
	}

	ps.invalidate(ctx)
	return nil
}
