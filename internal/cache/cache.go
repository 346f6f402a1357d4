package cache

import (
	"context"
	"errors"

	"github.com/transbarber/storefront/internal/models"
)

// ProductCache caches catalog listings per category
type ProductCache interface {
	Get(ctx context.Context, category string) ([]models.Product, error)
	Set(ctx context.Context, category string, products []models.Product) error
	Invalidate(ctx context.Context) error
}

var ErrCacheMiss = errors.New("cache miss")
