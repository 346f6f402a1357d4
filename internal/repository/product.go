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
	insertProductQuery = `
						INSERT INTO products (name, description, price, category, stock, image_url, shipping_cost)
						VALUES ($1, $2, $3, $4, $5, $6, $7)
						RETURNING id, name, description, price, category, stock, image_url, shipping_cost, created_at
`
	selectProductsQuery = `
						SELECT id, name, description, price, category, stock, image_url, shipping_cost, created_at FROM products
						ORDER BY created_at DESC
`
	selectProductsByCategoryQuery = `
						SELECT id, name, description, price, category, stock, image_url, shipping_cost, created_at FROM products
						WHERE category = $1
						ORDER BY created_at DESC
`
	selectProductByIDQuery = `
						SELECT id, name, description, price, category, stock, image_url, shipping_cost, created_at FROM products
						WHERE id = $1
`
	updateProductQuery = `
						UPDATE products
						SET name = $1, description = $2, price = $3, category = $4, stock = $5, image_url = $6, shipping_cost = $7
						WHERE id = $8
						RETURNING id, name, description, price, category, stock, image_url, shipping_cost, created_at
`
	deleteProductQuery = `
						DELETE FROM products
						WHERE id = $1
`
)

// ProductRepository provides access to product catalog
type ProductRepository struct {
	db *postgres.DB
}

// NewProductRepository creates new ProductRepository instance
func NewProductRepository(db *postgres.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// CreateProduct inserts new product to database
func (pr *ProductRepository) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	err := pr.db.QueryRow(ctx, insertProductQuery,
		product.Name, product.Description, product.Price, product.Category,
		product.Stock, product.ImageURL, product.ShippingCost).
		Scan(&product.ID, &product.Name, &product.Description, &product.Price, &product.Category,
			&product.Stock, &product.ImageURL, &product.ShippingCost, &product.CreatedAt)
	if err != nil {
		return nil, err
	}

	return product, nil
}

// GetProducts returns products, optionally filtered by category
func (pr *ProductRepository) GetProducts(ctx context.Context, category string) ([]models.Product, error) {
	var (
		rows pgx.Rows
		err  error
	)

	if category != "" {
		rows, err = pr.db.Query(ctx, selectProductsByCategoryQuery, category)
	} else {
		rows, err = pr.db.Query(ctx, selectProductsQuery)
	}
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

// GetProductByID returns product by id
func (pr *ProductRepository) GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product := models.Product{}
	err := pr.db.QueryRow(ctx, selectProductByIDQuery, id).
		Scan(&product.ID, &product.Name, &product.Description, &product.Price, &product.Category,
			&product.Stock, &product.ImageURL, &product.ShippingCost, &product.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrDataNotFound
		}
		return nil, err
	}

	return &product, nil
}

// UpdateProduct updates product fields
func (pr *ProductRepository) UpdateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	err := pr.db.QueryRow(ctx, updateProductQuery,
		product.Name, product.Description, product.Price, product.Category,
		product.Stock, product.ImageURL, product.ShippingCost, product.ID).
		Scan(&product.ID, &product.Name, &product.Description, &product.Price, &product.Category,
			&product.Stock, &product.ImageURL, &product.ShippingCost, &product.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrDataNotFound
		}
		return nil, err
	}

	return product, nil
}

// DeleteProduct removes product from catalog
func (pr *ProductRepository) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	cmd, err := pr.db.Exec(ctx, deleteProductQuery, id)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return models.ErrDataNotFound
	}

	return nil
}
