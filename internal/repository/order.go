package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/transbarber/storefront/internal/models"
	"github.com/transbarber/storefront/internal/repository/postgres"
)

const (
	insertOrderQuery = `
						INSERT INTO orders (user_id, total_amount, shipping_cost, payment_method, status, shipping_status)
						VALUES ($1, $2, $3, $4, $5, $6)
						RETURNING id, user_id, total_amount, shipping_cost, payment_method, status, shipping_status, tracking_code, created_at
`
	insertOrderItemQuery = `
						INSERT INTO order_items (order_id, product_id, product_name, quantity, price_at_purchase)
						VALUES ($1, $2, $3, $4, $5)
`
	selectOrderByIDQuery = `
						SELECT id, user_id, total_amount, shipping_cost, payment_method, status, shipping_status, tracking_code, created_at FROM orders
						WHERE id = $1
`
	selectOrdersByUserIDQuery = `
						SELECT id, user_id, total_amount, shipping_cost, payment_method, status, shipping_status, tracking_code, created_at FROM orders
						WHERE user_id = $1
						ORDER BY created_at DESC
`
	selectAllOrdersQuery = `
						SELECT id, user_id, total_amount, shipping_cost, payment_method, status, shipping_status, tracking_code, created_at FROM orders
						ORDER BY created_at DESC
`
	selectOrderItemsQuery = `
						SELECT id, order_id, product_id, product_name, quantity, price_at_purchase FROM order_items
						WHERE order_id = $1
`
	// The guard makes confirmation first-writer-wins: whichever channel
	// (webhook, browser return, sweeper) gets here first performs the
	// transition, the other sees zero rows. Tracking code is kept if one
	// was already assigned, shipping status advances from pending only.
	confirmOrderQuery = `
						UPDATE orders
						SET status = 'confirmed',
							shipping_status = CASE WHEN shipping_status = 'pending' THEN 'processing' ELSE shipping_status END,
							tracking_code = COALESCE(tracking_code, $2)
						WHERE id = $1 AND status <> 'confirmed'
						RETURNING id, user_id, total_amount, shipping_cost, payment_method, status, shipping_status, tracking_code, created_at
`
	markOrderPendingQuery = `
						UPDATE orders
						SET status = 'pending', shipping_status = 'pending'
						WHERE id = $1 AND status <> 'confirmed'
`
	markOrderCancelledQuery = `
						UPDATE orders
						SET status = 'cancelled', shipping_status = 'pending'
						WHERE id = $1 AND status <> 'confirmed'
`
	setOrderShippedQuery = `
						UPDATE orders
						SET shipping_status = 'shipped', tracking_code = $2
						WHERE id = $1
`
	setOrderDeliveredQuery = `
						UPDATE orders
						SET shipping_status = 'delivered'
						WHERE id = $1
`
	deleteOrderQuery = `
						DELETE FROM orders
						WHERE id = $1
`
	selectStalePendingOrdersQuery = `
						SELECT id, user_id, total_amount, shipping_cost, payment_method, status, shipping_status, tracking_code, created_at FROM orders
						WHERE status = 'pending' AND created_at < $1
						ORDER BY created_at
`
)

// OrderRepository provides access to orders and order items
type OrderRepository struct {
	db *postgres.DB
}

// NewOrderRepository creates new OrderRepository instance
func NewOrderRepository(db *postgres.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// CreateOrder inserts order with its item snapshots in one transaction
func (or *OrderRepository) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	tx, err := or.db.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, insertOrderQuery,
		order.UserID, order.TotalAmount, order.ShippingCost, order.PaymentMethod, order.Status, order.ShippingStatus).
		Scan(&order.ID, &order.UserID, &order.TotalAmount, &order.ShippingCost, &order.PaymentMethod,
			&order.Status, &order.ShippingStatus, &order.TrackingCode, &order.CreatedAt)
	if err != nil {
		return nil, err
	}

	for i := range order.Items {
		order.Items[i].OrderID = order.ID
		_, err = tx.Exec(ctx, insertOrderItemQuery,
			order.ID, order.Items[i].ProductID, order.Items[i].ProductName,
			order.Items[i].Quantity, order.Items[i].PriceAtPurchase)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return order, nil
}

// GetOrderByID returns order by id
func (or *OrderRepository) GetOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order := models.Order{}
	err := or.db.QueryRow(ctx, selectOrderByIDQuery, id).
		Scan(&order.ID, &order.UserID, &order.TotalAmount, &order.ShippingCost, &order.PaymentMethod,
			&order.Status, &order.ShippingStatus, &order.TrackingCode, &order.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrDataNotFound
		}
		return nil, err
	}

	return &order, nil
}

// GetOrdersByUserID gets user orders
func (or *OrderRepository) GetOrdersByUserID(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	return or.queryOrders(ctx, selectOrdersByUserIDQuery, userID)
}

// GetAllOrders returns every order, admin view
func (or *OrderRepository) GetAllOrders(ctx context.Context) ([]models.Order, error) {
	return or.queryOrders(ctx, selectAllOrdersQuery)
}

// GetStalePendingOrders returns pending orders created before cutoff
func (or *OrderRepository) GetStalePendingOrders(ctx context.Context, cutoff time.Time) ([]models.Order, error) {
	return or.queryOrders(ctx, selectStalePendingOrdersQuery, cutoff)
}

func (or *OrderRepository) queryOrders(ctx context.Context, query string, args ...any) ([]models.Order, error) {
	rows, err := or.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []models.Order{}

	for rows.Next() {
		order := models.Order{}
		err = rows.Scan(&order.ID, &order.UserID, &order.TotalAmount, &order.ShippingCost, &order.PaymentMethod,
			&order.Status, &order.ShippingStatus, &order.TrackingCode, &order.CreatedAt)
		if err != nil {
			continue
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return orders, nil
}

// GetOrderItems returns item snapshots of order
func (or *OrderRepository) GetOrderItems(ctx context.Context, orderID uuid.UUID) ([]models.OrderItem, error) {
	rows, err := or.db.Query(ctx, selectOrderItemsQuery, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.OrderItem{}

	for rows.Next() {
		item := models.OrderItem{}
		err = rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.ProductName, &item.Quantity, &item.PriceAtPurchase)
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

// ConfirmOrder conditionally transitions order to confirmed. Returns the
// updated order on the first confirmation and ErrAlreadyConfirmed if some
// other channel got there first.
func (or *OrderRepository) ConfirmOrder(ctx context.Context, id uuid.UUID, trackingCode string) (*models.Order, error) {
	order := models.Order{}
	err := or.db.QueryRow(ctx, confirmOrderQuery, id, trackingCode).
		Scan(&order.ID, &order.UserID, &order.TotalAmount, &order.ShippingCost, &order.PaymentMethod,
			&order.Status, &order.ShippingStatus, &order.TrackingCode, &order.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrAlreadyConfirmed
		}
		return nil, err
	}

	return &order, nil
}

// MarkOrderPending sets order back to pending unless it is confirmed
func (or *OrderRepository) MarkOrderPending(ctx context.Context, id uuid.UUID) error {
	_, err := or.db.Exec(ctx, markOrderPendingQuery, id)
	return err
}

// MarkOrderCancelled cancels order unless it is confirmed
func (or *OrderRepository) MarkOrderCancelled(ctx context.Context, id uuid.UUID) error {
	_, err := or.db.Exec(ctx, markOrderCancelledQuery, id)
	return err
}

// SetOrderShipped sets shipping status to shipped with tracking code
func (or *OrderRepository) SetOrderShipped(ctx context.Context, id uuid.UUID, trackingCode string) error {
	cmd, err := or.db.Exec(ctx, setOrderShippedQuery, id, trackingCode)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return models.ErrDataNotFound
	}

	return nil
}

// SetOrderDelivered sets shipping status to delivered
func (or *OrderRepository) SetOrderDelivered(ctx context.Context, id uuid.UUID) error {
	cmd, err := or.db.Exec(ctx, setOrderDeliveredQuery, id)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return models.ErrDataNotFound
	}

	return nil
}

// DeleteOrder removes order, items go with it via cascade
func (or *OrderRepository) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	cmd, err := or.db.Exec(ctx, deleteOrderQuery, id)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return models.ErrDataNotFound
	}

	return nil
}
