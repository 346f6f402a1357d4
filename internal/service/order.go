package service

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/transbarber/storefront/internal/logger"
	"github.com/transbarber/storefront/internal/mail"
	"github.com/transbarber/storefront/internal/models"
	"github.com/transbarber/storefront/internal/payment"
	"go.uber.org/zap"
)

// OrderRepository is interface for interacting with order data
type OrderRepository interface {
	// CreateOrder inserts order with its item snapshots in one transaction
	CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error)
	// GetOrderByID returns order by id
	GetOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	// GetOrdersByUserID gets user orders
	GetOrdersByUserID(ctx context.Context, userID uuid.UUID) ([]models.Order, error)
	// GetAllOrders returns every order, admin view
	GetAllOrders(ctx context.Context) ([]models.Order, error)
	// GetOrderItems returns item snapshots of order
	GetOrderItems(ctx context.Context, orderID uuid.UUID) ([]models.OrderItem, error)
	// GetStalePendingOrders returns pending orders created before cutoff
	GetStalePendingOrders(ctx context.Context, cutoff time.Time) ([]models.Order, error)
	// ConfirmOrder conditionally transitions order to confirmed
	ConfirmOrder(ctx context.Context, id uuid.UUID, trackingCode string) (*models.Order, error)
	// MarkOrderPending sets order back to pending unless it is confirmed
	MarkOrderPending(ctx context.Context, id uuid.UUID) error
	// MarkOrderCancelled cancels order unless it is confirmed
	MarkOrderCancelled(ctx context.Context, id uuid.UUID) error
	// SetOrderShipped sets shipping status to shipped with tracking code
	SetOrderShipped(ctx context.Context, id uuid.UUID, trackingCode string) error
	// SetOrderDelivered sets shipping status to delivered
	SetOrderDelivered(ctx context.Context, id uuid.UUID) error
	// DeleteOrder removes order and its items
	DeleteOrder(ctx context.Context, id uuid.UUID) error
}

// PaymentClient is interface for payment provider API
type PaymentClient interface {
	// GetPayment fetches full payment detail by id
	GetPayment(ctx context.Context, paymentID string) (*payment.Payment, error)
	// SearchPaymentsByReference returns payments for external reference, newest first
	SearchPaymentsByReference(ctx context.Context, reference string) ([]payment.Payment, error)
	// CreatePreference creates checkout preference and returns buyer redirect URLs
	CreatePreference(ctx context.Context, orderID string, items []payment.PreferenceItem, payerEmail, method, frontendURL, notificationURL string) (*payment.Preference, error)
}

// Mailer is interface for transactional email
type Mailer interface {
	SendOrderConfirmation(ctx context.Context, email mail.OrderEmail) error
	SendShippingNotification(ctx context.Context, email mail.ShippingEmail) error
}

// OrderService implements checkout, order queries, admin shipping updates
// and payment reconciliation
type OrderService struct {
	orders       OrderRepository
	carts        CartRepository
	users        UserRepository
	profiles     ProfileRepository
	payments     PaymentClient
	shipping     *ShippingService
	mailer       Mailer
	frontendURL  string
	webhookURL   string
	webhookToken string
}

// NewOrderService creates new OrderService instance
func NewOrderService(orders OrderRepository, carts CartRepository, users UserRepository,
	profiles ProfileRepository, payments PaymentClient, shipping *ShippingService,
	mailer Mailer, frontendURL, webhookURL, webhookToken string) *OrderService {
	return &OrderService{
		orders:       orders,
		carts:        carts,
		users:        users,
		profiles:     profiles,
		payments:     payments,
		shipping:     shipping,
		mailer:       mailer,
		frontendURL:  frontendURL,
		webhookURL:   webhookURL,
		webhookToken: webhookToken,
	}
}

var validPaymentMethods = map[string]bool{
	models.PaymentMethodPix:      true,
	models.PaymentMethodDebit:    true,
	models.PaymentMethodCredit1x: true,
	models.PaymentMethodCredit12: true,
}

// CheckoutResult is created order plus buyer redirect URL
type CheckoutResult struct {
	Order       *models.Order
	RedirectURL string
}

// Checkout creates a pending order from the caller's cart and a payment
// preference for it. The cart stays intact until the payment is approved.
func (os *OrderService) Checkout(ctx context.Context, userID uuid.UUID, paymentMethod, cep string) (*CheckoutResult, error) {
	if !validPaymentMethods[paymentMethod] {
		return nil, models.ErrValidation
	}

	items, err := os.carts.GetItemsByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, models.ErrEmptyCart
	}

	subtotal := Subtotal(items)

	quote, err := os.shipping.Quote(ctx, cep, subtotal)
	if err != nil {
		return nil, err
	}

	order := models.Order{
		UserID:         userID,
		TotalAmount:    round2(subtotal + quote.Cost),
		ShippingCost:   quote.Cost,
		PaymentMethod:  paymentMethod,
		Status:         models.OrderStatusPending,
		ShippingStatus: models.ShippingStatusPending,
	}

	for _, item := range items {
		order.Items = append(order.Items, models.OrderItem{
			ProductID:       item.ProductID,
			ProductName:     item.Product.Name,
			Quantity:        item.Quantity,
			PriceAtPurchase: item.Product.Price,
		})
	}

	created, err := os.orders.CreateOrder(ctx, &order)
	if err != nil {
		return nil, err
	}

	user, err := os.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	prefItems := make([]payment.PreferenceItem, 0, len(created.Items)+1)
	for _, item := range created.Items {
		prefItems = append(prefItems, payment.PreferenceItem{
			Title:      item.ProductName,
			Quantity:   item.Quantity,
			UnitPrice:  item.PriceAtPurchase,
			CurrencyID: "BRL",
		})
	}
	prefItems = append(prefItems, payment.PreferenceItem{
		Title:      "Frete",
		Quantity:   1,
		UnitPrice:  quote.Cost,
		CurrencyID: "BRL",
	})

	pref, err := os.payments.CreatePreference(ctx, created.ID.String(), prefItems,
		user.Email, paymentMethod, os.frontendURL, os.notificationURL())
	if err != nil {
		// the pending order row stays behind for the sweeper
		return nil, fmt.Errorf("create payment preference: %w", err)
	}

	redirect := pref.InitPoint
	if redirect == "" {
		redirect = pref.SandboxInitPoint
	}
	if redirect == "" {
		return nil, fmt.Errorf("%w: preference has no redirect URL", models.ErrUpstreamFailure)
	}

	return &CheckoutResult{Order: created, RedirectURL: redirect}, nil
}

func (os *OrderService) notificationURL() string {
	if os.webhookURL == "" {
		return ""
	}
	if os.webhookToken == "" {
		return os.webhookURL
	}

	u, err := url.Parse(os.webhookURL)
	if err != nil {
		return os.webhookURL
	}
	q := u.Query()
	q.Set("token", os.webhookToken)
	u.RawQuery = q.Encode()
	return u.String()
}

// GenerateTrackingCode produces opaque tracking identifier
func GenerateTrackingCode() string {
	return "TB" + strings.ToUpper(strconv.FormatInt(time.Now().UnixMilli(), 36))
}

// ListUserOrders returns caller orders with item snapshots
func (os *OrderService) ListUserOrders(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	orders, err := os.orders.GetOrdersByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	for i := range orders {
		items, err := os.orders.GetOrderItems(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}

	return orders, nil
}

// GetOrder returns order visible to caller: owner or admin
func (os *OrderService) GetOrder(ctx context.Context, callerID, orderID uuid.UUID, admin bool) (*models.Order, error) {
	order, err := os.orders.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !admin && order.UserID != callerID {
		return nil, models.ErrForbidden
	}

	items, err := os.orders.GetOrderItems(ctx, orderID)
	if err != nil {
		return nil, err
	}
	order.Items = items

	return order, nil
}

// ListAllOrders returns every order, admin only
func (os *OrderService) ListAllOrders(ctx context.Context) ([]models.Order, error) {
	orders, err := os.orders.GetAllOrders(ctx)
	if err != nil {
		return nil, err
	}

	for i := range orders {
		items, err := os.orders.GetOrderItems(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}

	return orders, nil
}

// ShipOrder marks order shipped with tracking code and notifies the customer
func (os *OrderService) ShipOrder(ctx context.Context, orderID uuid.UUID, trackingCode string) error {
	trackingCode = strings.TrimSpace(trackingCode)
	if trackingCode == "" {
		return models.ErrValidation
	}

	order, err := os.orders.GetOrderByID(ctx, orderID)
	if err != nil {
		return err
	}
	if order.Status != models.OrderStatusConfirmed {
		return models.ErrValidation
	}

	if err := os.orders.SetOrderShipped(ctx, orderID, trackingCode); err != nil {
		return err
	}

	user, err := os.users.GetUserByID(ctx, order.UserID)
	if err != nil {
		logger.Log.Error("shipping email skipped, user lookup failed",
			zap.String("order", orderID.String()), zap.Error(err))
		return nil
	}

	email := mail.ShippingEmail{
		CustomerEmail: user.Email,
		CustomerName:  os.customerName(ctx, order.UserID),
		OrderID:       orderID.String(),
		TrackingCode:  trackingCode,
	}

	if err := os.mailer.SendShippingNotification(ctx, email); err != nil {
		logger.Log.Error("shipping email failed", zap.String("order", orderID.String()), zap.Error(err))
	}

	return nil
}

// MarkDelivered marks shipped order delivered
func (os *OrderService) MarkDelivered(ctx context.Context, orderID uuid.UUID) error {
	order, err := os.orders.GetOrderByID(ctx, orderID)
	if err != nil {
		return err
	}
	if order.ShippingStatus != models.ShippingStatusShipped {
		return models.ErrValidation
	}

	return os.orders.SetOrderDelivered(ctx, orderID)
}

// DeleteOrder removes order, admin only
func (os *OrderService) DeleteOrder(ctx context.Context, orderID uuid.UUID) error {
	return os.orders.DeleteOrder(ctx, orderID)
}

func (os *OrderService) customerName(ctx context.Context, userID uuid.UUID) string {
	profile, err := os.profiles.GetProfileByUserID(ctx, userID)
	if err != nil || profile.CompanyName == "" {
		return "Cliente"
	}
	return profile.CompanyName
}
