package service

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transbarber/storefront/internal/models"
	"github.com/transbarber/storefront/internal/payment"
	"github.com/transbarber/storefront/internal/service/mocks"
)

func checkoutCart(userID uuid.UUID) []models.CartItem {
	clipper := &models.Product{ID: uuid.New(), Name: "Máquina de corte", Price: 120.00}
	pomade := &models.Product{ID: uuid.New(), Name: "Pomada modeladora", Price: 45.00}
	return []models.CartItem{
		{ID: uuid.New(), UserID: userID, ProductID: clipper.ID, Quantity: 1, Product: clipper},
		{ID: uuid.New(), UserID: userID, ProductID: pomade.ID, Quantity: 1, Product: pomade},
	}
}

func newCheckoutService(t *testing.T) (*OrderService, *reconcileMocks, *mocks.MockRateClient) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	m := &reconcileMocks{
		orders:   mocks.NewMockOrderRepository(ctrl),
		carts:    mocks.NewMockCartRepository(ctrl),
		users:    mocks.NewMockUserRepository(ctrl),
		profiles: mocks.NewMockProfileRepository(ctrl),
		payments: mocks.NewMockPaymentClient(ctrl),
		mailer:   mocks.NewMockMailer(ctrl),
	}
	rates := mocks.NewMockRateClient(ctrl)

	svc := NewOrderService(m.orders, m.carts, m.users, m.profiles, m.payments,
		NewShippingService(rates), m.mailer,
		"http://localhost:5173", "https://store.example/api/webhooks/payment", "secret")

	return svc, m, rates
}

func TestOrderService_Checkout(t *testing.T) {
	userID := uuid.New()

	svc, m, rates := newCheckoutService(t)

	m.carts.EXPECT().GetItemsByUserID(gomock.Any(), userID).Return(checkoutCart(userID), nil).Times(1)
	rates.EXPECT().Quote(gomock.Any(), "01310100", 165.0).
		Return(&models.ShippingQuote{Cost: 12.90, Days: 2, ServiceName: "Mercado Envios"}, nil).Times(1)

	m.orders.EXPECT().CreateOrder(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, order *models.Order) (*models.Order, error) {
			assert.Equal(t, 177.90, order.TotalAmount)
			assert.Equal(t, 12.90, order.ShippingCost)
			assert.Equal(t, models.OrderStatusPending, order.Status)
			assert.Len(t, order.Items, 2)

			created := *order
			created.ID = uuid.New()
			return &created, nil
		}).Times(1)

	m.users.EXPECT().GetUserByID(gomock.Any(), userID).
		Return(&models.User{ID: userID, Email: "loja@barbearia.com.br"}, nil).Times(1)

	m.payments.EXPECT().CreatePreference(gomock.Any(), gomock.Any(), gomock.Any(),
		"loja@barbearia.com.br", models.PaymentMethodPix, "http://localhost:5173", gomock.Any()).
		DoAndReturn(func(_ context.Context, orderID string, items []payment.PreferenceItem, _, _, _, notificationURL string) (*payment.Preference, error) {
			// the freight line rides along as a preference item
			require.Len(t, items, 3)
			assert.Equal(t, "Frete", items[2].Title)
			assert.Equal(t, 12.90, items[2].UnitPrice)
			assert.Contains(t, notificationURL, "token=secret")

			return &payment.Preference{ID: "pref-1", InitPoint: "https://pay.example/redirect"}, nil
		}).Times(1)

	result, err := svc.Checkout(context.Background(), userID, models.PaymentMethodPix, "01310-100")
	require.NoError(t, err)
	assert.Equal(t, 177.90, result.Order.TotalAmount)
	assert.Equal(t, "https://pay.example/redirect", result.RedirectURL)
}

func TestOrderService_CheckoutRejectsUnknownPaymentMethod(t *testing.T) {
	svc, _, _ := newCheckoutService(t)

	_, err := svc.Checkout(context.Background(), uuid.New(), "boleto", "01310-100")
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestOrderService_CheckoutRejectsEmptyCart(t *testing.T) {
	svc, m, _ := newCheckoutService(t)

	userID := uuid.New()
	m.carts.EXPECT().GetItemsByUserID(gomock.Any(), userID).Return(nil, nil).Times(1)

	_, err := svc.Checkout(context.Background(), userID, models.PaymentMethodPix, "01310-100")
	assert.ErrorIs(t, err, models.ErrEmptyCart)
}

func TestOrderService_CheckoutKeepsPendingOrderOnProviderFailure(t *testing.T) {
	svc, m, rates := newCheckoutService(t)

	userID := uuid.New()
	m.carts.EXPECT().GetItemsByUserID(gomock.Any(), userID).Return(checkoutCart(userID), nil).Times(1)
	rates.EXPECT().Quote(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&models.ShippingQuote{Cost: 12.90, Days: 2}, nil).Times(1)
	m.orders.EXPECT().CreateOrder(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, order *models.Order) (*models.Order, error) {
			created := *order
			created.ID = uuid.New()
			return &created, nil
		}).Times(1)
	m.users.EXPECT().GetUserByID(gomock.Any(), userID).
		Return(&models.User{ID: userID, Email: "loja@barbearia.com.br"}, nil).Times(1)
	m.payments.EXPECT().CreatePreference(gomock.Any(), gomock.Any(), gomock.Any(),
		gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, errors.New("provider down")).Times(1)
	// the order row is not rolled back, the sweeper will settle it
	m.orders.EXPECT().DeleteOrder(gomock.Any(), gomock.Any()).Times(0)

	_, err := svc.Checkout(context.Background(), userID, models.PaymentMethodPix, "01310-100")
	assert.Error(t, err)
}

func TestOrderService_ShipOrderRequiresConfirmedStatus(t *testing.T) {
	svc, m, _ := newCheckoutService(t)

	orderID := uuid.New()
	m.orders.EXPECT().GetOrderByID(gomock.Any(), orderID).
		Return(&models.Order{ID: orderID, Status: models.OrderStatusPending}, nil).Times(1)
	m.orders.EXPECT().SetOrderShipped(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	err := svc.ShipOrder(context.Background(), orderID, "BR123456789")
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestOrderService_GetOrderForbidsForeignOrder(t *testing.T) {
	svc, m, _ := newCheckoutService(t)

	owner := uuid.New()
	orderID := uuid.New()
	m.orders.EXPECT().GetOrderByID(gomock.Any(), orderID).
		Return(&models.Order{ID: orderID, UserID: owner}, nil).Times(2)

	_, err := svc.GetOrder(context.Background(), uuid.New(), orderID, false)
	assert.ErrorIs(t, err, models.ErrForbidden)

	// admin sees any order
	m.orders.EXPECT().GetOrderItems(gomock.Any(), orderID).Return(nil, nil).Times(1)
	order, err := svc.GetOrder(context.Background(), uuid.New(), orderID, true)
	require.NoError(t, err)
	assert.Equal(t, orderID, order.ID)
}

func TestGenerateTrackingCode(t *testing.T) {
	code := GenerateTrackingCode()
	assert.Regexp(t, regexp.MustCompile(`^TB[0-9A-Z]+$`), code)
}

func TestSubtotal(t *testing.T) {
	userID := uuid.New()
	items := checkoutCart(userID)
	items[1].Quantity = 3

	assert.Equal(t, 255.00, Subtotal(items))
}
