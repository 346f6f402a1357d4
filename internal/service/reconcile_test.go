package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transbarber/storefront/internal/models"
	"github.com/transbarber/storefront/internal/payment"
	"github.com/transbarber/storefront/internal/service/mocks"
)

type reconcileMocks struct {
	orders   *mocks.MockOrderRepository
	carts    *mocks.MockCartRepository
	users    *mocks.MockUserRepository
	profiles *mocks.MockProfileRepository
	payments *mocks.MockPaymentClient
	mailer   *mocks.MockMailer
}

func newReconcileService(t *testing.T) (*OrderService, *reconcileMocks) {
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

	svc := NewOrderService(m.orders, m.carts, m.users, m.profiles, m.payments, nil,
		m.mailer, "http://localhost:5173", "https://store.example/api/webhooks/payment", "secret")

	return svc, m
}

func pendingOrder(userID uuid.UUID) *models.Order {
	return &models.Order{
		ID:             uuid.New(),
		UserID:         userID,
		TotalAmount:    177.90,
		ShippingCost:   12.90,
		PaymentMethod:  models.PaymentMethodPix,
		Status:         models.OrderStatusPending,
		ShippingStatus: models.ShippingStatusPending,
	}
}

// expectConfirmationSideEffects wires the mocks touched exactly once by a
// successful confirmation: cart clearing and the confirmation email.
func expectConfirmationSideEffects(m *reconcileMocks, order *models.Order, userID uuid.UUID) {
	m.carts.EXPECT().ClearCart(gomock.Any(), userID).Return(nil).Times(1)
	m.users.EXPECT().GetUserByID(gomock.Any(), userID).
		Return(&models.User{ID: userID, Email: "loja@barbearia.com.br"}, nil).Times(1)
	m.orders.EXPECT().GetOrderItems(gomock.Any(), order.ID).
		Return([]models.OrderItem{{ProductName: "Máquina de corte", Quantity: 1, PriceAtPurchase: 165.00}}, nil).Times(1)
	m.profiles.EXPECT().GetProfileByUserID(gomock.Any(), userID).
		Return(&models.Profile{UserID: userID, CompanyName: "Barbearia Central"}, nil).Times(1)
	m.mailer.EXPECT().SendOrderConfirmation(gomock.Any(), gomock.Any()).Return(nil).Times(1)
}

func TestApplyPaymentOutcome_ApprovedConfirmsOnce(t *testing.T) {
	svc, m := newReconcileService(t)

	userID := uuid.New()
	order := pendingOrder(userID)

	tracking := "TB123ABC"
	confirmed := *order
	confirmed.Status = models.OrderStatusConfirmed
	confirmed.ShippingStatus = models.ShippingStatusProcessing
	confirmed.TrackingCode = &tracking

	// first delivery performs the transition
	first := m.orders.EXPECT().ConfirmOrder(gomock.Any(), order.ID, gomock.Any()).
		Return(&confirmed, nil).Times(1)
	// second delivery loses the guarded update
	m.orders.EXPECT().ConfirmOrder(gomock.Any(), order.ID, gomock.Any()).
		Return(nil, models.ErrAlreadyConfirmed).After(first)

	expectConfirmationSideEffects(m, order, userID)

	action, err := svc.ApplyPaymentOutcome(context.Background(), order, payment.StatusApproved)
	require.NoError(t, err)
	assert.Equal(t, ActionConfirmed, action)

	// same notification again, regardless of channel: no second email, no
	// second cart clear, tracking code untouched
	action, err = svc.ApplyPaymentOutcome(context.Background(), order, payment.StatusApproved)
	require.NoError(t, err)
	assert.Equal(t, ActionAlreadyConfirmed, action)
}

func TestApplyPaymentOutcome_PendingKeepsOrderPending(t *testing.T) {
	svc, m := newReconcileService(t)

	order := pendingOrder(uuid.New())
	m.orders.EXPECT().MarkOrderPending(gomock.Any(), order.ID).Return(nil).Times(1)

	action, err := svc.ApplyPaymentOutcome(context.Background(), order, payment.StatusInProcess)
	require.NoError(t, err)
	assert.Equal(t, ActionPending, action)
}

func TestApplyPaymentOutcome_RejectedCancelsPendingOrder(t *testing.T) {
	svc, m := newReconcileService(t)

	order := pendingOrder(uuid.New())
	m.orders.EXPECT().MarkOrderCancelled(gomock.Any(), order.ID).Return(nil).Times(1)

	action, err := svc.ApplyPaymentOutcome(context.Background(), order, payment.StatusRejected)
	require.NoError(t, err)
	assert.Equal(t, ActionCancelled, action)
}

func TestApplyPaymentOutcome_ChargebackNeverDemotesConfirmedOrder(t *testing.T) {
	svc, m := newReconcileService(t)

	order := pendingOrder(uuid.New())
	order.Status = models.OrderStatusConfirmed

	// no repository writes expected at all
	m.orders.EXPECT().MarkOrderCancelled(gomock.Any(), gomock.Any()).Times(0)

	action, err := svc.ApplyPaymentOutcome(context.Background(), order, payment.StatusChargedBack)
	require.NoError(t, err)
	assert.Equal(t, ActionNoOp, action)
}

func TestApplyPaymentOutcome_UnknownStatusIsNoOp(t *testing.T) {
	svc, _ := newReconcileService(t)

	order := pendingOrder(uuid.New())

	action, err := svc.ApplyPaymentOutcome(context.Background(), order, "some_future_status")
	require.NoError(t, err)
	assert.Equal(t, ActionNoOp, action)
}

func TestProcessNotification_IgnoresNonPaymentTopics(t *testing.T) {
	svc, _ := newReconcileService(t)

	res, err := svc.ProcessNotification(context.Background(), "merchant_order", "123")
	require.NoError(t, err)
	assert.True(t, res.Ignored)
	assert.Equal(t, ActionIgnored, res.Action)

	res, err = svc.ProcessNotification(context.Background(), "payment", "")
	require.NoError(t, err)
	assert.True(t, res.Ignored)
}

func TestProcessNotification_AcksUnknownPayment(t *testing.T) {
	svc, m := newReconcileService(t)

	m.payments.EXPECT().GetPayment(gomock.Any(), "987654").
		Return(nil, models.ErrDataNotFound).Times(1)

	res, err := svc.ProcessNotification(context.Background(), "payment", "987654")
	require.NoError(t, err)
	assert.True(t, res.Ignored)
	assert.Equal(t, "payment-not-found", res.Reason)
}

func TestProcessNotification_AcksUnknownOrder(t *testing.T) {
	svc, m := newReconcileService(t)

	orderID := uuid.New()
	m.payments.EXPECT().GetPayment(gomock.Any(), "987654").
		Return(&payment.Payment{ID: 987654, Status: payment.StatusApproved, ExternalReference: orderID.String()}, nil).Times(1)
	m.orders.EXPECT().GetOrderByID(gomock.Any(), orderID).
		Return(nil, models.ErrDataNotFound).Times(1)

	res, err := svc.ProcessNotification(context.Background(), "payment", "987654")
	require.NoError(t, err)
	assert.True(t, res.Ignored)
	assert.Equal(t, ActionOrderNotFound, res.Action)
}

func TestProcessNotification_ApprovedPaymentConfirmsOrder(t *testing.T) {
	svc, m := newReconcileService(t)

	userID := uuid.New()
	order := pendingOrder(userID)

	tracking := "TB123ABC"
	confirmed := *order
	confirmed.Status = models.OrderStatusConfirmed
	confirmed.TrackingCode = &tracking

	m.payments.EXPECT().GetPayment(gomock.Any(), "555").
		Return(&payment.Payment{ID: 555, Status: payment.StatusApproved, ExternalReference: order.ID.String()}, nil).Times(1)
	m.orders.EXPECT().GetOrderByID(gomock.Any(), order.ID).Return(order, nil).Times(1)
	m.orders.EXPECT().ConfirmOrder(gomock.Any(), order.ID, gomock.Any()).Return(&confirmed, nil).Times(1)

	expectConfirmationSideEffects(m, order, userID)

	res, err := svc.ProcessNotification(context.Background(), "payment", "555")
	require.NoError(t, err)
	assert.False(t, res.Ignored)
	assert.Equal(t, ActionConfirmed, res.Action)
	assert.Equal(t, order.ID.String(), res.OrderID)
	assert.Equal(t, payment.StatusApproved, res.PaymentStatus)
}

func TestConfirmReturn_RejectsForeignOrder(t *testing.T) {
	svc, m := newReconcileService(t)

	owner := uuid.New()
	order := pendingOrder(owner)
	m.orders.EXPECT().GetOrderByID(gomock.Any(), order.ID).Return(order, nil).Times(1)

	_, err := svc.ConfirmReturn(context.Background(), uuid.New(), order.ID, payment.StatusApproved)
	assert.ErrorIs(t, err, models.ErrForbidden)
}

func TestConfirmReturn_SharesReconciliationWithWebhook(t *testing.T) {
	svc, m := newReconcileService(t)

	userID := uuid.New()
	order := pendingOrder(userID)

	tracking := "TB123ABC"
	confirmed := *order
	confirmed.Status = models.OrderStatusConfirmed
	confirmed.TrackingCode = &tracking

	m.orders.EXPECT().GetOrderByID(gomock.Any(), order.ID).Return(order, nil).Times(1)
	m.orders.EXPECT().ConfirmOrder(gomock.Any(), order.ID, gomock.Any()).Return(&confirmed, nil).Times(1)

	expectConfirmationSideEffects(m, order, userID)

	action, err := svc.ConfirmReturn(context.Background(), userID, order.ID, payment.StatusApproved)
	require.NoError(t, err)
	assert.Equal(t, ActionConfirmed, action)
}

func TestSweepPendingOrders_FeedsStaleOrders(t *testing.T) {
	svc, m := newReconcileService(t)

	stale := []models.Order{*pendingOrder(uuid.New()), *pendingOrder(uuid.New())}
	m.orders.EXPECT().GetStalePendingOrders(gomock.Any(), gomock.Any()).Return(stale, nil).Times(1)

	orderCh := make(chan models.Order, 10)
	err := svc.SweepPendingOrders(context.Background(), time.Now().Add(-5*time.Minute), orderCh)
	require.NoError(t, err)
	close(orderCh)

	var got []models.Order
	for order := range orderCh {
		got = append(got, order)
	}
	assert.Len(t, got, 2)
	assert.Equal(t, stale[0].ID, got[0].ID)
}

func TestLatestDecisiveStatus(t *testing.T) {
	tests := []struct {
		name       string
		payments   []payment.Payment
		wantStatus string
		wantFound  bool
	}{
		{
			name: "approval_wins_over_newer_failure",
			payments: []payment.Payment{
				{Status: payment.StatusRejected},
				{Status: payment.StatusApproved},
			},
			wantStatus: payment.StatusApproved,
			wantFound:  true,
		},
		{
			name: "newest_failure_without_approval",
			payments: []payment.Payment{
				{Status: payment.StatusCancelled},
				{Status: payment.StatusRejected},
			},
			wantStatus: payment.StatusCancelled,
			wantFound:  true,
		},
		{
			name: "pending_attempts_are_not_decisive",
			payments: []payment.Payment{
				{Status: payment.StatusPending},
				{Status: payment.StatusInProcess},
			},
			wantFound: false,
		},
		{
			name:      "no_payments",
			wantFound: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, found := latestDecisiveStatus(tt.payments)
			assert.Equal(t, tt.wantFound, found)
			assert.Equal(t, tt.wantStatus, status)
		})
	}
}
