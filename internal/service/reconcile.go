package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/transbarber/storefront/internal/logger"
	"github.com/transbarber/storefront/internal/mail"
	"github.com/transbarber/storefront/internal/models"
	"github.com/transbarber/storefront/internal/payment"
	"go.uber.org/zap"
)

// Outcome is the payment result a notification channel observed
type Outcome int

const (
	OutcomeIgnore Outcome = iota
	OutcomeApprove
	OutcomePending
	OutcomeFail
)

// actions reported back to notification callers
const (
	ActionConfirmed        = "order-confirmed"
	ActionAlreadyConfirmed = "order-already-confirmed"
	ActionPending          = "order-pending"
	ActionCancelled        = "order-cancelled"
	ActionNoOp             = "no-op"
	ActionIgnored          = "ignored"
	ActionOrderNotFound    = "order-not-found"
)

// OutcomeForStatus maps provider payment status to reconciliation outcome
func OutcomeForStatus(status string) Outcome {
	switch status {
	case payment.StatusApproved:
		return OutcomeApprove
	case payment.StatusPending, payment.StatusInProcess, payment.StatusAuthorized:
		return OutcomePending
	case payment.StatusRejected, payment.StatusCancelled, payment.StatusRefunded, payment.StatusChargedBack:
		return OutcomeFail
	default:
		return OutcomeIgnore
	}
}

// ApplyPaymentOutcome is the single reconciliation point shared by the
// webhook, the browser redirect return and the pending payment sweeper.
// Whichever channel arrives first performs the transition, later arrivals
// are safe no-ops: confirmation is guarded by status <> confirmed at the
// store, so side effects (tracking code, cart clearing, confirmation email)
// fire at most once per order.
func (os *OrderService) ApplyPaymentOutcome(ctx context.Context, order *models.Order, paymentStatus string) (string, error) {
	switch OutcomeForStatus(paymentStatus) {
	case OutcomeApprove:
		return os.applyApproval(ctx, order)

	case OutcomePending:
		if err := os.orders.MarkOrderPending(ctx, order.ID); err != nil {
			return "", err
		}
		return ActionPending, nil

	case OutcomeFail:
		if order.Status == models.OrderStatusConfirmed {
			// a chargeback or refund after fulfillment must not silently
			// un-confirm the order, it needs manual review
			logger.Log.Warn("failure notification for confirmed order",
				zap.String("order", order.ID.String()),
				zap.String("payment_status", paymentStatus))
			return ActionNoOp, nil
		}
		if err := os.orders.MarkOrderCancelled(ctx, order.ID); err != nil {
			return "", err
		}
		return ActionCancelled, nil

	default:
		return ActionNoOp, nil
	}
}

func (os *OrderService) applyApproval(ctx context.Context, order *models.Order) (string, error) {
	confirmed, err := os.orders.ConfirmOrder(ctx, order.ID, GenerateTrackingCode())
	if err != nil {
		if errors.Is(err, models.ErrAlreadyConfirmed) {
			return ActionAlreadyConfirmed, nil
		}
		// the guarded update is the one state-bearing write, its failure
		// is fatal so the provider retries the notification
		return "", err
	}

	if err := os.carts.ClearCart(ctx, confirmed.UserID); err != nil {
		logger.Log.Error("cart clearing failed after confirmation",
			zap.String("order", confirmed.ID.String()), zap.Error(err))
	}

	os.sendConfirmationEmail(ctx, confirmed)

	return ActionConfirmed, nil
}

func (os *OrderService) sendConfirmationEmail(ctx context.Context, order *models.Order) {
	user, err := os.users.GetUserByID(ctx, order.UserID)
	if err != nil {
		logger.Log.Error("confirmation email skipped, user lookup failed",
			zap.String("order", order.ID.String()), zap.Error(err))
		return
	}

	items, err := os.orders.GetOrderItems(ctx, order.ID)
	if err != nil {
		logger.Log.Error("confirmation email skipped, items lookup failed",
			zap.String("order", order.ID.String()), zap.Error(err))
		return
	}

	trackingCode := ""
	if order.TrackingCode != nil {
		trackingCode = *order.TrackingCode
	}

	email := mail.OrderEmail{
		OrderID:       order.ID.String(),
		CustomerEmail: user.Email,
		CustomerName:  os.customerName(ctx, order.UserID),
		Items:         items,
		Total:         order.TotalAmount,
		Shipping:      order.ShippingCost,
		TrackingCode:  trackingCode,
		PaymentMethod: order.PaymentMethod,
	}

	if err := os.mailer.SendOrderConfirmation(ctx, email); err != nil {
		logger.Log.Error("confirmation email failed",
			zap.String("order", order.ID.String()), zap.Error(err))
	}
}

// NotificationResult is acknowledgment data for a processed webhook delivery
type NotificationResult struct {
	OrderID       string
	PaymentID     string
	PaymentStatus string
	Action        string
	Ignored       bool
	Reason        string
}

// ProcessNotification handles one webhook delivery. The raw notification is
// never trusted: the payment is re-fetched from the provider by id and its
// external reference resolved to an order. Irrelevant or unresolvable
// notifications are acknowledged without mutation so the provider does not
// retry them forever.
func (os *OrderService) ProcessNotification(ctx context.Context, topic, paymentID string) (*NotificationResult, error) {
	if topic != "payment" || paymentID == "" {
		return &NotificationResult{Action: ActionIgnored, Ignored: true, Reason: "not-payment-notification"}, nil
	}

	pmt, err := os.payments.GetPayment(ctx, paymentID)
	if err != nil {
		if errors.Is(err, models.ErrDataNotFound) {
			logger.Log.Warn("notification for unknown payment", zap.String("payment", paymentID))
			return &NotificationResult{PaymentID: paymentID, Action: ActionIgnored, Ignored: true, Reason: "payment-not-found"}, nil
		}
		return nil, err
	}

	if pmt.ExternalReference == "" {
		return &NotificationResult{PaymentID: paymentID, Action: ActionIgnored, Ignored: true, Reason: "missing-external-reference"}, nil
	}

	orderID, err := uuid.Parse(pmt.ExternalReference)
	if err != nil {
		logger.Log.Warn("payment references malformed order id",
			zap.String("payment", paymentID), zap.String("reference", pmt.ExternalReference))
		return &NotificationResult{PaymentID: paymentID, Action: ActionOrderNotFound, Ignored: true, Reason: "malformed-external-reference"}, nil
	}

	order, err := os.orders.GetOrderByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, models.ErrDataNotFound) {
			logger.Log.Warn("payment references unknown order",
				zap.String("payment", paymentID), zap.String("order", orderID.String()))
			return &NotificationResult{PaymentID: paymentID, Action: ActionOrderNotFound, Ignored: true, Reason: "order-not-found"}, nil
		}
		return nil, err
	}

	action, err := os.ApplyPaymentOutcome(ctx, order, pmt.Status)
	if err != nil {
		return nil, err
	}

	return &NotificationResult{
		OrderID:       order.ID.String(),
		PaymentID:     paymentID,
		PaymentStatus: pmt.Status,
		Action:        action,
	}, nil
}

// ConfirmReturn handles the browser redirect back from the payment page.
// Best-effort UX accelerator: it feeds the redirect status through the same
// reconciliation as the webhook, which stays the source of truth.
func (os *OrderService) ConfirmReturn(ctx context.Context, userID, orderID uuid.UUID, redirectStatus string) (string, error) {
	order, err := os.orders.GetOrderByID(ctx, orderID)
	if err != nil {
		return "", err
	}

	if order.UserID != userID {
		return "", models.ErrForbidden
	}

	return os.ApplyPaymentOutcome(ctx, order, redirectStatus)
}

// SweepPendingOrders feeds stale pending orders to the reconciliation
// channel consumer
func (os *OrderService) SweepPendingOrders(ctx context.Context, cutoff time.Time, orderCh chan<- models.Order) error {
	orders, err := os.orders.GetStalePendingOrders(ctx, cutoff)
	if err != nil {
		return err
	}

	for _, order := range orders {
		orderCh <- order
	}

	return nil
}

// ReconcilePending consumes stale pending orders, looks their payments up
// at the provider and applies any terminal outcome found. Covers webhooks
// that never arrived and buyers who closed the tab.
func (os *OrderService) ReconcilePending(ctx context.Context, orderCh <-chan models.Order) {
	for {
		select {
		case <-ctx.Done():
			logger.Log.Debug("pending reconciliation is done")
			return
		case order, ok := <-orderCh:
			if !ok {
				return
			}

			payments, err := os.payments.SearchPaymentsByReference(ctx, order.ID.String())
			if err != nil {
				logger.Log.Error("payment search failed",
					zap.String("order", order.ID.String()), zap.Error(err))
				continue
			}

			status, found := latestDecisiveStatus(payments)
			if !found {
				continue
			}

			action, err := os.ApplyPaymentOutcome(ctx, &order, status)
			if err != nil {
				logger.Log.Error("pending reconciliation failed",
					zap.String("order", order.ID.String()), zap.Error(err))
				continue
			}

			if action != ActionNoOp {
				logger.Log.Info("pending order reconciled",
					zap.String("order", order.ID.String()),
					zap.String("payment_status", status),
					zap.String("action", action))
			}
		}
	}
}

// latestDecisiveStatus picks an approval if any payment attempt succeeded,
// otherwise the newest terminal failure
func latestDecisiveStatus(payments []payment.Payment) (string, bool) {
	for _, p := range payments {
		if OutcomeForStatus(p.Status) == OutcomeApprove {
			return p.Status, true
		}
	}
	for _, p := range payments {
		if OutcomeForStatus(p.Status) == OutcomeFail {
			return p.Status, true
		}
	}
	return "", false
}
