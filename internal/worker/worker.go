package worker

import (
	"context"
	"time"

	"github.com/transbarber/storefront/internal/logger"
	"github.com/transbarber/storefront/internal/models"
)

// pendingGracePeriod is how long an order may stay pending before the
// sweeper asks the payment provider what happened to it. Gives the webhook
// and the browser redirect time to arrive first.
const pendingGracePeriod = 5 * time.Minute

type OrderService interface {
	ReconcilePending(ctx context.Context, orderCh <-chan models.Order)
	SweepPendingOrders(ctx context.Context, cutoff time.Time, orderCh chan<- models.Order) error
}

// PaymentSweeper is worker reconciling stale pending orders against the
// payment provider
type PaymentSweeper struct {
	svc      OrderService
	interval time.Duration
}

// NewPaymentSweeper creates new payment sweeper
func NewPaymentSweeper(svc OrderService, interval time.Duration) *PaymentSweeper {
	return &PaymentSweeper{svc: svc, interval: interval}
}

// Run sweeps pending orders until the context is cancelled
func (ps *PaymentSweeper) Run(ctx context.Context) {
	orders := make(chan models.Order, 10)

	go ps.svc.ReconcilePending(ctx, orders)

	ticker := time.NewTicker(ps.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Log.Debug("payment sweeper is done")
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-pendingGracePeriod)
			if err := ps.svc.SweepPendingOrders(ctx, cutoff, orders); err != nil {
				logger.Log.Error("error sweeping pending orders")
			}
		}
	}
}
