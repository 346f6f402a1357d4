package worker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/transbarber/storefront/internal/models"
)

type fakeOrderService struct {
	sweeps   atomic.Int32
	received atomic.Int32
}

func (f *fakeOrderService) ReconcilePending(ctx context.Context, orderCh <-chan models.Order) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-orderCh:
			f.received.Add(1)
		}
	}
}

func (f *fakeOrderService) SweepPendingOrders(ctx context.Context, cutoff time.Time, orderCh chan<- models.Order) error {
	f.sweeps.Add(1)
	orderCh <- models.Order{Status: models.OrderStatusPending}
	return nil
}

func TestPaymentSweeper_Run(t *testing.T) {
	svc := &fakeOrderService{}
	sweeper := NewPaymentSweeper(svc, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		sweeper.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		return svc.sweeps.Load() >= 2 && svc.received.Load() >= 2
	}, time.Second, 5*time.Millisecond)

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop on context cancel")
	}
}
