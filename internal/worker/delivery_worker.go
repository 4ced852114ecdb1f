package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"sobgamecoin/internal/domain"
	apperrors "sobgamecoin/internal/errors"
)

type OrderLister interface {
	List(ctx context.Context) ([]domain.Order, error)
}

// Transitions is implemented by the order state service. The worker goes
// through the same compare-and-swap path as operators.
type Transitions interface {
	StartProcessing(ctx context.Context, orderID string) (*domain.Order, error)
	Deliver(ctx context.Context, orderID string) (*domain.Order, error)
}

// Result summarizes one pass over the orders.
type Result struct {
	Started   int
	Delivered int
	Skipped   int
	Failed    int
}

// DeliveryWorker moves approved orders to processing once the processing
// delay has passed, and processing orders to delivered once their delivery
// window has elapsed.
type DeliveryWorker struct {
	orders          OrderLister
	transitions     Transitions
	logger          *zap.Logger
	interval        time.Duration
	processingDelay time.Duration
	now             func() time.Time
}

func NewDeliveryWorker(orders OrderLister, transitions Transitions, logger *zap.Logger, interval, processingDelay time.Duration) *DeliveryWorker {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &DeliveryWorker{
		orders:          orders,
		transitions:     transitions,
		logger:          logger.With(zap.String("component", "delivery-worker")),
		interval:        interval,
		processingDelay: processingDelay,
		now:             time.Now,
	}
}

// Run passes over the orders every interval until ctx is cancelled.
func (w *DeliveryWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("delivery worker started", zap.Duration("interval", w.interval))
	for {
		if _, err := w.RunOnce(ctx, w.now().UTC()); err != nil {
			w.logger.Error("delivery pass failed", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			w.logger.Info("delivery worker stopped")
			return
		case <-ticker.C:
		}
	}
}

// Start runs the worker in its own goroutine. The returned channel is closed
// once Run has returned after ctx is cancelled.
func (w *DeliveryWorker) Start(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		w.Run(ctx)
	}()
	return done
}

func (w *DeliveryWorker) RunOnce(ctx context.Context, now time.Time) (Result, error) {
	var res Result

	orders, err := w.orders.List(ctx)
	if err != nil {
		return res, err
	}

	for i := range orders {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		o := &orders[i]

		switch {
		case o.Status == domain.OrderStatusVerified && o.AdminApproved && !now.Before(o.CreatedAt.Add(w.processingDelay)):
			w.advance(ctx, o.ID, "start-processing", w.transitions.StartProcessing, &res.Started, &res)
		case o.Status == domain.OrderStatusProcessing && !now.Before(o.EstimatedDelivery):
			w.advance(ctx, o.ID, "deliver", w.transitions.Deliver, &res.Delivered, &res)
		}
	}

	if res.Started > 0 || res.Delivered > 0 || res.Failed > 0 {
		w.logger.Info("delivery pass finished",
			zap.Int("started", res.Started),
			zap.Int("delivered", res.Delivered),
			zap.Int("skipped", res.Skipped),
			zap.Int("failed", res.Failed),
		)
	}
	return res, nil
}

func (w *DeliveryWorker) advance(
	ctx context.Context,
	orderID, action string,
	fn func(ctx context.Context, orderID string) (*domain.Order, error),
	counter *int,
	res *Result,
) {
	_, err := fn(ctx, orderID)
	switch {
	case err == nil:
		*counter++
	case isRace(err):
		// An operator got there first; the next pass sees the fresh state.
		w.logger.Debug("order changed under the worker", zap.String("orderId", orderID), zap.String("action", action), zap.Error(err))
		res.Skipped++
	default:
		w.logger.Error("failed to advance order", zap.String("orderId", orderID), zap.String("action", action), zap.Error(err))
		res.Failed++
	}
}

func isRace(err error) bool {
	if _, ok := apperrors.IsConflictError(err); ok {
		return true
	}
	_, ok := apperrors.IsNotFoundError(err)
	return ok
}
