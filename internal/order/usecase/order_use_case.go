package usecase

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"sobgamecoin/internal/domain"
	"sobgamecoin/internal/dto"
	dtoerrors "sobgamecoin/internal/errors"
)

type Checkout interface {
	PlaceOrder(ctx context.Context, in dto.PlaceOrderInput) (*domain.Order, error)
}

type OrderReader interface {
	FindByID(ctx context.Context, id string) (*domain.Order, error)
}

type OrderQueue interface {
	List(ctx context.Context, filter dto.OrderFilter) ([]domain.Order, error)
	Stats(ctx context.Context) (*dto.OrderStats, error)
}

type CodeConfirmer interface {
	ConfirmCode(ctx context.Context, orderID, code string) (*domain.Order, error)
}

type Linker interface {
	OperatorHandoffLink(o *domain.Order) string
	ApprovalCodeLink(o *domain.Order, code string) string
	ContactCustomerLink(o *domain.Order) string
}

// OrderUseCase serves the customer side of the order lifecycle.
type OrderUseCase struct {
	checkout         Checkout
	orders           OrderReader
	queue            OrderQueue
	confirmer        CodeConfirmer
	linker           Linker
	logger           *zap.Logger
	maxRetryAttempts int
	now              func() time.Time
}

func NewOrderUseCase(
	checkout Checkout,
	orders OrderReader,
	queue OrderQueue,
	confirmer CodeConfirmer,
	linker Linker,
	logger *zap.Logger,
	maxRetryAttempts int,
) *OrderUseCase {
	return &OrderUseCase{
		checkout:         checkout,
		orders:           orders,
		queue:            queue,
		confirmer:        confirmer,
		linker:           linker,
		logger:           logger,
		maxRetryAttempts: maxRetryAttempts,
		now:              time.Now,
	}
}

func (uc *OrderUseCase) PlaceOrder(ctx context.Context, in dto.PlaceOrderInput) (*dto.PlaceOrderResult, error) {
	if strings.TrimSpace(in.OwnerID) == "" {
		return nil, dtoerrors.NewValidationError("cart owner is required", dtoerrors.ValidationDetail{
			Field:   "X-Cart-Id",
			Message: "X-User-Id or X-Cart-Id header is required",
		})
	}

	uc.logger.Info("checkout started", zap.String("ownerId", in.OwnerID), zap.String("paymentMethod", in.PaymentMethod))

	order, err := withRetry(ctx, uc.logger, uc.maxRetryAttempts, func(ctx context.Context) (*domain.Order, error) {
		return uc.checkout.PlaceOrder(ctx, in)
	})
	if err != nil {
		return nil, err
	}

	return &dto.PlaceOrderResult{
		Order:        order,
		OperatorLink: uc.linker.OperatorHandoffLink(order),
	}, nil
}

func (uc *OrderUseCase) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	return withRetry(ctx, uc.logger, uc.maxRetryAttempts, func(ctx context.Context) (*domain.Order, error) {
		return uc.orders.FindByID(ctx, orderID)
	})
}

// OperatorLink rebuilds the handoff link for an order that is still waiting
// for the operator, so the verification page can be reopened.
func (uc *OrderUseCase) OperatorLink(o *domain.Order) string {
	if !o.AwaitingApproval() {
		return ""
	}
	return uc.linker.OperatorHandoffLink(o)
}

// Track projects the delivery phase. Orders that are not approved yet get no
// phase and are flagged as awaiting verification.
func (uc *OrderUseCase) Track(ctx context.Context, orderID string) (*dto.Tracking, error) {
	order, err := uc.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	tracking := &dto.Tracking{
		OrderID:              order.ID,
		Status:               order.Status,
		AwaitingVerification: order.AwaitingApproval(),
		EstimatedDelivery:    order.EstimatedDelivery,
	}
	if !order.AdminApproved {
		return tracking, nil
	}

	phase := domain.PhaseAt(uc.now(), order.CreatedAt)
	if order.Status == domain.OrderStatusDelivered {
		phase = domain.PhaseDelivered
	}
	tracking.Phase = phase
	tracking.Progress = phase.Progress()

	return tracking, nil
}

func (uc *OrderUseCase) VerifyCode(ctx context.Context, orderID, code string) (*domain.Order, error) {
	order, err := withRetry(ctx, uc.logger, uc.maxRetryAttempts, func(ctx context.Context) (*domain.Order, error) {
		return uc.confirmer.ConfirmCode(ctx, orderID, code)
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("approval code confirmed", zap.String("orderId", orderID))
	return order, nil
}

func (uc *OrderUseCase) ListCustomerOrders(ctx context.Context, customerID string, filter dto.OrderFilter) ([]domain.Order, error) {
	if customerID == "" {
		return nil, dtoerrors.NewUnauthorizedError("sign in to see your orders")
	}
	filter.CustomerID = customerID
	if err := validateStatusFilter(filter.Status); err != nil {
		return nil, err
	}

	return withRetry(ctx, uc.logger, uc.maxRetryAttempts, func(ctx context.Context) ([]domain.Order, error) {
		return uc.queue.List(ctx, filter)
	})
}

func validateStatusFilter(status string) error {
	if status == "" || status == dto.FilterAll {
		return nil
	}
	if _, err := domain.ParseOrderStatus(status); err != nil {
		return dtoerrors.NewValidationError("invalid status filter", dtoerrors.ValidationDetail{
			Field:   "status",
			Message: "status must be all or one of pending_verification, verified, rejected, processing, delivered",
		})
	}
	return nil
}
