package usecase

import (
	"context"

	"go.uber.org/zap"

	"sobgamecoin/internal/domain"
	"sobgamecoin/internal/dto"
	dtoerrors "sobgamecoin/internal/errors"
)

type Transitions interface {
	Approve(ctx context.Context, orderID, code, actorID string) (*domain.Order, error)
	Reject(ctx context.Context, orderID, actorID, reason string) (*domain.Order, error)
	IssueApprovalCode(ctx context.Context, orderID, code string) (*domain.Order, error)
	StartProcessing(ctx context.Context, orderID string) (*domain.Order, error)
	Deliver(ctx context.Context, orderID string) (*domain.Order, error)
}

// AdminUseCase is the operator side: the approval queue and the manual
// transitions. Every operation checks the acting user's role first.
type AdminUseCase struct {
	queue            OrderQueue
	state            Transitions
	linker           Linker
	logger           *zap.Logger
	maxRetryAttempts int
}

func NewAdminUseCase(
	queue OrderQueue,
	state Transitions,
	linker Linker,
	logger *zap.Logger,
	maxRetryAttempts int,
) *AdminUseCase {
	return &AdminUseCase{
		queue:            queue,
		state:            state,
		linker:           linker,
		logger:           logger,
		maxRetryAttempts: maxRetryAttempts,
	}
}

func authorize(actor *domain.User) error {
	if actor == nil {
		return dtoerrors.NewUnauthorizedError("authentication required")
	}
	if !actor.CanManageOrders() {
		return dtoerrors.NewForbiddenError("admin role required")
	}
	return nil
}

// ListQueue defaults to the pending verification queue when no status is given.
func (uc *AdminUseCase) ListQueue(ctx context.Context, actor *domain.User, filter dto.OrderFilter) ([]domain.Order, error) {
	if err := authorize(actor); err != nil {
		return nil, err
	}
	if filter.Status == "" {
		filter.Status = string(domain.OrderStatusPendingVerification)
	}
	if err := validateStatusFilter(filter.Status); err != nil {
		return nil, err
	}

	return withRetry(ctx, uc.logger, uc.maxRetryAttempts, func(ctx context.Context) ([]domain.Order, error) {
		return uc.queue.List(ctx, filter)
	})
}

func (uc *AdminUseCase) Stats(ctx context.Context, actor *domain.User) (*dto.OrderStats, error) {
	if err := authorize(actor); err != nil {
		return nil, err
	}

	return withRetry(ctx, uc.logger, uc.maxRetryAttempts, func(ctx context.Context) (*dto.OrderStats, error) {
		return uc.queue.Stats(ctx)
	})
}

func (uc *AdminUseCase) IssueApprovalCode(ctx context.Context, actor *domain.User, orderID, code string) (*dto.IssuedApprovalCode, error) {
	if err := authorize(actor); err != nil {
		return nil, err
	}

	order, err := withRetry(ctx, uc.logger, uc.maxRetryAttempts, func(ctx context.Context) (*domain.Order, error) {
		return uc.state.IssueApprovalCode(ctx, orderID, code)
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("approval code issued", zap.String("orderId", orderID), zap.String("actorId", actor.ID))
	return &dto.IssuedApprovalCode{
		Order:        order,
		Code:         order.IssuedApprovalCode,
		CustomerLink: uc.linker.ApprovalCodeLink(order, order.IssuedApprovalCode),
	}, nil
}

func (uc *AdminUseCase) Approve(ctx context.Context, actor *domain.User, orderID, code string) (*domain.Order, error) {
	if err := authorize(actor); err != nil {
		return nil, err
	}
	return withRetry(ctx, uc.logger, uc.maxRetryAttempts, func(ctx context.Context) (*domain.Order, error) {
		return uc.state.Approve(ctx, orderID, code, actor.ID)
	})
}

func (uc *AdminUseCase) Reject(ctx context.Context, actor *domain.User, orderID, reason string) (*domain.Order, error) {
	if err := authorize(actor); err != nil {
		return nil, err
	}
	return withRetry(ctx, uc.logger, uc.maxRetryAttempts, func(ctx context.Context) (*domain.Order, error) {
		return uc.state.Reject(ctx, orderID, actor.ID, reason)
	})
}

func (uc *AdminUseCase) StartProcessing(ctx context.Context, actor *domain.User, orderID string) (*domain.Order, error) {
	if err := authorize(actor); err != nil {
		return nil, err
	}
	return withRetry(ctx, uc.logger, uc.maxRetryAttempts, func(ctx context.Context) (*domain.Order, error) {
		return uc.state.StartProcessing(ctx, orderID)
	})
}

func (uc *AdminUseCase) Deliver(ctx context.Context, actor *domain.User, orderID string) (*domain.Order, error) {
	if err := authorize(actor); err != nil {
		return nil, err
	}
	return withRetry(ctx, uc.logger, uc.maxRetryAttempts, func(ctx context.Context) (*domain.Order, error) {
		return uc.state.Deliver(ctx, orderID)
	})
}

// ContactLink is the operator's link to message the customer about an order.
func (uc *AdminUseCase) ContactLink(o *domain.Order) string {
	return uc.linker.ContactCustomerLink(o)
}
