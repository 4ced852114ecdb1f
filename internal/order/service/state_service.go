package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"sobgamecoin/internal/domain"
	"sobgamecoin/internal/errors"
	"sobgamecoin/internal/storage"

	"go.uber.org/zap"
)

type OrderStore interface {
	FindByID(ctx context.Context, id string) (*domain.Order, error)
	Update(ctx context.Context, order *domain.Order) error
}

// StateService applies status transitions. Each one reads the order, checks
// the transition against the state it read and writes it back with a
// compare-and-swap on the stored version. A lost race re-reads and
// re-evaluates instead of resending the stale write.
type StateService struct {
	orders      OrderStore
	logger      *zap.Logger
	maxAttempts int
	now         func() time.Time
}

func NewStateService(orders OrderStore, logger *zap.Logger, maxAttempts int) *StateService {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &StateService{
		orders:      orders,
		logger:      logger,
		maxAttempts: maxAttempts,
		now:         time.Now,
	}
}

// mutation changes order in place and reports whether anything needs writing.
type mutation func(order *domain.Order, now time.Time) (bool, error)

func (s *StateService) Approve(ctx context.Context, orderID, code, actorID string) (*domain.Order, error) {
	return s.apply(ctx, orderID, "approve", func(o *domain.Order, now time.Time) (bool, error) {
		return true, o.Approve(code, actorID, now)
	})
}

func (s *StateService) Reject(ctx context.Context, orderID, actorID, reason string) (*domain.Order, error) {
	return s.apply(ctx, orderID, "reject", func(o *domain.Order, now time.Time) (bool, error) {
		return true, o.Reject(actorID, reason, now)
	})
}

// IssueApprovalCode records code as the one the customer must submit back.
// An empty code is replaced by a generated one.
func (s *StateService) IssueApprovalCode(ctx context.Context, orderID, code string) (*domain.Order, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		generated, err := domain.NewCode()
		if err != nil {
			return nil, errors.NewInternalError("generating approval code", err)
		}
		code = generated
	}

	return s.apply(ctx, orderID, "issue-approval-code", func(o *domain.Order, now time.Time) (bool, error) {
		return true, o.IssueApprovalCode(code, now)
	})
}

func (s *StateService) ConfirmCode(ctx context.Context, orderID, code string) (*domain.Order, error) {
	return s.apply(ctx, orderID, "confirm-code", func(o *domain.Order, now time.Time) (bool, error) {
		return o.ConfirmCode(code, now)
	})
}

func (s *StateService) StartProcessing(ctx context.Context, orderID string) (*domain.Order, error) {
	return s.apply(ctx, orderID, "start-processing", func(o *domain.Order, now time.Time) (bool, error) {
		return true, o.StartProcessing(now)
	})
}

func (s *StateService) Deliver(ctx context.Context, orderID string) (*domain.Order, error) {
	return s.apply(ctx, orderID, "deliver", func(o *domain.Order, now time.Time) (bool, error) {
		return true, o.Deliver(now)
	})
}

func (s *StateService) apply(ctx context.Context, orderID, action string, mutate mutation) (*domain.Order, error) {
	logger := s.logger.With(zap.String("orderId", orderID), zap.String("action", action))

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		order, err := s.orders.FindByID(ctx, orderID)
		if err != nil {
			return nil, err
		}
		from := order.Status

		changed, err := mutate(order, s.now().UTC())
		if err != nil {
			logger.Warn("transition refused", zap.String("status", string(from)), zap.Error(err))
			return nil, mapTransitionError(err)
		}
		if !changed {
			return order, nil
		}

		err = s.orders.Update(ctx, order)
		if err == nil {
			logger.Info("order transitioned",
				zap.String("from", string(from)),
				zap.String("to", string(order.Status)),
				zap.Int64("version", order.Version),
			)
			return order, nil
		}

		if stderrors.Is(err, storage.ErrVersionConflict) {
			logger.Warn("concurrent update detected, re-evaluating", zap.Int("attempt", attempt), zap.Int("maxAttempts", s.maxAttempts))
			continue
		}

		logger.Error("failed to persist transition", zap.Error(err))
		return nil, err
	}

	return nil, errors.NewConflictError(fmt.Sprintf("order %s is being modified concurrently, try again", orderID))
}

func mapTransitionError(err error) error {
	switch {
	case stderrors.Is(err, domain.ErrApprovalCodeRequired):
		return errors.NewValidationError("approval code is required", errors.ValidationDetail{
			Field:   "approvalCode",
			Message: "approvalCode must not be empty",
		})
	case stderrors.Is(err, domain.ErrApprovalCodeMismatch):
		return errors.NewValidationError("approval code does not match", errors.ValidationDetail{
			Field:   "approvalCode",
			Message: "approvalCode does not match the code issued for this order",
		})
	case stderrors.Is(err, domain.ErrInvalidTransition),
		stderrors.Is(err, domain.ErrNotApproved),
		stderrors.Is(err, domain.ErrDeliveryWindowPending),
		stderrors.Is(err, domain.ErrNoApprovalCodeIssued):
		return errors.NewConflictError(err.Error())
	}
	return err
}
