package usecase

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"sobgamecoin/internal/domain"
	"sobgamecoin/internal/dto"
	dtoerrors "sobgamecoin/internal/errors"
)

type mockTransitions struct {
	ApproveFunc           func(ctx context.Context, orderID, code, actorID string) (*domain.Order, error)
	RejectFunc            func(ctx context.Context, orderID, actorID, reason string) (*domain.Order, error)
	IssueApprovalCodeFunc func(ctx context.Context, orderID, code string) (*domain.Order, error)
	StartProcessingFunc   func(ctx context.Context, orderID string) (*domain.Order, error)
	DeliverFunc           func(ctx context.Context, orderID string) (*domain.Order, error)
}

func (m *mockTransitions) Approve(ctx context.Context, orderID, code, actorID string) (*domain.Order, error) {
	return m.ApproveFunc(ctx, orderID, code, actorID)
}

func (m *mockTransitions) Reject(ctx context.Context, orderID, actorID, reason string) (*domain.Order, error) {
	return m.RejectFunc(ctx, orderID, actorID, reason)
}

func (m *mockTransitions) IssueApprovalCode(ctx context.Context, orderID, code string) (*domain.Order, error) {
	return m.IssueApprovalCodeFunc(ctx, orderID, code)
}

func (m *mockTransitions) StartProcessing(ctx context.Context, orderID string) (*domain.Order, error) {
	return m.StartProcessingFunc(ctx, orderID)
}

func (m *mockTransitions) Deliver(ctx context.Context, orderID string) (*domain.Order, error) {
	return m.DeliverFunc(ctx, orderID)
}

var (
	admin      = &domain.User{ID: "admin-1", Role: domain.RoleAdmin}
	superAdmin = &domain.User{ID: "root-1", Role: domain.RoleSuperAdmin}
	customer   = &domain.User{ID: "user-1", Role: domain.RoleUser}
)

func newTestAdminUseCase(queue OrderQueue, state Transitions) *AdminUseCase {
	if queue == nil {
		queue = &mockOrderQueue{}
	}
	if state == nil {
		state = &mockTransitions{}
	}
	return NewAdminUseCase(queue, state, stubLinker{}, zap.NewNop(), 3)
}

func TestAdmin_RoleChecks(t *testing.T) {
	uc := newTestAdminUseCase(nil, nil)
	ctx := context.Background()

	operations := map[string]func(actor *domain.User) error{
		"list": func(actor *domain.User) error {
			_, err := uc.ListQueue(ctx, actor, dto.OrderFilter{})
			return err
		},
		"stats": func(actor *domain.User) error {
			_, err := uc.Stats(ctx, actor)
			return err
		},
		"issue": func(actor *domain.User) error {
			_, err := uc.IssueApprovalCode(ctx, actor, "SOB-1", "")
			return err
		},
		"approve": func(actor *domain.User) error {
			_, err := uc.Approve(ctx, actor, "SOB-1", "AB12CD")
			return err
		},
		"reject": func(actor *domain.User) error {
			_, err := uc.Reject(ctx, actor, "SOB-1", "")
			return err
		},
		"process": func(actor *domain.User) error {
			_, err := uc.StartProcessing(ctx, actor, "SOB-1")
			return err
		},
		"deliver": func(actor *domain.User) error {
			_, err := uc.Deliver(ctx, actor, "SOB-1")
			return err
		},
	}

	// The mocks have no funcs set, so reaching them would panic.
	for name, op := range operations {
		t.Run(name+" anonymous", func(t *testing.T) {
			if _, ok := dtoerrors.IsUnauthorizedError(op(nil)); !ok {
				t.Errorf("expected UnauthorizedError")
			}
		})
		t.Run(name+" customer", func(t *testing.T) {
			if _, ok := dtoerrors.IsForbiddenError(op(customer)); !ok {
				t.Errorf("expected ForbiddenError")
			}
		})
	}
}

func TestAdmin_ListQueueDefaultsToPending(t *testing.T) {
	var got dto.OrderFilter
	queue := &mockOrderQueue{
		ListFunc: func(ctx context.Context, filter dto.OrderFilter) ([]domain.Order, error) {
			got = filter
			return nil, nil
		},
	}

	_, err := newTestAdminUseCase(queue, nil).ListQueue(context.Background(), admin, dto.OrderFilter{Search: "rahim"})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != "pending_verification" {
		t.Errorf("expected pending_verification, got %q", got.Status)
	}
	if got.Search != "rahim" {
		t.Errorf("expected search to pass through, got %q", got.Search)
	}
}

func TestAdmin_ListQueueRejectsUnknownStatus(t *testing.T) {
	_, err := newTestAdminUseCase(nil, nil).ListQueue(context.Background(), admin, dto.OrderFilter{Status: "archived"})

	if _, ok := dtoerrors.IsValidationError(err); !ok {
		t.Errorf("expected ValidationError, got %T", err)
	}
}

func TestAdmin_IssueApprovalCodeBuildsCustomerLink(t *testing.T) {
	state := &mockTransitions{
		IssueApprovalCodeFunc: func(ctx context.Context, orderID, code string) (*domain.Order, error) {
			o := testOrder(orderID)
			o.IssuedApprovalCode = "K3M9PX"
			return o, nil
		},
	}

	issued, err := newTestAdminUseCase(nil, state).IssueApprovalCode(context.Background(), superAdmin, "SOB-1", "")

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if issued.Code != "K3M9PX" {
		t.Errorf("expected code K3M9PX, got %q", issued.Code)
	}
	if issued.CustomerLink != "customer:SOB-1:K3M9PX" {
		t.Errorf("unexpected customer link %q", issued.CustomerLink)
	}
}

func TestAdmin_ApproveRecordsActor(t *testing.T) {
	var gotActor, gotCode string
	state := &mockTransitions{
		ApproveFunc: func(ctx context.Context, orderID, code, actorID string) (*domain.Order, error) {
			gotActor, gotCode = actorID, code
			return testOrder(orderID), nil
		},
	}

	_, err := newTestAdminUseCase(nil, state).Approve(context.Background(), admin, "SOB-1", "AB12CD")

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotActor != "admin-1" || gotCode != "AB12CD" {
		t.Errorf("unexpected arguments %s %s", gotActor, gotCode)
	}
}

func TestAdmin_ConflictPassesThrough(t *testing.T) {
	state := &mockTransitions{
		RejectFunc: func(ctx context.Context, orderID, actorID, reason string) (*domain.Order, error) {
			return nil, dtoerrors.NewConflictError("rejected is terminal")
		},
	}

	_, err := newTestAdminUseCase(nil, state).Reject(context.Background(), admin, "SOB-1", "")

	if _, ok := dtoerrors.IsConflictError(err); !ok {
		t.Errorf("expected ConflictError, got %T", err)
	}
}

func TestAdmin_StatsRetriesDeadlock(t *testing.T) {
	calls := 0
	queue := &mockOrderQueue{
		StatsFunc: func(ctx context.Context) (*dto.OrderStats, error) {
			calls++
			if calls < 3 {
				return nil, createDeadlockError()
			}
			return &dto.OrderStats{PendingCount: 4}, nil
		},
	}

	stats, err := newTestAdminUseCase(queue, nil).Stats(context.Background(), admin)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.PendingCount != 4 {
		t.Errorf("expected 4 pending, got %d", stats.PendingCount)
	}
}

func TestAdmin_ContactLink(t *testing.T) {
	if got := newTestAdminUseCase(nil, nil).ContactLink(testOrder("SOB-9")); got != "contact:SOB-9" {
		t.Errorf("unexpected contact link %q", got)
	}
}
