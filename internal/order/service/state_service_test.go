package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"sobgamecoin/internal/domain"
	apperrors "sobgamecoin/internal/errors"
	"sobgamecoin/internal/order/repository"
	"sobgamecoin/internal/storage"
)

type mockOrderStore struct {
	FindByIDFunc func(ctx context.Context, id string) (*domain.Order, error)
	UpdateFunc   func(ctx context.Context, order *domain.Order) error
}

func (m *mockOrderStore) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	return m.FindByIDFunc(ctx, id)
}

func (m *mockOrderStore) Update(ctx context.Context, order *domain.Order) error {
	return m.UpdateFunc(ctx, order)
}

func pendingOrder(id string, createdAt time.Time) *domain.Order {
	items := []domain.LineItem{{ProductID: "ff-100", Name: "100 Diamonds", UnitPrice: domain.BDT(120), Quantity: 1}}
	return &domain.Order{
		ID:                 id,
		VerificationNumber: "Q7W2ZK",
		Items:              items,
		CustomerInfo:       domain.CustomerInfo{Name: "Rahim", Email: "r@example.com", Phone: "01711000000", TransactionID: "TX"},
		PaymentMethod:      domain.PaymentMethodBkash,
		Pricing:            domain.NewPricing(domain.Subtotal(items), 0),
		Status:             domain.OrderStatusPendingVerification,
		CreatedAt:          createdAt,
		UpdatedAt:          createdAt,
		EstimatedDelivery:  createdAt.Add(15 * time.Minute),
	}
}

func newStateServiceWithStore(t *testing.T, now time.Time) (*StateService, *repository.KVOrderRepository) {
	t.Helper()
	repo := repository.NewKVOrderRepository(storage.NewMemoryStore(), zap.NewNop())
	require.NoError(t, repo.Create(context.Background(), pendingOrder("SOB-1", fixedNow)))

	svc := NewStateService(repo, zap.NewNop(), 3)
	svc.now = func() time.Time { return now }
	return svc, repo
}

func TestStateService_OperatorApproves(t *testing.T) {
	svc, repo := newStateServiceWithStore(t, fixedNow.Add(time.Minute))

	order, err := svc.Approve(context.Background(), "SOB-1", "AB12CD", "admin-1")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusVerified, order.Status)

	stored, err := repo.FindByID(context.Background(), "SOB-1")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusVerified, stored.Status)
	assert.True(t, stored.AdminApproved)
	assert.Equal(t, "AB12CD", stored.ApprovalNumber)
	assert.Equal(t, "admin-1", stored.ApprovedBy)
}

func TestStateService_ApproveWithoutCode(t *testing.T) {
	svc, repo := newStateServiceWithStore(t, fixedNow)

	_, err := svc.Approve(context.Background(), "SOB-1", "", "admin-1")

	_, ok := apperrors.IsValidationError(err)
	assert.True(t, ok)
	stored, err := repo.FindByID(context.Background(), "SOB-1")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPendingVerification, stored.Status)
}

func TestStateService_CustomerHandshake(t *testing.T) {
	svc, _ := newStateServiceWithStore(t, fixedNow.Add(time.Minute))
	ctx := context.Background()

	_, err := svc.ConfirmCode(ctx, "SOB-1", "AB12CD")
	_, ok := apperrors.IsConflictError(err)
	assert.True(t, ok, "confirming before a code is issued must conflict")

	issued, err := svc.IssueApprovalCode(ctx, "SOB-1", "")
	require.NoError(t, err)
	code := issued.IssuedApprovalCode
	require.True(t, domain.IsCode(code))
	assert.Equal(t, domain.OrderStatusPendingVerification, issued.Status)

	_, err = svc.ConfirmCode(ctx, "SOB-1", "ZZZZZZ")
	_, ok = apperrors.IsValidationError(err)
	assert.True(t, ok, "wrong code must be refused")

	order, err := svc.ConfirmCode(ctx, "SOB-1", code)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusVerified, order.Status)
	assert.Equal(t, code, order.ApprovalNumber)

	again, err := svc.ConfirmCode(ctx, "SOB-1", code)
	require.NoError(t, err)
	assert.Equal(t, order.Version, again.Version)
}

func TestStateService_RejectedIsTerminal(t *testing.T) {
	svc, _ := newStateServiceWithStore(t, fixedNow)
	ctx := context.Background()

	_, err := svc.Reject(ctx, "SOB-1", "admin-1", "no payment received")
	require.NoError(t, err)

	_, err = svc.Approve(ctx, "SOB-1", "AB12CD", "admin-1")
	_, ok := apperrors.IsConflictError(err)
	assert.True(t, ok)
}

func TestStateService_ProcessingAndDelivery(t *testing.T) {
	svc, _ := newStateServiceWithStore(t, fixedNow.Add(6*time.Minute))
	ctx := context.Background()

	_, err := svc.StartProcessing(ctx, "SOB-1")
	_, ok := apperrors.IsConflictError(err)
	assert.True(t, ok, "unapproved order must not start processing")

	_, err = svc.Approve(ctx, "SOB-1", "AB12CD", "admin-1")
	require.NoError(t, err)
	_, err = svc.StartProcessing(ctx, "SOB-1")
	require.NoError(t, err)

	_, err = svc.Deliver(ctx, "SOB-1")
	_, ok = apperrors.IsConflictError(err)
	assert.True(t, ok, "delivery before the window must conflict")

	svc.now = func() time.Time { return fixedNow.Add(16 * time.Minute) }
	order, err := svc.Deliver(ctx, "SOB-1")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusDelivered, order.Status)
}

func TestStateService_NotFound(t *testing.T) {
	svc, _ := newStateServiceWithStore(t, fixedNow)

	_, err := svc.Approve(context.Background(), "SOB-404", "AB12CD", "admin-1")

	_, ok := apperrors.IsNotFoundError(err)
	assert.True(t, ok)
}

func TestStateService_ReevaluatesAfterConflict(t *testing.T) {
	reads := 0
	store := &mockOrderStore{
		FindByIDFunc: func(ctx context.Context, id string) (*domain.Order, error) {
			reads++
			o := pendingOrder(id, fixedNow)
			o.Version = int64(reads)
			if reads == 2 {
				// Another operator rejected the order in between.
				o.Status = domain.OrderStatusRejected
			}
			return o, nil
		},
		UpdateFunc: func(ctx context.Context, order *domain.Order) error {
			return storage.ErrVersionConflict
		},
	}

	_, err := NewStateService(store, zap.NewNop(), 3).Approve(context.Background(), "SOB-1", "AB12CD", "admin-1")

	_, ok := apperrors.IsConflictError(err)
	assert.True(t, ok)
	assert.Equal(t, 2, reads)
}

func TestStateService_ConflictRetrySucceeds(t *testing.T) {
	updates := 0
	store := &mockOrderStore{
		FindByIDFunc: func(ctx context.Context, id string) (*domain.Order, error) {
			return pendingOrder(id, fixedNow), nil
		},
		UpdateFunc: func(ctx context.Context, order *domain.Order) error {
			updates++
			if updates == 1 {
				return storage.ErrVersionConflict
			}
			return nil
		},
	}

	order, err := NewStateService(store, zap.NewNop(), 3).Approve(context.Background(), "SOB-1", "AB12CD", "admin-1")

	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusVerified, order.Status)
	assert.Equal(t, 2, updates)
}

func TestStateService_ConflictAttemptsExhausted(t *testing.T) {
	store := &mockOrderStore{
		FindByIDFunc: func(ctx context.Context, id string) (*domain.Order, error) {
			return pendingOrder(id, fixedNow), nil
		},
		UpdateFunc: func(ctx context.Context, order *domain.Order) error {
			return storage.ErrVersionConflict
		},
	}

	_, err := NewStateService(store, zap.NewNop(), 2).Reject(context.Background(), "SOB-1", "admin-1", "")

	_, ok := apperrors.IsConflictError(err)
	assert.True(t, ok)
}

func TestStateService_ConcurrentApproveAndReject(t *testing.T) {
	svc, repo := newStateServiceWithStore(t, fixedNow)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, errs[0] = svc.Approve(ctx, "SOB-1", "AB12CD", "admin-1")
	}()
	go func() {
		defer wg.Done()
		_, errs[1] = svc.Reject(ctx, "SOB-1", "admin-2", "")
	}()
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		}
	}
	assert.Equal(t, 1, succeeded)

	stored, err := repo.FindByID(ctx, "SOB-1")
	require.NoError(t, err)
	if stored.Status == domain.OrderStatusVerified {
		assert.True(t, stored.AdminApproved)
	} else {
		assert.Equal(t, domain.OrderStatusRejected, stored.Status)
		assert.False(t, stored.AdminApproved)
	}
}
