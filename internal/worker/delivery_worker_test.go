package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"sobgamecoin/internal/domain"
	apperrors "sobgamecoin/internal/errors"
	"sobgamecoin/internal/order/repository"
	"sobgamecoin/internal/order/service"
	"sobgamecoin/internal/storage"
)

type mockOrderLister struct {
	ListFunc func(ctx context.Context) ([]domain.Order, error)
}

func (m *mockOrderLister) List(ctx context.Context) ([]domain.Order, error) {
	return m.ListFunc(ctx)
}

type mockTransitions struct {
	mu                  sync.Mutex
	StartProcessingFunc func(ctx context.Context, orderID string) (*domain.Order, error)
	DeliverFunc         func(ctx context.Context, orderID string) (*domain.Order, error)
	calls               []string
}

func (m *mockTransitions) StartProcessing(ctx context.Context, orderID string) (*domain.Order, error) {
	m.record("process:" + orderID)
	return m.StartProcessingFunc(ctx, orderID)
}

func (m *mockTransitions) Deliver(ctx context.Context, orderID string) (*domain.Order, error) {
	m.record("deliver:" + orderID)
	return m.DeliverFunc(ctx, orderID)
}

func (m *mockTransitions) record(call string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, call)
}

var created = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func order(id string, status domain.OrderStatus, approved bool) domain.Order {
	return domain.Order{
		ID:                id,
		Status:            status,
		AdminApproved:     approved,
		CreatedAt:         created,
		EstimatedDelivery: created.Add(15 * time.Minute),
	}
}

func ok(ctx context.Context, orderID string) (*domain.Order, error) {
	return &domain.Order{ID: orderID}, nil
}

func TestRunOnce_AdvancesDueOrders(t *testing.T) {
	lister := &mockOrderLister{
		ListFunc: func(ctx context.Context) ([]domain.Order, error) {
			return []domain.Order{
				order("SOB-PENDING", domain.OrderStatusPendingVerification, false),
				order("SOB-VERIFIED", domain.OrderStatusVerified, true),
				order("SOB-PROCESSING", domain.OrderStatusProcessing, true),
				order("SOB-REJECTED", domain.OrderStatusRejected, false),
				order("SOB-DELIVERED", domain.OrderStatusDelivered, true),
			}, nil
		},
	}
	transitions := &mockTransitions{StartProcessingFunc: ok, DeliverFunc: ok}
	w := NewDeliveryWorker(lister, transitions, zap.NewNop(), time.Second, 5*time.Minute)

	res, err := w.RunOnce(context.Background(), created.Add(20*time.Minute))

	require.NoError(t, err)
	assert.Equal(t, Result{Started: 1, Delivered: 1}, res)
	assert.Equal(t, []string{"process:SOB-VERIFIED", "deliver:SOB-PROCESSING"}, transitions.calls)
}

func TestRunOnce_WaitsForDelays(t *testing.T) {
	lister := &mockOrderLister{
		ListFunc: func(ctx context.Context) ([]domain.Order, error) {
			return []domain.Order{
				order("SOB-VERIFIED", domain.OrderStatusVerified, true),
				order("SOB-PROCESSING", domain.OrderStatusProcessing, true),
			}, nil
		},
	}
	transitions := &mockTransitions{StartProcessingFunc: ok, DeliverFunc: ok}
	w := NewDeliveryWorker(lister, transitions, zap.NewNop(), time.Second, 5*time.Minute)

	res, err := w.RunOnce(context.Background(), created.Add(4*time.Minute))

	require.NoError(t, err)
	assert.Equal(t, Result{}, res)
	assert.Empty(t, transitions.calls)
}

func TestRunOnce_SkipsRacesAndCountsFailures(t *testing.T) {
	lister := &mockOrderLister{
		ListFunc: func(ctx context.Context) ([]domain.Order, error) {
			return []domain.Order{
				order("SOB-A", domain.OrderStatusVerified, true),
				order("SOB-B", domain.OrderStatusProcessing, true),
			}, nil
		},
	}
	transitions := &mockTransitions{
		StartProcessingFunc: func(ctx context.Context, orderID string) (*domain.Order, error) {
			return nil, apperrors.NewConflictError("already processing")
		},
		DeliverFunc: func(ctx context.Context, orderID string) (*domain.Order, error) {
			return nil, errors.New("store offline")
		},
	}
	w := NewDeliveryWorker(lister, transitions, zap.NewNop(), time.Second, 0)

	res, err := w.RunOnce(context.Background(), created.Add(time.Hour))

	require.NoError(t, err)
	assert.Equal(t, Result{Skipped: 1, Failed: 1}, res)
}

func TestRunOnce_ListError(t *testing.T) {
	lister := &mockOrderLister{
		ListFunc: func(ctx context.Context) ([]domain.Order, error) {
			return nil, errors.New("store offline")
		},
	}
	w := NewDeliveryWorker(lister, &mockTransitions{}, zap.NewNop(), time.Second, 0)

	_, err := w.RunOnce(context.Background(), created)

	assert.Error(t, err)
}

func TestRun_StopsOnCancel(t *testing.T) {
	var mu sync.Mutex
	passes := 0
	lister := &mockOrderLister{
		ListFunc: func(ctx context.Context) ([]domain.Order, error) {
			mu.Lock()
			passes++
			mu.Unlock()
			return nil, nil
		},
	}
	w := NewDeliveryWorker(lister, &mockTransitions{}, zap.NewNop(), 5*time.Millisecond, 0)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
	mu.Lock()
	defer mu.Unlock()
	assert.GreaterOrEqual(t, passes, 1)
}

func TestStart_DoneClosesAfterLastPass(t *testing.T) {
	var (
		mu       sync.Mutex
		inFlight bool
	)
	lister := &mockOrderLister{
		ListFunc: func(ctx context.Context) ([]domain.Order, error) {
			mu.Lock()
			inFlight = true
			mu.Unlock()
			time.Sleep(10 * time.Millisecond)
			mu.Lock()
			inFlight = false
			mu.Unlock()
			return nil, nil
		},
	}
	w := NewDeliveryWorker(lister, &mockTransitions{}, zap.NewNop(), time.Millisecond, 0)
	ctx, cancel := context.WithCancel(context.Background())

	done := w.Start(ctx)
	time.Sleep(15 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
	mu.Lock()
	defer mu.Unlock()
	assert.False(t, inFlight, "done closed while a pass was still running")
}

// The worker and the state service share the stored order, so a full pass
// moves an approved order through to delivered over two ticks.
func TestRunOnce_WithStateService(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewKVOrderRepository(storage.NewMemoryStore(), zap.NewNop())
	state := service.NewStateService(repo, zap.NewNop(), 3)

	o := order("SOB-LIVE", domain.OrderStatusPendingVerification, false)
	o.Items = []domain.LineItem{{ProductID: "p-1", Name: "Steam 50 USD", UnitPrice: 5000, Quantity: 1}}
	o.Pricing = domain.NewPricing(5000, 0)
	o.VerificationNumber = "ABC123"
	o.PaymentMethod = domain.PaymentMethodBkash
	o.CustomerInfo = domain.CustomerInfo{Name: "Rahim", Email: "rahim@example.com", Phone: "01711111111", TransactionID: "TX1"}
	o.UpdatedAt = created
	require.NoError(t, repo.Create(ctx, &o))
	_, err := state.Approve(ctx, "SOB-LIVE", "APPROVE1", "admin-1")
	require.NoError(t, err)

	w := NewDeliveryWorker(repo, state, zap.NewNop(), time.Second, 5*time.Minute)

	res, err := w.RunOnce(ctx, created.Add(6*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Started)

	res, err = w.RunOnce(ctx, created.Add(16*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Delivered)

	stored, err := repo.FindByID(ctx, "SOB-LIVE")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusDelivered, stored.Status)
}
