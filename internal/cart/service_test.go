package cart

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"sobgamecoin/internal/domain"
	apperrors "sobgamecoin/internal/errors"
)

type mockRepository struct {
	FindFunc  func(ctx context.Context, ownerID string) (*domain.Cart, error)
	SaveFunc  func(ctx context.Context, cart *domain.Cart) error
	ClearFunc func(ctx context.Context, ownerID string) error
}

func (m *mockRepository) Find(ctx context.Context, ownerID string) (*domain.Cart, error) {
	return m.FindFunc(ctx, ownerID)
}

func (m *mockRepository) Save(ctx context.Context, cart *domain.Cart) error {
	return m.SaveFunc(ctx, cart)
}

func (m *mockRepository) Clear(ctx context.Context, ownerID string) error {
	return m.ClearFunc(ctx, ownerID)
}

func repoWith(items ...domain.LineItem) (*mockRepository, *[]*domain.Cart) {
	var saved []*domain.Cart
	return &mockRepository{
		FindFunc: func(ctx context.Context, ownerID string) (*domain.Cart, error) {
			return &domain.Cart{OwnerID: ownerID, Items: append([]domain.LineItem{}, items...)}, nil
		},
		SaveFunc: func(ctx context.Context, cart *domain.Cart) error {
			saved = append(saved, cart)
			return nil
		},
	}, &saved
}

func TestService_AddItemMergesQuantity(t *testing.T) {
	repo, saved := repoWith(domain.LineItem{ProductID: "ff-100", Name: "100 Diamonds", UnitPrice: 12000, Quantity: 1})
	svc := NewService(repo, zap.NewNop())

	cart, err := svc.AddItem(context.Background(), "user-1", domain.LineItem{ProductID: " ff-100 ", Name: "100 Diamonds", UnitPrice: 11500, Quantity: 2})

	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 3, cart.Items[0].Quantity)
	assert.Equal(t, domain.Money(11500), cart.Items[0].UnitPrice)
	assert.False(t, cart.UpdatedAt.IsZero())
	assert.Len(t, *saved, 1)
}

func TestService_AddItemValidation(t *testing.T) {
	repo, saved := repoWith()
	svc := NewService(repo, zap.NewNop())

	_, err := svc.AddItem(context.Background(), "user-1", domain.LineItem{UnitPrice: -1, Quantity: 0})

	ve, ok := apperrors.IsValidationError(err)
	require.True(t, ok)
	assert.Len(t, ve.Details, 4)
	assert.Empty(t, *saved)
}

func TestService_AddItemRejectsHugeUnitPrice(t *testing.T) {
	repo, saved := repoWith()
	svc := NewService(repo, zap.NewNop())

	_, err := svc.AddItem(context.Background(), "user-1", domain.LineItem{ProductID: "p1", Name: "P", UnitPrice: 5_000_000_000_000_000_000, Quantity: 2})

	ve, ok := apperrors.IsValidationError(err)
	require.True(t, ok)
	require.Len(t, ve.Details, 1)
	assert.Equal(t, "unitPrice", ve.Details[0].Field)
	assert.Empty(t, *saved)

	_, err = svc.AddItem(context.Background(), "user-1", domain.LineItem{ProductID: "p1", Name: "P", UnitPrice: domain.MaxUnitPrice, Quantity: 1})
	assert.NoError(t, err)
}

func TestService_AddItemQuantityLimitAcrossAdds(t *testing.T) {
	repo, saved := repoWith(domain.LineItem{ProductID: "p1", Name: "P", Quantity: 99})
	svc := NewService(repo, zap.NewNop())

	_, err := svc.AddItem(context.Background(), "user-1", domain.LineItem{ProductID: "p1", Name: "P", Quantity: 2})

	_, ok := apperrors.IsValidationError(err)
	assert.True(t, ok)
	assert.Empty(t, *saved)
}

func TestService_RemoveItem(t *testing.T) {
	repo, _ := repoWith(domain.LineItem{ProductID: "p1", Name: "P", Quantity: 1})
	svc := NewService(repo, zap.NewNop())

	cart, err := svc.RemoveItem(context.Background(), "user-1", "p1")
	require.NoError(t, err)
	assert.Empty(t, cart.Items)

	_, err = svc.RemoveItem(context.Background(), "user-1", "missing")
	_, ok := apperrors.IsNotFoundError(err)
	assert.True(t, ok)
}

func TestService_SaveFailure(t *testing.T) {
	repo, _ := repoWith()
	repo.SaveFunc = func(ctx context.Context, cart *domain.Cart) error { return errors.New("disk full") }
	svc := NewService(repo, zap.NewNop())

	_, err := svc.AddItem(context.Background(), "user-1", domain.LineItem{ProductID: "p1", Name: "P", Quantity: 1})

	assert.EqualError(t, err, "disk full")
}
