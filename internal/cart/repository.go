package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"sobgamecoin/internal/domain"
	apperrors "sobgamecoin/internal/errors"
	"sobgamecoin/internal/storage"
)

const cartKeyPrefix = "cart:"

type KVRepository struct {
	store storage.Store
}

func NewKVRepository(store storage.Store) *KVRepository {
	return &KVRepository{store: store}
}

// Find returns an empty cart when the owner has none stored.
func (r *KVRepository) Find(ctx context.Context, ownerID string) (*domain.Cart, error) {
	entry, err := r.store.Get(ctx, cartKeyPrefix+ownerID)
	if errors.Is(err, storage.ErrNotFound) {
		return &domain.Cart{OwnerID: ownerID, Items: []domain.LineItem{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying cart: %w", err)
	}

	var cart domain.Cart
	if err := json.Unmarshal(entry.Value, &cart); err != nil {
		return nil, apperrors.NewInternalError(fmt.Sprintf("cart record %s is malformed", entry.Key), err)
	}
	for i, item := range cart.Items {
		if item.ProductID == "" || item.Quantity < 1 || item.UnitPrice < 0 {
			return nil, apperrors.NewInternalError(fmt.Sprintf("cart record %s has an invalid item %d", entry.Key, i), nil)
		}
	}
	cart.OwnerID = ownerID
	if cart.Items == nil {
		cart.Items = []domain.LineItem{}
	}
	return &cart, nil
}

func (r *KVRepository) Save(ctx context.Context, cart *domain.Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("encoding cart: %w", err)
	}
	if _, err := r.store.Set(ctx, cartKeyPrefix+cart.OwnerID, data); err != nil {
		return fmt.Errorf("saving cart: %w", err)
	}
	return nil
}

func (r *KVRepository) Clear(ctx context.Context, ownerID string) error {
	if err := r.store.Remove(ctx, cartKeyPrefix+ownerID); err != nil {
		return fmt.Errorf("clearing cart: %w", err)
	}
	return nil
}
