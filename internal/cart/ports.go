package cart

import (
	"context"

	"sobgamecoin/internal/domain"
)

type Service interface {
	Get(ctx context.Context, ownerID string) (*domain.Cart, error)
	AddItem(ctx context.Context, ownerID string, item domain.LineItem) (*domain.Cart, error)
	RemoveItem(ctx context.Context, ownerID, productID string) (*domain.Cart, error)
	Clear(ctx context.Context, ownerID string) error
}

type Repository interface {
	Find(ctx context.Context, ownerID string) (*domain.Cart, error)
	Save(ctx context.Context, cart *domain.Cart) error
	Clear(ctx context.Context, ownerID string) error
}
