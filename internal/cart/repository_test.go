package cart

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sobgamecoin/internal/domain"
	apperrors "sobgamecoin/internal/errors"
	"sobgamecoin/internal/storage"
)

func TestKVRepository_FindMissingCartIsEmpty(t *testing.T) {
	repo := NewKVRepository(storage.NewMemoryStore())

	cart, err := repo.Find(context.Background(), "guest-1")

	require.NoError(t, err)
	assert.Equal(t, "guest-1", cart.OwnerID)
	assert.Empty(t, cart.Items)
	assert.NotNil(t, cart.Items)
}

func TestKVRepository_SaveFindClear(t *testing.T) {
	ctx := context.Background()
	repo := NewKVRepository(storage.NewMemoryStore())

	cart := &domain.Cart{OwnerID: "user-1"}
	cart.Put(domain.LineItem{ProductID: "pubg-60", Name: "60 UC", UnitPrice: domain.BDT(95), Quantity: 2})
	require.NoError(t, repo.Save(ctx, cart))

	found, err := repo.Find(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, cart.Items, found.Items)

	require.NoError(t, repo.Clear(ctx, "user-1"))
	require.NoError(t, repo.Clear(ctx, "user-1"))

	found, err = repo.Find(ctx, "user-1")
	require.NoError(t, err)
	assert.Empty(t, found.Items)
}

func TestKVRepository_MalformedRecord(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	repo := NewKVRepository(store)

	_, err := store.Set(ctx, "cart:user-1", []byte(`{"items":[{"productId":"x","quantity":0}]}`))
	require.NoError(t, err)
	_, err = repo.Find(ctx, "user-1")
	_, ok := apperrors.IsInternalError(err)
	assert.True(t, ok)

	_, err = store.Set(ctx, "cart:user-2", []byte(`not json`))
	require.NoError(t, err)
	_, err = repo.Find(ctx, "user-2")
	_, ok = apperrors.IsInternalError(err)
	assert.True(t, ok)
}
