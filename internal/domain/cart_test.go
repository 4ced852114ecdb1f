package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCart_PutMergesQuantities(t *testing.T) {
	cart := Cart{OwnerID: "user-1"}

	cart.Put(LineItem{ProductID: "pubg-uc-60", UnitPrice: BDT(95), Quantity: 1})
	cart.Put(LineItem{ProductID: "pubg-uc-60", UnitPrice: BDT(99), Quantity: 2})
	cart.Put(LineItem{ProductID: "steam-10usd", UnitPrice: BDT(1250), Quantity: 1})

	assert.Len(t, cart.Items, 2)
	assert.Equal(t, 3, cart.Items[0].Quantity)
	assert.Equal(t, BDT(99), cart.Items[0].UnitPrice)
	assert.Equal(t, BDT(3*99+1250), cart.Subtotal())
}

func TestCart_SnapshotIsDetached(t *testing.T) {
	cart := Cart{OwnerID: "user-1"}
	cart.Put(LineItem{ProductID: "pubg-uc-60", UnitPrice: BDT(95), Quantity: 1})

	snapshot := cart.Snapshot()
	cart.Items[0].Quantity = 10

	assert.Equal(t, 1, snapshot[0].Quantity)
}

func TestCart_Remove(t *testing.T) {
	cart := Cart{OwnerID: "user-1"}
	cart.Put(LineItem{ProductID: "pubg-uc-60", UnitPrice: BDT(95), Quantity: 1})

	assert.False(t, cart.Remove("missing"))
	assert.True(t, cart.Remove("pubg-uc-60"))
	assert.Empty(t, cart.Items)
}
