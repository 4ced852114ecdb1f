package domain

import "time"

type Cart struct {
	OwnerID   string     `json:"ownerId"`
	Items     []LineItem `json:"items"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// Put adds item to the cart, merging quantities for a product already in it.
// The unit price of the latest add wins.
func (c *Cart) Put(item LineItem) {
	for i := range c.Items {
		if c.Items[i].ProductID == item.ProductID {
			c.Items[i].Quantity += item.Quantity
			c.Items[i].UnitPrice = item.UnitPrice
			c.Items[i].Name = item.Name
			c.Items[i].SellerID = item.SellerID
			return
		}
	}
	c.Items = append(c.Items, item)
}

func (c *Cart) Remove(productID string) bool {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return true
		}
	}
	return false
}

func (c Cart) Subtotal() Money {
	return Subtotal(c.Items)
}

// Snapshot returns a copy of the items detached from the cart.
func (c Cart) Snapshot() []LineItem {
	items := make([]LineItem, len(c.Items))
	copy(items, c.Items)
	return items
}
