package domain

import (
	"github.com/shopspring/decimal"
)

// Money is an amount in poisha (1 BDT = 100 poisha).
type Money int64

var hundred = decimal.NewFromInt(100)

func BDT(taka int64) Money {
	return Money(taka * 100)
}

func (m Money) Decimal() decimal.Decimal {
	return decimal.New(int64(m), -2)
}

// Percent returns pct percent of m, rounded half away from zero to the
// nearest poisha.
func (m Money) Percent(pct int) Money {
	return Money(decimal.NewFromInt(int64(m)).
		Mul(decimal.NewFromInt(int64(pct))).
		Div(hundred).
		Round(0).
		IntPart())
}

func (m Money) String() string {
	return "৳" + m.Decimal().StringFixed(2)
}

// Pricing holds the derived money fields of an order. Always build it with
// NewPricing so total and discount stay consistent with the subtotal.
type Pricing struct {
	Subtotal        Money `json:"subtotal"`
	DiscountPercent int   `json:"discountPercent"`
	DiscountAmount  Money `json:"discountAmount"`
	Total           Money `json:"total"`
}

func NewPricing(subtotal Money, discountPercent int) Pricing {
	discount := subtotal.Percent(discountPercent)
	return Pricing{
		Subtotal:        subtotal,
		DiscountPercent: discountPercent,
		DiscountAmount:  discount,
		Total:           subtotal - discount,
	}
}

func (p Pricing) Consistent() bool {
	if p.DiscountPercent < 0 || p.DiscountPercent > 100 {
		return false
	}
	return p == NewPricing(p.Subtotal, p.DiscountPercent)
}
