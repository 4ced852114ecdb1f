package promo

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"sobgamecoin/internal/domain"
)

var ErrUnknownPromoCode = errors.New("unknown promo code")

// Table maps normalized promo codes to a discount percentage.
type Table struct {
	codes map[string]int
}

func DefaultTable() *Table {
	t, _ := NewTable(map[string]int{
		"WELCOME10": 10,
		"SAVE15":    15,
		"NEWUSER":   20,
		"SPECIAL25": 25,
	})
	return t
}

func NewTable(codes map[string]int) (*Table, error) {
	normalized := make(map[string]int, len(codes))
	for code, pct := range codes {
		key := Normalize(code)
		if key == "" {
			return nil, fmt.Errorf("promo table contains an empty code")
		}
		if pct < 0 || pct > 100 {
			return nil, fmt.Errorf("promo code %s: percent %d outside 0-100", key, pct)
		}
		normalized[key] = pct
	}
	return &Table{codes: normalized}, nil
}

func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (t *Table) Lookup(code string) (int, error) {
	pct, ok := t.codes[Normalize(code)]
	if !ok {
		return 0, ErrUnknownPromoCode
	}
	return pct, nil
}

// Quote prices subtotal under code. An empty code means no discount. An
// unknown code returns current unchanged together with ErrUnknownPromoCode.
func (t *Table) Quote(subtotal domain.Money, code string, current domain.Pricing) (domain.Pricing, error) {
	if Normalize(code) == "" {
		return domain.NewPricing(subtotal, 0), nil
	}
	pct, err := t.Lookup(code)
	if err != nil {
		return current, err
	}
	return domain.NewPricing(subtotal, pct), nil
}

func (t *Table) Codes() []string {
	out := make([]string, 0, len(t.codes))
	for code := range t.codes {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}
