package domain

import "fmt"

type PaymentMethod string

const (
	PaymentMethodBkash  PaymentMethod = "bkash"
	PaymentMethodNagad  PaymentMethod = "nagad"
	PaymentMethodRocket PaymentMethod = "rocket"
	PaymentMethodBank   PaymentMethod = "bank"
)

var paymentMethodNames = map[PaymentMethod]string{
	PaymentMethodBkash:  "bKash",
	PaymentMethodNagad:  "Nagad",
	PaymentMethodRocket: "Rocket",
	PaymentMethodBank:   "Bank Transfer",
}

func ParsePaymentMethod(s string) (PaymentMethod, error) {
	pm := PaymentMethod(s)
	if _, ok := paymentMethodNames[pm]; !ok {
		return "", fmt.Errorf("unknown payment method %q", s)
	}
	return pm, nil
}

func (p PaymentMethod) Valid() bool {
	_, ok := paymentMethodNames[p]
	return ok
}

func (p PaymentMethod) DisplayName() string {
	if name, ok := paymentMethodNames[p]; ok {
		return name
	}
	return string(p)
}

// RequiresTransactionID reports whether the customer must quote a wallet
// transaction id. Bank transfers are settled with the operator directly.
func (p PaymentMethod) RequiresTransactionID() bool {
	return p != PaymentMethodBank
}
