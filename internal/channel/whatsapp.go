// Package channel builds the WhatsApp deep links used for the out-of-band
// handoff between customers and the operator. Nothing is sent from the
// server; the links are returned to the clients that open them.
package channel

import (
	"fmt"
	"net/url"
	"strings"

	"sobgamecoin/internal/domain"
)

const waBase = "https://wa.me/"

type WhatsApp struct {
	operatorPhone string
}

func NewWhatsApp(operatorPhone string) *WhatsApp {
	return &WhatsApp{operatorPhone: NormalizePhone(operatorPhone)}
}

// OperatorHandoffLink is what the customer opens after checkout to ask the
// operator to verify the payment.
func (w *WhatsApp) OperatorHandoffLink(o *domain.Order) string {
	lines := []string{
		"Hi! I need verification for my order.",
		"",
		"Verification Number: " + o.VerificationNumber,
		"Order ID: " + o.ID,
	}
	if o.CustomerInfo.TransactionID != "" {
		lines = append(lines, "Transaction ID: "+o.CustomerInfo.TransactionID)
	}
	lines = append(lines,
		"Payment Method: "+o.PaymentMethod.DisplayName(),
		"Total Amount: "+o.Total.String(),
	)
	return link(w.operatorPhone, strings.Join(lines, "\n"))
}

// ApprovalCodeLink is what the operator opens to send an issued code back to
// the customer.
func (w *WhatsApp) ApprovalCodeLink(o *domain.Order, code string) string {
	text := fmt.Sprintf("Hello %s! Your order %s has been approved. Your approval code is: %s",
		o.CustomerInfo.Name, o.ID, code)
	return link(NormalizePhone(o.CustomerInfo.Phone), text)
}

func (w *WhatsApp) ContactCustomerLink(o *domain.Order) string {
	text := fmt.Sprintf("Hello %s, regarding your order %s", o.CustomerInfo.Name, o.ID)
	return link(NormalizePhone(o.CustomerInfo.Phone), text)
}

// NormalizePhone keeps digits only and adds the Bangladesh country code to
// local numbers starting with 0.
func NormalizePhone(phone string) string {
	var sb strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			sb.WriteRune(r)
		}
	}
	digits := sb.String()
	if strings.HasPrefix(digits, "0") {
		return "88" + digits
	}
	return digits
}

func link(phone, text string) string {
	return waBase + phone + "?text=" + url.QueryEscape(text)
}
