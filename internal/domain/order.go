package domain

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

var (
	ErrInvalidTransition     = errors.New("invalid order transition")
	ErrApprovalCodeRequired  = errors.New("approval code is required")
	ErrApprovalCodeMismatch  = errors.New("approval code does not match")
	ErrNoApprovalCodeIssued  = errors.New("no approval code has been issued for this order")
	ErrNotApproved           = errors.New("order has not been approved")
	ErrDeliveryWindowPending = errors.New("delivery window has not elapsed")
	ErrAmountOutOfRange      = errors.New("amount out of range")
)

// MaxUnitPrice caps a single unit price at 10 billion taka.
const MaxUnitPrice Money = 1_000_000_000_000

type LineItem struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	UnitPrice Money  `json:"unitPrice"`
	Quantity  int    `json:"quantity"`
	SellerID  string `json:"sellerId"`
}

func (li LineItem) LineTotal() Money {
	return li.UnitPrice * Money(li.Quantity)
}

type CustomerInfo struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	GameID        string `json:"gameId,omitempty"`
	TransactionID string `json:"transactionId,omitempty"`
}

type Order struct {
	ID                 string        `json:"id"`
	VerificationNumber string        `json:"verificationNumber"`
	CustomerID         string        `json:"customerId,omitempty"`
	Items              []LineItem    `json:"items"`
	CustomerInfo       CustomerInfo  `json:"customerInfo"`
	PaymentMethod      PaymentMethod `json:"paymentMethod"`
	PromoCode          string        `json:"promoCode,omitempty"`
	Pricing
	Status             OrderStatus `json:"status"`
	AdminApproved      bool        `json:"adminApproved"`
	ApprovalNumber     string      `json:"approvalNumber"`
	IssuedApprovalCode string      `json:"issuedApprovalCode,omitempty"`
	ApprovedBy         string      `json:"approvedBy,omitempty"`
	RejectedBy         string      `json:"rejectedBy,omitempty"`
	RejectionReason    string      `json:"rejectionReason,omitempty"`
	CreatedAt          time.Time   `json:"createdAt"`
	UpdatedAt          time.Time   `json:"updatedAt"`
	EstimatedDelivery  time.Time   `json:"estimatedDelivery"`

	// Version is the store revision the order was read at.
	Version int64 `json:"-"`
}

func Subtotal(items []LineItem) Money {
	var total Money
	for _, item := range items {
		total += item.LineTotal()
	}
	return total
}

// CheckedSubtotal is Subtotal that fails with ErrAmountOutOfRange instead of
// wrapping around int64.
func CheckedSubtotal(items []LineItem) (Money, error) {
	var total Money
	for _, item := range items {
		if item.UnitPrice < 0 || item.Quantity < 0 {
			return 0, ErrAmountOutOfRange
		}
		if item.Quantity > 0 && item.UnitPrice > Money(math.MaxInt64)/Money(item.Quantity) {
			return 0, ErrAmountOutOfRange
		}
		line := item.LineTotal()
		if total > Money(math.MaxInt64)-line {
			return 0, ErrAmountOutOfRange
		}
		total += line
	}
	return total, nil
}

// Approve records an operator approval. actor is the approving user id, or
// empty when the customer confirms an issued code.
func (o *Order) Approve(code, actor string, now time.Time) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return ErrApprovalCodeRequired
	}
	if err := validateTransition(o.Status, OrderStatusVerified); err != nil {
		return err
	}
	o.Status = OrderStatusVerified
	o.AdminApproved = true
	o.ApprovalNumber = code
	o.IssuedApprovalCode = ""
	o.ApprovedBy = actor
	o.UpdatedAt = now
	return nil
}

func (o *Order) Reject(actor, reason string, now time.Time) error {
	if err := validateTransition(o.Status, OrderStatusRejected); err != nil {
		return err
	}
	o.Status = OrderStatusRejected
	o.IssuedApprovalCode = ""
	o.RejectedBy = actor
	o.RejectionReason = strings.TrimSpace(reason)
	o.UpdatedAt = now
	return nil
}

// IssueApprovalCode stores the code the operator sends to the customer out of
// band. The order stays pending until the customer submits it back.
func (o *Order) IssueApprovalCode(code string, now time.Time) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return ErrApprovalCodeRequired
	}
	if o.Status != OrderStatusPendingVerification {
		return fmt.Errorf("%w: cannot issue a code for a %s order", ErrInvalidTransition, o.Status)
	}
	o.IssuedApprovalCode = code
	o.UpdatedAt = now
	return nil
}

// ConfirmCode is the customer side of the handshake. It returns changed=false
// when the order was already approved with the same code.
func (o *Order) ConfirmCode(code string, now time.Time) (bool, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return false, ErrApprovalCodeRequired
	}
	if o.AdminApproved {
		if codesEqual(code, o.ApprovalNumber) {
			return false, nil
		}
		return false, ErrApprovalCodeMismatch
	}
	if o.Status != OrderStatusPendingVerification {
		return false, fmt.Errorf("%w: order is %s", ErrInvalidTransition, o.Status)
	}
	if o.IssuedApprovalCode == "" {
		return false, ErrNoApprovalCodeIssued
	}
	if !codesEqual(code, o.IssuedApprovalCode) {
		return false, ErrApprovalCodeMismatch
	}
	if err := o.Approve(o.IssuedApprovalCode, "", now); err != nil {
		return false, err
	}
	return true, nil
}

func (o *Order) StartProcessing(now time.Time) error {
	if !o.AdminApproved {
		return ErrNotApproved
	}
	if err := validateTransition(o.Status, OrderStatusProcessing); err != nil {
		return err
	}
	o.Status = OrderStatusProcessing
	o.UpdatedAt = now
	return nil
}

func (o *Order) Deliver(now time.Time) error {
	if err := validateTransition(o.Status, OrderStatusDelivered); err != nil {
		return err
	}
	if now.Before(o.EstimatedDelivery) {
		return ErrDeliveryWindowPending
	}
	o.Status = OrderStatusDelivered
	o.UpdatedAt = now
	return nil
}

func (o *Order) AwaitingApproval() bool {
	return o.Status == OrderStatusPendingVerification && !o.AdminApproved
}

// Validate checks a decoded record before it is handed to callers.
func (o *Order) Validate() error {
	if o.ID == "" {
		return errors.New("order id is empty")
	}
	if !IsCode(o.VerificationNumber) {
		return fmt.Errorf("order %s: malformed verification number", o.ID)
	}
	if !o.Status.Valid() {
		return fmt.Errorf("order %s: unknown status %q", o.ID, o.Status)
	}
	if !o.PaymentMethod.Valid() {
		return fmt.Errorf("order %s: unknown payment method %q", o.ID, o.PaymentMethod)
	}
	if len(o.Items) == 0 {
		return fmt.Errorf("order %s: no items", o.ID)
	}
	for i, item := range o.Items {
		if item.Quantity < 1 || item.UnitPrice < 0 || item.UnitPrice > MaxUnitPrice {
			return fmt.Errorf("order %s: invalid item %d", o.ID, i)
		}
	}
	subtotal, err := CheckedSubtotal(o.Items)
	if err != nil {
		return fmt.Errorf("order %s: subtotal: %w", o.ID, err)
	}
	if o.Subtotal != subtotal || !o.Pricing.Consistent() || o.Total < 0 {
		return fmt.Errorf("order %s: pricing does not add up", o.ID)
	}
	switch o.Status {
	case OrderStatusVerified, OrderStatusProcessing, OrderStatusDelivered:
		if !o.AdminApproved || o.ApprovalNumber == "" {
			return fmt.Errorf("order %s: %s without approval", o.ID, o.Status)
		}
	default:
		if o.AdminApproved || o.ApprovalNumber != "" {
			return fmt.Errorf("order %s: approval recorded on a %s order", o.ID, o.Status)
		}
	}
	if o.CreatedAt.IsZero() {
		return fmt.Errorf("order %s: missing createdAt", o.ID)
	}
	return nil
}

func codesEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(strings.ToUpper(a)), []byte(strings.ToUpper(b))) == 1
}
