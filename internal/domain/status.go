package domain

import (
	"encoding/json"
	"fmt"
)

type OrderStatus string

const (
	OrderStatusPendingVerification OrderStatus = "pending_verification"
	OrderStatusVerified            OrderStatus = "verified"
	OrderStatusRejected            OrderStatus = "rejected"
	OrderStatusProcessing          OrderStatus = "processing"
	OrderStatusDelivered           OrderStatus = "delivered"
)

var orderStatuses = []OrderStatus{
	OrderStatusPendingVerification,
	OrderStatusVerified,
	OrderStatusRejected,
	OrderStatusProcessing,
	OrderStatusDelivered,
}

// allowedTransitions lists, per status, the statuses it may move to.
// Rejected and delivered are terminal.
var allowedTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPendingVerification: {OrderStatusVerified, OrderStatusRejected},
	OrderStatusVerified:            {OrderStatusProcessing},
	OrderStatusProcessing:          {OrderStatusDelivered},
}

func ParseOrderStatus(s string) (OrderStatus, error) {
	for _, st := range orderStatuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown order status %q", s)
}

func (s OrderStatus) Valid() bool {
	_, err := ParseOrderStatus(string(s))
	return err == nil
}

func (s *OrderStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("order status must be a string: %w", err)
	}
	parsed, err := ParseOrderStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func CanTransition(from, to OrderStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func validateTransition(from, to OrderStatus) error {
	if _, ok := allowedTransitions[from]; !ok {
		return fmt.Errorf("%w: %s is terminal", ErrInvalidTransition, from)
	}
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: cannot move from %s to %s", ErrInvalidTransition, from, to)
	}
	return nil
}
