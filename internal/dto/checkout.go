package dto

import "sobgamecoin/internal/domain"

type CustomerInfoRequest struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	GameID        string `json:"gameId"`
	TransactionID string `json:"transactionId"`
}

type PlaceOrderRequest struct {
	CustomerInfo  CustomerInfoRequest `json:"customerInfo"`
	PaymentMethod string              `json:"paymentMethod"`
	PromoCode     string              `json:"promoCode"`
}

// PlaceOrderInput is the checkout request after the owner of the cart has
// been resolved from the request headers.
type PlaceOrderInput struct {
	OwnerID       string
	CustomerID    string
	CustomerInfo  domain.CustomerInfo
	PaymentMethod string
	PromoCode     string
}

type PlaceOrderResult struct {
	Order        *domain.Order
	OperatorLink string
}

type VerifyOrderRequest struct {
	ApprovalCode string `json:"approvalCode"`
}

type ApproveOrderRequest struct {
	ApprovalCode string `json:"approvalCode"`
}

type IssueApprovalCodeRequest struct {
	// ApprovalCode is optional; a fresh code is generated when empty.
	ApprovalCode string `json:"approvalCode"`
}

type RejectOrderRequest struct {
	Reason string `json:"reason"`
}

type IssuedApprovalCode struct {
	Order        *domain.Order
	Code         string
	CustomerLink string
}
