package dto

import (
	"time"

	"sobgamecoin/internal/domain"
)

const (
	FilterAll = "all"
)

// OrderFilter narrows an order listing. An empty Status means all statuses;
// "pending_verification" matches only orders still awaiting approval.
type OrderFilter struct {
	Status     string
	Search     string
	CustomerID string
}

type OrderStats struct {
	PendingCount    int          `json:"pendingCount"`
	ApprovedCount   int          `json:"approvedCount"`
	ApprovedRevenue domain.Money `json:"approvedRevenue"`
	RevenueDisplay  string       `json:"revenueDisplay"`
}

type Tracking struct {
	OrderID              string             `json:"orderId"`
	Status               domain.OrderStatus `json:"status"`
	AwaitingVerification bool               `json:"awaitingVerification"`
	Phase                domain.Phase       `json:"phase,omitempty"`
	Progress             int                `json:"progress"`
	EstimatedDelivery    time.Time          `json:"estimatedDelivery"`
}

type LineItemView struct {
	ProductID string       `json:"productId"`
	Name      string       `json:"name"`
	UnitPrice domain.Money `json:"unitPrice"`
	Quantity  int          `json:"quantity"`
	SellerID  string       `json:"sellerId,omitempty"`
	LineTotal domain.Money `json:"lineTotal"`
}

// OrderView is the customer-facing projection of an order. It never carries
// the operator-issued code.
type OrderView struct {
	ID                 string              `json:"id"`
	VerificationNumber string              `json:"verificationNumber"`
	Items              []LineItemView      `json:"items"`
	CustomerInfo       domain.CustomerInfo `json:"customerInfo"`
	PaymentMethod      string              `json:"paymentMethod"`
	PaymentMethodName  string              `json:"paymentMethodName"`
	PromoCode          string              `json:"promoCode,omitempty"`
	Subtotal           domain.Money        `json:"subtotal"`
	DiscountPercent    int                 `json:"discountPercent"`
	DiscountAmount     domain.Money        `json:"discountAmount"`
	Total              domain.Money        `json:"total"`
	TotalDisplay       string              `json:"totalDisplay"`
	Status             string              `json:"status"`
	AdminApproved      bool                `json:"adminApproved"`
	ApprovalNumber     string              `json:"approvalNumber,omitempty"`
	CreatedAt          time.Time           `json:"createdAt"`
	UpdatedAt          time.Time           `json:"updatedAt"`
	EstimatedDelivery  time.Time           `json:"estimatedDelivery"`
}

type AdminOrderView struct {
	OrderView
	IssuedApprovalCode string `json:"issuedApprovalCode,omitempty"`
	ApprovedBy         string `json:"approvedBy,omitempty"`
	RejectedBy         string `json:"rejectedBy,omitempty"`
	RejectionReason    string `json:"rejectionReason,omitempty"`
	ContactLink        string `json:"contactLink,omitempty"`
}

func NewOrderView(o *domain.Order) OrderView {
	items := make([]LineItemView, len(o.Items))
	for i, item := range o.Items {
		items[i] = LineItemView{
			ProductID: item.ProductID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
			SellerID:  item.SellerID,
			LineTotal: item.LineTotal(),
		}
	}

	return OrderView{
		ID:                 o.ID,
		VerificationNumber: o.VerificationNumber,
		Items:              items,
		CustomerInfo:       o.CustomerInfo,
		PaymentMethod:      string(o.PaymentMethod),
		PaymentMethodName:  o.PaymentMethod.DisplayName(),
		PromoCode:          o.PromoCode,
		Subtotal:           o.Subtotal,
		DiscountPercent:    o.DiscountPercent,
		DiscountAmount:     o.DiscountAmount,
		Total:              o.Total,
		TotalDisplay:       o.Total.String(),
		Status:             string(o.Status),
		AdminApproved:      o.AdminApproved,
		ApprovalNumber:     o.ApprovalNumber,
		CreatedAt:          o.CreatedAt,
		UpdatedAt:          o.UpdatedAt,
		EstimatedDelivery:  o.EstimatedDelivery,
	}
}

func NewAdminOrderView(o *domain.Order, contactLink string) AdminOrderView {
	return AdminOrderView{
		OrderView:          NewOrderView(o),
		IssuedApprovalCode: o.IssuedApprovalCode,
		ApprovedBy:         o.ApprovedBy,
		RejectedBy:         o.RejectedBy,
		RejectionReason:    o.RejectionReason,
		ContactLink:        contactLink,
	}
}
