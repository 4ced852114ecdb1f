package dto

import "time"

type OrderResponse struct {
	TraceID      string    `json:"traceId"`
	Order        OrderView `json:"order"`
	OperatorLink string    `json:"operatorLink,omitempty"`
}

type OrderListResponse struct {
	TraceID string      `json:"traceId"`
	Orders  []OrderView `json:"orders"`
	Count   int         `json:"count"`
}

type AdminOrderResponse struct {
	TraceID      string         `json:"traceId"`
	Order        AdminOrderView `json:"order"`
	CustomerLink string         `json:"customerLink,omitempty"`
}

type AdminOrderListResponse struct {
	TraceID string           `json:"traceId"`
	Orders  []AdminOrderView `json:"orders"`
	Count   int              `json:"count"`
}

type StatsResponse struct {
	TraceID string `json:"traceId"`
	OrderStats
}

type TrackingResponse struct {
	TraceID string `json:"traceId"`
	Tracking
}

type ErrorResponse struct {
	TraceID   string    `json:"traceId"`
	Status    int       `json:"status"`
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}
