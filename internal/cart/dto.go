package cart

type AddItemRequest struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	// UnitPrice is in poisha.
	UnitPrice int64  `json:"unitPrice"`
	Quantity  int    `json:"quantity"`
	SellerID  string `json:"sellerId"`
}

type ItemDTO struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unitPrice"`
	Quantity  int    `json:"quantity"`
	SellerID  string `json:"sellerId,omitempty"`
	LineTotal int64  `json:"lineTotal"`
}

type CartResponse struct {
	TraceID         string    `json:"traceId"`
	Items           []ItemDTO `json:"items"`
	ItemCount       int       `json:"itemCount"`
	Subtotal        int64     `json:"subtotal"`
	SubtotalDisplay string    `json:"subtotalDisplay"`
}
