package promo

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"sobgamecoin/internal/auth"
	"sobgamecoin/internal/commons"
	"sobgamecoin/internal/domain"
)

// CartReader is the slice of the cart repository the quote preview needs.
type CartReader interface {
	Find(ctx context.Context, ownerID string) (*domain.Cart, error)
}

type QuoteRequest struct {
	PromoCode string `json:"promoCode"`
	// CurrentPromoCode is the code already applied on the client. Its pricing
	// is returned unchanged when PromoCode is rejected.
	CurrentPromoCode string `json:"currentPromoCode,omitempty"`
}

type QuoteResponse struct {
	TraceID   string         `json:"traceId"`
	Valid     bool           `json:"valid"`
	PromoCode string         `json:"promoCode,omitempty"`
	Message   string         `json:"message,omitempty"`
	Pricing   domain.Pricing `json:"pricing"`
	Total     string         `json:"totalFormatted"`
}

type Controller struct {
	table  *Table
	carts  CartReader
	logger *zap.Logger
}

func NewController(table *Table, carts CartReader, logger *zap.Logger) *Controller {
	return &Controller{
		table:  table,
		carts:  carts,
		logger: logger,
	}
}

// HandleQuote previews the discount a code would give on the caller's cart.
// It never writes.
func (c *Controller) HandleQuote(w http.ResponseWriter, r *http.Request) {
	traceID := commons.NewTraceID()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req QuoteRequest
	if err := commons.DecodeJSON(r, &req); err != nil {
		commons.WriteInvalidBody(w, logger, err)
		return
	}

	var subtotal domain.Money
	if owner := auth.CartOwner(r); owner != "" {
		cart, err := c.carts.Find(r.Context(), owner)
		if err != nil {
			commons.HandleError(w, traceID, err, logger)
			return
		}
		subtotal = cart.Subtotal()
	}

	current := domain.NewPricing(subtotal, 0)
	if pct, err := c.table.Lookup(req.CurrentPromoCode); err == nil {
		current = domain.NewPricing(subtotal, pct)
	}

	pricing, err := c.table.Quote(subtotal, req.PromoCode, current)
	resp := QuoteResponse{
		TraceID: traceID,
		Valid:   err == nil,
		Pricing: pricing,
		Total:   pricing.Total.String(),
	}
	switch {
	case errors.Is(err, ErrUnknownPromoCode):
		logger.Info("promo code rejected", zap.String("promoCode", Normalize(req.PromoCode)))
		resp.Message = "invalid promo code"
	case err != nil:
		commons.HandleError(w, traceID, err, logger)
		return
	default:
		resp.PromoCode = Normalize(req.PromoCode)
	}

	commons.WriteJSON(w, http.StatusOK, resp, logger)
}
