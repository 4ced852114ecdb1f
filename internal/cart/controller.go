package cart

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"sobgamecoin/internal/auth"
	"sobgamecoin/internal/commons"
	"sobgamecoin/internal/domain"
	apperrors "sobgamecoin/internal/errors"
)

type Controller struct {
	service Service
	logger  *zap.Logger
}

func NewController(service Service, logger *zap.Logger) *Controller {
	return &Controller{
		service: service,
		logger:  logger,
	}
}

func (c *Controller) HandleGet(w http.ResponseWriter, r *http.Request) {
	traceID := commons.NewTraceID()
	logger := c.logger.With(zap.String("traceId", traceID))

	owner, ok := c.owner(w, r, logger)
	if !ok {
		return
	}

	cart, err := c.service.Get(r.Context(), owner)
	if err != nil {
		commons.HandleError(w, traceID, err, logger)
		return
	}

	commons.WriteJSON(w, http.StatusOK, toResponse(traceID, cart), logger)
}

func (c *Controller) HandleAddItem(w http.ResponseWriter, r *http.Request) {
	traceID := commons.NewTraceID()
	logger := c.logger.With(zap.String("traceId", traceID))

	owner, ok := c.owner(w, r, logger)
	if !ok {
		return
	}

	var req AddItemRequest
	if err := commons.DecodeJSON(r, &req); err != nil {
		commons.WriteInvalidBody(w, logger, err)
		return
	}

	cart, err := c.service.AddItem(r.Context(), owner, domain.LineItem{
		ProductID: req.ProductID,
		Name:      req.Name,
		UnitPrice: domain.Money(req.UnitPrice),
		Quantity:  req.Quantity,
		SellerID:  req.SellerID,
	})
	if err != nil {
		commons.HandleError(w, traceID, err, logger)
		return
	}

	commons.WriteJSON(w, http.StatusOK, toResponse(traceID, cart), logger)
}

func (c *Controller) HandleRemoveItem(w http.ResponseWriter, r *http.Request) {
	traceID := commons.NewTraceID()
	logger := c.logger.With(zap.String("traceId", traceID))

	owner, ok := c.owner(w, r, logger)
	if !ok {
		return
	}

	cart, err := c.service.RemoveItem(r.Context(), owner, chi.URLParam(r, "productId"))
	if err != nil {
		commons.HandleError(w, traceID, err, logger)
		return
	}

	commons.WriteJSON(w, http.StatusOK, toResponse(traceID, cart), logger)
}

func (c *Controller) HandleClear(w http.ResponseWriter, r *http.Request) {
	traceID := commons.NewTraceID()
	logger := c.logger.With(zap.String("traceId", traceID))

	owner, ok := c.owner(w, r, logger)
	if !ok {
		return
	}

	if err := c.service.Clear(r.Context(), owner); err != nil {
		commons.HandleError(w, traceID, err, logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (c *Controller) owner(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (string, bool) {
	owner := strings.TrimSpace(auth.CartOwner(r))
	if owner == "" {
		commons.WriteValidationError(w, "cart owner is required", logger, apperrors.ValidationDetail{
			Field:   auth.HeaderCartID,
			Message: "X-User-Id or X-Cart-Id header is required",
		})
		return "", false
	}
	return owner, true
}

func toResponse(traceID string, cart *domain.Cart) CartResponse {
	items := make([]ItemDTO, 0, len(cart.Items))
	count := 0
	for _, item := range cart.Items {
		items = append(items, ItemDTO{
			ProductID: item.ProductID,
			Name:      item.Name,
			UnitPrice: int64(item.UnitPrice),
			Quantity:  item.Quantity,
			SellerID:  item.SellerID,
			LineTotal: int64(item.LineTotal()),
		})
		count += item.Quantity
	}

	subtotal := cart.Subtotal()
	return CartResponse{
		TraceID:         traceID,
		Items:           items,
		ItemCount:       count,
		Subtotal:        int64(subtotal),
		SubtotalDisplay: subtotal.String(),
	}
}
