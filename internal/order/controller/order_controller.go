package controller

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"sobgamecoin/internal/auth"
	"sobgamecoin/internal/commons"
	"sobgamecoin/internal/domain"
	"sobgamecoin/internal/dto"
	apperrors "sobgamecoin/internal/errors"
)

type OrderUseCase interface {
	PlaceOrder(ctx context.Context, in dto.PlaceOrderInput) (*dto.PlaceOrderResult, error)
	GetOrder(ctx context.Context, orderID string) (*domain.Order, error)
	OperatorLink(o *domain.Order) string
	Track(ctx context.Context, orderID string) (*dto.Tracking, error)
	VerifyCode(ctx context.Context, orderID, code string) (*domain.Order, error)
	ListCustomerOrders(ctx context.Context, customerID string, filter dto.OrderFilter) ([]domain.Order, error)
}

type OrderController struct {
	useCase OrderUseCase
	logger  *zap.Logger
}

func NewOrderController(useCase OrderUseCase, logger *zap.Logger) *OrderController {
	return &OrderController{
		useCase: useCase,
		logger:  logger,
	}
}

func (c *OrderController) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	traceID := commons.NewTraceID()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req dto.PlaceOrderRequest
	if err := commons.DecodeJSON(r, &req); err != nil {
		commons.WriteInvalidBody(w, logger, err)
		return
	}

	in := dto.PlaceOrderInput{
		OwnerID: auth.CartOwner(r),
		CustomerInfo: domain.CustomerInfo{
			Name:          req.CustomerInfo.Name,
			Email:         req.CustomerInfo.Email,
			Phone:         req.CustomerInfo.Phone,
			GameID:        req.CustomerInfo.GameID,
			TransactionID: req.CustomerInfo.TransactionID,
		},
		PaymentMethod: req.PaymentMethod,
		PromoCode:     req.PromoCode,
	}
	if user := auth.UserFromContext(r.Context()); user != nil {
		in.CustomerID = user.ID
	}

	result, err := c.useCase.PlaceOrder(r.Context(), in)
	if err != nil {
		commons.HandleError(w, traceID, err, logger)
		return
	}

	commons.WriteJSON(w, http.StatusCreated, dto.OrderResponse{
		TraceID:      traceID,
		Order:        dto.NewOrderView(result.Order),
		OperatorLink: result.OperatorLink,
	}, logger)
}

func (c *OrderController) GetOrder(w http.ResponseWriter, r *http.Request) {
	traceID := commons.NewTraceID()
	logger := c.logger.With(zap.String("traceId", traceID))

	orderID, ok := orderIDParam(w, r, logger)
	if !ok {
		return
	}

	order, err := c.useCase.GetOrder(r.Context(), orderID)
	if err != nil {
		commons.HandleError(w, traceID, err, logger)
		return
	}

	commons.WriteJSON(w, http.StatusOK, dto.OrderResponse{
		TraceID:      traceID,
		Order:        dto.NewOrderView(order),
		OperatorLink: c.useCase.OperatorLink(order),
	}, logger)
}

func (c *OrderController) Verify(w http.ResponseWriter, r *http.Request) {
	traceID := commons.NewTraceID()
	logger := c.logger.With(zap.String("traceId", traceID))

	orderID, ok := orderIDParam(w, r, logger)
	if !ok {
		return
	}

	var req dto.VerifyOrderRequest
	if err := commons.DecodeJSON(r, &req); err != nil {
		commons.WriteInvalidBody(w, logger, err)
		return
	}
	if strings.TrimSpace(req.ApprovalCode) == "" {
		commons.WriteValidationError(w, "approval code is required", logger, apperrors.ValidationDetail{
			Field:   "approvalCode",
			Message: "approvalCode must not be empty",
		})
		return
	}

	order, err := c.useCase.VerifyCode(r.Context(), orderID, req.ApprovalCode)
	if err != nil {
		commons.HandleError(w, traceID, err, logger)
		return
	}

	commons.WriteJSON(w, http.StatusOK, dto.OrderResponse{
		TraceID: traceID,
		Order:   dto.NewOrderView(order),
	}, logger)
}

func (c *OrderController) Track(w http.ResponseWriter, r *http.Request) {
	traceID := commons.NewTraceID()
	logger := c.logger.With(zap.String("traceId", traceID))

	orderID, ok := orderIDParam(w, r, logger)
	if !ok {
		return
	}

	tracking, err := c.useCase.Track(r.Context(), orderID)
	if err != nil {
		commons.HandleError(w, traceID, err, logger)
		return
	}

	commons.WriteJSON(w, http.StatusOK, dto.TrackingResponse{
		TraceID:  traceID,
		Tracking: *tracking,
	}, logger)
}

func (c *OrderController) MyOrders(w http.ResponseWriter, r *http.Request) {
	traceID := commons.NewTraceID()
	logger := c.logger.With(zap.String("traceId", traceID))

	var customerID string
	if user := auth.UserFromContext(r.Context()); user != nil {
		customerID = user.ID
	}

	orders, err := c.useCase.ListCustomerOrders(r.Context(), customerID, filterFromQuery(r))
	if err != nil {
		commons.HandleError(w, traceID, err, logger)
		return
	}

	views := make([]dto.OrderView, len(orders))
	for i := range orders {
		views[i] = dto.NewOrderView(&orders[i])
	}

	commons.WriteJSON(w, http.StatusOK, dto.OrderListResponse{
		TraceID: traceID,
		Orders:  views,
		Count:   len(views),
	}, logger)
}

func orderIDParam(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (string, bool) {
	orderID := strings.TrimSpace(chi.URLParam(r, "orderId"))
	if orderID == "" {
		logger.Warn("missing orderId in path")
		commons.WriteValidationError(w, "invalid orderId", logger, apperrors.ValidationDetail{
			Field:   "orderId",
			Message: "orderId is required",
		})
		return "", false
	}
	return strings.ToUpper(orderID), true
}

func filterFromQuery(r *http.Request) dto.OrderFilter {
	q := r.URL.Query()
	return dto.OrderFilter{
		Status: strings.TrimSpace(q.Get("status")),
		Search: strings.TrimSpace(q.Get("search")),
	}
}
