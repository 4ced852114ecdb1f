package controller

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"sobgamecoin/internal/auth"
	"sobgamecoin/internal/commons"
	"sobgamecoin/internal/domain"
	"sobgamecoin/internal/dto"
	apperrors "sobgamecoin/internal/errors"
)

type AdminUseCase interface {
	ListQueue(ctx context.Context, actor *domain.User, filter dto.OrderFilter) ([]domain.Order, error)
	Stats(ctx context.Context, actor *domain.User) (*dto.OrderStats, error)
	IssueApprovalCode(ctx context.Context, actor *domain.User, orderID, code string) (*dto.IssuedApprovalCode, error)
	Approve(ctx context.Context, actor *domain.User, orderID, code string) (*domain.Order, error)
	Reject(ctx context.Context, actor *domain.User, orderID, reason string) (*domain.Order, error)
	StartProcessing(ctx context.Context, actor *domain.User, orderID string) (*domain.Order, error)
	Deliver(ctx context.Context, actor *domain.User, orderID string) (*domain.Order, error)
	ContactLink(o *domain.Order) string
}

type AdminController struct {
	useCase AdminUseCase
	logger  *zap.Logger
}

func NewAdminController(useCase AdminUseCase, logger *zap.Logger) *AdminController {
	return &AdminController{
		useCase: useCase,
		logger:  logger,
	}
}

func (c *AdminController) ListOrders(w http.ResponseWriter, r *http.Request) {
	traceID := commons.NewTraceID()
	logger := c.logger.With(zap.String("traceId", traceID))

	orders, err := c.useCase.ListQueue(r.Context(), auth.UserFromContext(r.Context()), filterFromQuery(r))
	if err != nil {
		commons.HandleError(w, traceID, err, logger)
		return
	}

	views := make([]dto.AdminOrderView, len(orders))
	for i := range orders {
		views[i] = dto.NewAdminOrderView(&orders[i], c.useCase.ContactLink(&orders[i]))
	}

	commons.WriteJSON(w, http.StatusOK, dto.AdminOrderListResponse{
		TraceID: traceID,
		Orders:  views,
		Count:   len(views),
	}, logger)
}

func (c *AdminController) Stats(w http.ResponseWriter, r *http.Request) {
	traceID := commons.NewTraceID()
	logger := c.logger.With(zap.String("traceId", traceID))

	stats, err := c.useCase.Stats(r.Context(), auth.UserFromContext(r.Context()))
	if err != nil {
		commons.HandleError(w, traceID, err, logger)
		return
	}

	commons.WriteJSON(w, http.StatusOK, dto.StatsResponse{
		TraceID:    traceID,
		OrderStats: *stats,
	}, logger)
}

func (c *AdminController) IssueApprovalCode(w http.ResponseWriter, r *http.Request) {
	traceID := commons.NewTraceID()
	logger := c.logger.With(zap.String("traceId", traceID))

	orderID, ok := orderIDParam(w, r, logger)
	if !ok {
		return
	}

	var req dto.IssueApprovalCodeRequest
	if err := commons.DecodeJSON(r, &req); err != nil {
		commons.WriteInvalidBody(w, logger, err)
		return
	}

	issued, err := c.useCase.IssueApprovalCode(r.Context(), auth.UserFromContext(r.Context()), orderID, req.ApprovalCode)
	if err != nil {
		commons.HandleError(w, traceID, err, logger)
		return
	}

	commons.WriteJSON(w, http.StatusOK, dto.AdminOrderResponse{
		TraceID:      traceID,
		Order:        dto.NewAdminOrderView(issued.Order, c.useCase.ContactLink(issued.Order)),
		CustomerLink: issued.CustomerLink,
	}, logger)
}

func (c *AdminController) Approve(w http.ResponseWriter, r *http.Request) {
	traceID := commons.NewTraceID()
	logger := c.logger.With(zap.String("traceId", traceID))

	orderID, ok := orderIDParam(w, r, logger)
	if !ok {
		return
	}

	var req dto.ApproveOrderRequest
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

	order, err := c.useCase.Approve(r.Context(), auth.UserFromContext(r.Context()), orderID, req.ApprovalCode)
	c.writeTransition(w, traceID, order, err, logger)
}

func (c *AdminController) Reject(w http.ResponseWriter, r *http.Request) {
	traceID := commons.NewTraceID()
	logger := c.logger.With(zap.String("traceId", traceID))

	orderID, ok := orderIDParam(w, r, logger)
	if !ok {
		return
	}

	var req dto.RejectOrderRequest
	if err := commons.DecodeJSON(r, &req); err != nil {
		commons.WriteInvalidBody(w, logger, err)
		return
	}

	order, err := c.useCase.Reject(r.Context(), auth.UserFromContext(r.Context()), orderID, req.Reason)
	c.writeTransition(w, traceID, order, err, logger)
}

func (c *AdminController) StartProcessing(w http.ResponseWriter, r *http.Request) {
	traceID := commons.NewTraceID()
	logger := c.logger.With(zap.String("traceId", traceID))

	orderID, ok := orderIDParam(w, r, logger)
	if !ok {
		return
	}

	order, err := c.useCase.StartProcessing(r.Context(), auth.UserFromContext(r.Context()), orderID)
	c.writeTransition(w, traceID, order, err, logger)
}

func (c *AdminController) Deliver(w http.ResponseWriter, r *http.Request) {
	traceID := commons.NewTraceID()
	logger := c.logger.With(zap.String("traceId", traceID))

	orderID, ok := orderIDParam(w, r, logger)
	if !ok {
		return
	}

	order, err := c.useCase.Deliver(r.Context(), auth.UserFromContext(r.Context()), orderID)
	c.writeTransition(w, traceID, order, err, logger)
}

func (c *AdminController) writeTransition(w http.ResponseWriter, traceID string, order *domain.Order, err error, logger *zap.Logger) {
	if err != nil {
		commons.HandleError(w, traceID, err, logger)
		return
	}

	commons.WriteJSON(w, http.StatusOK, dto.AdminOrderResponse{
		TraceID: traceID,
		Order:   dto.NewAdminOrderView(order, c.useCase.ContactLink(order)),
	}, logger)
}
