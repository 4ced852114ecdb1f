package user

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"sobgamecoin/internal/auth"
	"sobgamecoin/internal/commons"
)

type Controller struct {
	service Service
	logger  *zap.Logger
	now     func() time.Time
}

func NewController(service Service, logger *zap.Logger) *Controller {
	return &Controller{
		service: service,
		logger:  logger,
		now:     time.Now,
	}
}

func (c *Controller) HandleRegister(w http.ResponseWriter, r *http.Request) {
	traceID := commons.NewTraceID()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req RegisterRequest
	if err := commons.DecodeJSON(r, &req); err != nil {
		commons.WriteInvalidBody(w, logger, err)
		return
	}

	u, err := c.service.Register(r.Context(), req)
	if err != nil {
		commons.HandleError(w, traceID, err, logger)
		return
	}

	commons.WriteJSON(w, http.StatusCreated, UserResponse{TraceID: traceID, User: toDTO(u)}, logger)
}

func (c *Controller) HandleLogin(w http.ResponseWriter, r *http.Request) {
	traceID := commons.NewTraceID()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req LoginRequest
	if err := commons.DecodeJSON(r, &req); err != nil {
		commons.WriteInvalidBody(w, logger, err)
		return
	}

	u, err := c.service.Login(r.Context(), req)
	if err != nil {
		commons.HandleError(w, traceID, err, logger)
		return
	}

	commons.WriteJSON(w, http.StatusOK, UserResponse{TraceID: traceID, User: toDTO(u)}, logger)
}

func (c *Controller) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	traceID := commons.NewTraceID()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req UpdateProfileRequest
	if err := commons.DecodeJSON(r, &req); err != nil {
		commons.WriteInvalidBody(w, logger, err)
		return
	}

	u, err := c.service.UpdateProfile(r.Context(), auth.UserFromContext(r.Context()), req)
	if err != nil {
		commons.HandleError(w, traceID, err, logger)
		return
	}

	commons.WriteJSON(w, http.StatusOK, UserResponse{TraceID: traceID, User: toDTO(u)}, logger)
}

func (c *Controller) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	traceID := commons.NewTraceID()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req ChangePasswordRequest
	if err := commons.DecodeJSON(r, &req); err != nil {
		commons.WriteInvalidBody(w, logger, err)
		return
	}

	if err := c.service.ChangePassword(r.Context(), auth.UserFromContext(r.Context()), req); err != nil {
		commons.HandleError(w, traceID, err, logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (c *Controller) HandleList(w http.ResponseWriter, r *http.Request) {
	traceID := commons.NewTraceID()
	logger := c.logger.With(zap.String("traceId", traceID))

	q := r.URL.Query()
	users, err := c.service.List(r.Context(), auth.UserFromContext(r.Context()), ListFilter{
		Search: strings.TrimSpace(q.Get("search")),
		Role:   strings.TrimSpace(q.Get("role")),
	})
	if err != nil {
		commons.HandleError(w, traceID, err, logger)
		return
	}

	dtos := make([]UserDTO, len(users))
	for i := range users {
		dtos[i] = toDTO(&users[i])
	}

	commons.WriteJSON(w, http.StatusOK, UserListResponse{
		TraceID: traceID,
		Users:   dtos,
		Count:   len(dtos),
		Stats:   computeStats(users, c.now()),
	}, logger)
}

func (c *Controller) HandleChangeRole(w http.ResponseWriter, r *http.Request) {
	traceID := commons.NewTraceID()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req ChangeRoleRequest
	if err := commons.DecodeJSON(r, &req); err != nil {
		commons.WriteInvalidBody(w, logger, err)
		return
	}

	u, err := c.service.ChangeRole(r.Context(), auth.UserFromContext(r.Context()), chi.URLParam(r, "userId"), req.Role)
	if err != nil {
		commons.HandleError(w, traceID, err, logger)
		return
	}

	commons.WriteJSON(w, http.StatusOK, UserResponse{TraceID: traceID, User: toDTO(u)}, logger)
}

func (c *Controller) HandleDelete(w http.ResponseWriter, r *http.Request) {
	traceID := commons.NewTraceID()
	logger := c.logger.With(zap.String("traceId", traceID))

	if err := c.service.Delete(r.Context(), auth.UserFromContext(r.Context()), chi.URLParam(r, "userId")); err != nil {
		commons.HandleError(w, traceID, err, logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
