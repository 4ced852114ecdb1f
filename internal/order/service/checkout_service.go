package service

import (
	"context"
	stderrors "errors"
	"net/mail"
	"strings"
	"time"

	"sobgamecoin/internal/domain"
	"sobgamecoin/internal/dto"
	"sobgamecoin/internal/errors"
	"sobgamecoin/internal/order/repository"
	"sobgamecoin/internal/promo"

	"go.uber.org/zap"
)

const maxOrderIDAttempts = 5

type OrderWriter interface {
	Create(ctx context.Context, order *domain.Order) error
}

type CartRepository interface {
	Find(ctx context.Context, ownerID string) (*domain.Cart, error)
	Clear(ctx context.Context, ownerID string) error
}

type PromoTable interface {
	Quote(subtotal domain.Money, code string, current domain.Pricing) (domain.Pricing, error)
}

type CheckoutService struct {
	orders         OrderWriter
	carts          CartRepository
	promos         PromoTable
	logger         *zap.Logger
	idPrefix       string
	deliveryWindow time.Duration
	now            func() time.Time
}

func NewCheckoutService(
	orders OrderWriter,
	carts CartRepository,
	promos PromoTable,
	logger *zap.Logger,
	idPrefix string,
	deliveryWindow time.Duration,
) *CheckoutService {
	return &CheckoutService{
		orders:         orders,
		carts:          carts,
		promos:         promos,
		logger:         logger,
		idPrefix:       idPrefix,
		deliveryWindow: deliveryWindow,
		now:            time.Now,
	}
}

// PlaceOrder turns the owner's cart into a pending order. Nothing is written
// unless every field is valid, and the cart is only cleared after the order
// write succeeded.
func (s *CheckoutService) PlaceOrder(ctx context.Context, in dto.PlaceOrderInput) (*domain.Order, error) {
	cart, err := s.carts.Find(ctx, in.OwnerID)
	if err != nil {
		s.logger.Error("failed to load cart", zap.String("ownerId", in.OwnerID), zap.Error(err))
		return nil, err
	}

	info := normalizeCustomerInfo(in.CustomerInfo)
	details := validateCustomerInfo(info)

	method, err := domain.ParsePaymentMethod(strings.ToLower(strings.TrimSpace(in.PaymentMethod)))
	if err != nil {
		details = append(details, errors.ValidationDetail{
			Field:   "paymentMethod",
			Message: "paymentMethod must be one of bkash, nagad, rocket, bank",
		})
	} else if method.RequiresTransactionID() && info.TransactionID == "" {
		details = append(details, errors.ValidationDetail{
			Field:   "customerInfo.transactionId",
			Message: "transactionId is required for " + method.DisplayName() + " payments",
		})
	}

	if len(cart.Items) == 0 {
		details = append(details, errors.ValidationDetail{
			Field:   "items",
			Message: "cart is empty",
		})
	}

	subtotal, err := domain.CheckedSubtotal(cart.Items)
	if err != nil {
		details = append(details, errors.ValidationDetail{
			Field:   "items",
			Message: "cart total is out of range",
		})
	}
	pricing, err := s.promos.Quote(subtotal, in.PromoCode, domain.NewPricing(subtotal, 0))
	if stderrors.Is(err, promo.ErrUnknownPromoCode) {
		details = append(details, errors.ValidationDetail{
			Field:   "promoCode",
			Message: "promo code " + promo.Normalize(in.PromoCode) + " is not valid",
		})
	} else if err != nil {
		return nil, err
	}

	if len(details) > 0 {
		s.logger.Warn("checkout rejected", zap.String("ownerId", in.OwnerID), zap.Int("violations", len(details)))
		return nil, errors.NewValidationError("validation failed", details...)
	}

	verification, err := domain.NewCode()
	if err != nil {
		return nil, errors.NewInternalError("generating verification number", err)
	}

	now := s.now().UTC()
	order := &domain.Order{
		VerificationNumber: verification,
		CustomerID:         in.CustomerID,
		Items:              cart.Snapshot(),
		CustomerInfo:       info,
		PaymentMethod:      method,
		Pricing:            pricing,
		Status:             domain.OrderStatusPendingVerification,
		CreatedAt:          now,
		UpdatedAt:          now,
		EstimatedDelivery:  now.Add(s.deliveryWindow),
	}
	if pricing.DiscountPercent > 0 {
		order.PromoCode = promo.Normalize(in.PromoCode)
	}

	if err := s.create(ctx, order); err != nil {
		return nil, err
	}

	s.logger.Info("order placed",
		zap.String("orderId", order.ID),
		zap.String("ownerId", in.OwnerID),
		zap.Int64("total", int64(order.Total)),
		zap.Int("itemCount", len(order.Items)),
	)

	if err := s.carts.Clear(ctx, in.OwnerID); err != nil {
		s.logger.Error("failed to clear cart after checkout", zap.String("orderId", order.ID), zap.String("ownerId", in.OwnerID), zap.Error(err))
	}

	return order, nil
}

func (s *CheckoutService) create(ctx context.Context, order *domain.Order) error {
	for attempt := 1; attempt <= maxOrderIDAttempts; attempt++ {
		id, err := domain.NewOrderID(s.idPrefix, order.CreatedAt)
		if err != nil {
			return errors.NewInternalError("generating order id", err)
		}
		order.ID = id

		err = s.orders.Create(ctx, order)
		if err == nil {
			return nil
		}
		if stderrors.Is(err, repository.ErrDuplicateOrderID) {
			s.logger.Warn("order id collision, regenerating", zap.String("orderId", id), zap.Int("attempt", attempt))
			continue
		}

		s.logger.Error("failed to persist order", zap.String("orderId", id), zap.Error(err))
		return err
	}

	return errors.NewConflictError("could not allocate a unique order id")
}

func normalizeCustomerInfo(info domain.CustomerInfo) domain.CustomerInfo {
	return domain.CustomerInfo{
		Name:          strings.TrimSpace(info.Name),
		Email:         strings.ToLower(strings.TrimSpace(info.Email)),
		Phone:         strings.TrimSpace(info.Phone),
		GameID:        strings.TrimSpace(info.GameID),
		TransactionID: strings.TrimSpace(info.TransactionID),
	}
}

func validateCustomerInfo(info domain.CustomerInfo) []errors.ValidationDetail {
	var details []errors.ValidationDetail

	if info.Name == "" {
		details = append(details, errors.ValidationDetail{Field: "customerInfo.name", Message: "name is required"})
	}

	if info.Email == "" {
		details = append(details, errors.ValidationDetail{Field: "customerInfo.email", Message: "email is required"})
	} else if _, err := mail.ParseAddress(info.Email); err != nil {
		details = append(details, errors.ValidationDetail{Field: "customerInfo.email", Message: "email is not a valid address"})
	}

	if info.Phone == "" {
		details = append(details, errors.ValidationDetail{Field: "customerInfo.phone", Message: "phone is required"})
	}

	return details
}
