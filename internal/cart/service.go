package cart

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"sobgamecoin/internal/domain"
	apperrors "sobgamecoin/internal/errors"
)

const maxItemQuantity = 100

type cartService struct {
	repo   Repository
	logger *zap.Logger
	now    func() time.Time
}

func NewService(repo Repository, logger *zap.Logger) Service {
	return &cartService{repo: repo, logger: logger, now: time.Now}
}

func (s *cartService) Get(ctx context.Context, ownerID string) (*domain.Cart, error) {
	return s.repo.Find(ctx, ownerID)
}

func (s *cartService) AddItem(ctx context.Context, ownerID string, item domain.LineItem) (*domain.Cart, error) {
	item.ProductID = strings.TrimSpace(item.ProductID)
	item.Name = strings.TrimSpace(item.Name)
	if err := validateItem(item); err != nil {
		return nil, err
	}

	cart, err := s.repo.Find(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	cart.Put(item)
	for _, existing := range cart.Items {
		if existing.ProductID == item.ProductID && existing.Quantity > maxItemQuantity {
			return nil, apperrors.NewValidationError("quantity limit exceeded", apperrors.ValidationDetail{
				Field:   "quantity",
				Message: fmt.Sprintf("at most %d of a product per cart", maxItemQuantity),
			})
		}
	}
	cart.UpdatedAt = s.now().UTC()

	if err := s.repo.Save(ctx, cart); err != nil {
		s.logger.Error("failed to save cart", zap.String("ownerId", ownerID), zap.Error(err))
		return nil, err
	}

	s.logger.Debug("cart item added", zap.String("ownerId", ownerID), zap.String("productId", item.ProductID), zap.Int("quantity", item.Quantity))
	return cart, nil
}

func (s *cartService) RemoveItem(ctx context.Context, ownerID, productID string) (*domain.Cart, error) {
	cart, err := s.repo.Find(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	if !cart.Remove(productID) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("product %s is not in the cart", productID))
	}
	cart.UpdatedAt = s.now().UTC()

	if err := s.repo.Save(ctx, cart); err != nil {
		s.logger.Error("failed to save cart", zap.String("ownerId", ownerID), zap.Error(err))
		return nil, err
	}
	return cart, nil
}

func (s *cartService) Clear(ctx context.Context, ownerID string) error {
	return s.repo.Clear(ctx, ownerID)
}

func validateItem(item domain.LineItem) error {
	var details []apperrors.ValidationDetail

	if item.ProductID == "" {
		details = append(details, apperrors.ValidationDetail{Field: "productId", Message: "productId is required"})
	}
	if item.Name == "" {
		details = append(details, apperrors.ValidationDetail{Field: "name", Message: "name is required"})
	}
	if item.UnitPrice < 0 {
		details = append(details, apperrors.ValidationDetail{Field: "unitPrice", Message: "unitPrice must be non-negative"})
	} else if item.UnitPrice > domain.MaxUnitPrice {
		details = append(details, apperrors.ValidationDetail{
			Field:   "unitPrice",
			Message: fmt.Sprintf("unitPrice must not exceed %d", int64(domain.MaxUnitPrice)),
		})
	}
	if item.Quantity < 1 || item.Quantity > maxItemQuantity {
		details = append(details, apperrors.ValidationDetail{
			Field:   "quantity",
			Message: fmt.Sprintf("quantity must be between 1 and %d", maxItemQuantity),
		})
	}

	if len(details) > 0 {
		return apperrors.NewValidationError("validation failed", details...)
	}
	return nil
}
