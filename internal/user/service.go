package user

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"sobgamecoin/internal/domain"
	apperrors "sobgamecoin/internal/errors"
	"sobgamecoin/internal/storage"
)

const (
	minPasswordLength = 6
	// bcrypt only accepts up to 72 bytes of input.
	maxPasswordLength = 72
	maxUpdateAttempts = 3
)

type userService struct {
	repo           Repository
	logger         *zap.Logger
	bootstrapEmail string
	bcryptCost     int
	now            func() time.Time
}

func NewService(repo Repository, logger *zap.Logger, bootstrapEmail string, bcryptCost int) Service {
	if bcryptCost < bcrypt.MinCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &userService{
		repo:           repo,
		logger:         logger,
		bootstrapEmail: strings.ToLower(strings.TrimSpace(bootstrapEmail)),
		bcryptCost:     bcryptCost,
		now:            time.Now,
	}
}

// Register creates a user. The configured bootstrap email becomes the first
// super admin; everybody else starts as a plain user.
func (s *userService) Register(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	name, email, details := validateProfile(req.Name, req.Email)
	if d, ok := validatePassword("password", req.Password); !ok {
		details = append(details, d)
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("validation failed", details...)
	}

	hash, err := s.hash(req.Password)
	if err != nil {
		return nil, err
	}

	role := domain.RoleUser
	if s.bootstrapEmail != "" && email == s.bootstrapEmail {
		role = domain.RoleSuperAdmin
	}

	now := s.now().UTC()
	u := &domain.User{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return nil, apperrors.NewConflictError("an account with this email already exists")
		}
		s.logger.Error("failed to create user", zap.Error(err))
		return nil, err
	}

	s.logger.Info("user registered", zap.String("userId", u.ID), zap.String("role", string(u.Role)))
	return u, nil
}

func (s *userService) Login(ctx context.Context, req LoginRequest) (*domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	invalid := apperrors.NewUnauthorizedError("invalid email or password")

	u, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if _, ok := apperrors.IsNotFoundError(err); ok {
			return nil, invalid
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Warn("login refused", zap.String("userId", u.ID))
		return nil, invalid
	}

	return s.update(ctx, u.ID, func(u *domain.User, now time.Time) error {
		u.LastLogin = &now
		return nil
	})
}

func (s *userService) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return s.repo.FindByID(ctx, id)
}

// UpdateProfile changes the caller's name and email. A new email is claimed in
// the index before the record is saved and the old one is released after.
func (s *userService) UpdateProfile(ctx context.Context, actor *domain.User, req UpdateProfileRequest) (*domain.User, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorizedError("authentication required")
	}
	name, email, details := validateProfile(req.Name, req.Email)
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("validation failed", details...)
	}

	current, err := s.repo.FindByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	oldEmail := current.Email
	emailChanged := email != oldEmail

	if emailChanged {
		if err := s.repo.ClaimEmail(ctx, email, actor.ID); err != nil {
			if errors.Is(err, ErrEmailTaken) {
				return nil, apperrors.NewConflictError("an account with this email already exists")
			}
			return nil, err
		}
	}

	u, err := s.update(ctx, actor.ID, func(u *domain.User, now time.Time) error {
		if u.Email != oldEmail {
			return apperrors.NewConflictError("email was changed concurrently, try again")
		}
		u.Name = name
		u.Email = email
		u.UpdatedAt = now
		return nil
	})
	if err != nil {
		if emailChanged {
			if relErr := s.repo.ReleaseEmail(ctx, email); relErr != nil {
				s.logger.Error("failed to release claimed email", zap.String("userId", actor.ID), zap.Error(relErr))
			}
		}
		return nil, err
	}

	if emailChanged {
		if err := s.repo.ReleaseEmail(ctx, oldEmail); err != nil {
			s.logger.Error("failed to release previous email", zap.String("userId", actor.ID), zap.Error(err))
		}
	}

	s.logger.Info("profile updated", zap.String("userId", u.ID), zap.Bool("emailChanged", emailChanged))
	return u, nil
}

func (s *userService) ChangePassword(ctx context.Context, actor *domain.User, req ChangePasswordRequest) error {
	if actor == nil {
		return apperrors.NewUnauthorizedError("authentication required")
	}
	if d, ok := validatePassword("newPassword", req.NewPassword); !ok {
		return apperrors.NewValidationError("validation failed", d)
	}
	hash, err := s.hash(req.NewPassword)
	if err != nil {
		return err
	}

	_, err = s.update(ctx, actor.ID, func(u *domain.User, now time.Time) error {
		if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.CurrentPassword)); err != nil {
			return apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
				Field:   "currentPassword",
				Message: "current password is incorrect",
			})
		}
		u.PasswordHash = hash
		u.UpdatedAt = now
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("password changed", zap.String("userId", actor.ID))
	return nil
}

func (s *userService) List(ctx context.Context, actor *domain.User, filter ListFilter) ([]domain.User, error) {
	if err := authorize(actor); err != nil {
		return nil, err
	}
	if filter.Role != "" && filter.Role != "all" {
		if _, err := domain.ParseRole(filter.Role); err != nil {
			return nil, invalidRole("role")
		}
	}

	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	out := make([]domain.User, 0, len(users))
	for _, u := range users {
		if filter.Role != "" && filter.Role != "all" && string(u.Role) != filter.Role {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(u.Name), search) &&
			!strings.Contains(strings.ToLower(u.Email), search) {
			continue
		}
		out = append(out, u)
	}
	return out, nil
}

// ChangeRole is limited to super admins, who cannot change their own role.
func (s *userService) ChangeRole(ctx context.Context, actor *domain.User, userID, role string) (*domain.User, error) {
	if err := authorize(actor); err != nil {
		return nil, err
	}
	newRole, err := domain.ParseRole(strings.TrimSpace(role))
	if err != nil {
		return nil, invalidRole("role")
	}
	if actor.ID == userID {
		return nil, apperrors.NewForbiddenError("you cannot change your own role")
	}

	u, err := s.update(ctx, userID, func(u *domain.User, now time.Time) error {
		u.Role = newRole
		u.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("user role changed", zap.String("userId", userID), zap.String("role", string(newRole)), zap.String("actorId", actor.ID))
	return u, nil
}

func (s *userService) Delete(ctx context.Context, actor *domain.User, userID string) error {
	if err := authorize(actor); err != nil {
		return err
	}
	if actor.ID == userID {
		return apperrors.NewForbiddenError("you cannot delete your own account")
	}

	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, u); err != nil {
		s.logger.Error("failed to delete user", zap.String("userId", userID), zap.Error(err))
		return err
	}

	s.logger.Info("user deleted", zap.String("userId", userID), zap.String("actorId", actor.ID))
	return nil
}

// update re-reads the user on a version conflict and applies mutate again.
func (s *userService) update(ctx context.Context, userID string, mutate func(u *domain.User, now time.Time) error) (*domain.User, error) {
	for attempt := 1; attempt <= maxUpdateAttempts; attempt++ {
		u, err := s.repo.FindByID(ctx, userID)
		if err != nil {
			return nil, err
		}
		if err := mutate(u, s.now().UTC()); err != nil {
			return nil, err
		}

		err = s.repo.Update(ctx, u)
		if err == nil {
			return u, nil
		}
		if !errors.Is(err, storage.ErrVersionConflict) {
			return nil, err
		}
		s.logger.Warn("concurrent user update, re-reading", zap.String("userId", userID), zap.Int("attempt", attempt))
	}
	return nil, apperrors.NewConflictError(fmt.Sprintf("user %s is being modified concurrently, try again", userID))
}

func (s *userService) hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", apperrors.NewInternalError("hashing password", err)
	}
	return string(hash), nil
}

func validateProfile(rawName, rawEmail string) (string, string, []apperrors.ValidationDetail) {
	name := strings.TrimSpace(rawName)
	email := strings.ToLower(strings.TrimSpace(rawEmail))

	var details []apperrors.ValidationDetail
	if name == "" {
		details = append(details, apperrors.ValidationDetail{Field: "name", Message: "name is required"})
	}
	if email == "" {
		details = append(details, apperrors.ValidationDetail{Field: "email", Message: "email is required"})
	} else if _, err := mail.ParseAddress(email); err != nil {
		details = append(details, apperrors.ValidationDetail{Field: "email", Message: "email is not a valid address"})
	}
	return name, email, details
}

func validatePassword(field, password string) (apperrors.ValidationDetail, bool) {
	switch {
	case len(password) < minPasswordLength:
		return apperrors.ValidationDetail{
			Field:   field,
			Message: fmt.Sprintf("password must be at least %d characters", minPasswordLength),
		}, false
	case len(password) > maxPasswordLength:
		return apperrors.ValidationDetail{
			Field:   field,
			Message: fmt.Sprintf("password must be at most %d bytes", maxPasswordLength),
		}, false
	}
	return apperrors.ValidationDetail{}, true
}

func authorize(actor *domain.User) error {
	if actor == nil {
		return apperrors.NewUnauthorizedError("authentication required")
	}
	if !actor.CanManageUsers() {
		return apperrors.NewForbiddenError("super admin role required")
	}
	return nil
}

func invalidRole(field string) error {
	return apperrors.NewValidationError("invalid role", apperrors.ValidationDetail{
		Field:   field,
		Message: "role must be one of user, admin, super_admin",
	})
}
