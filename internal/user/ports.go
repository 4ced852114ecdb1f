package user

import (
	"context"

	"sobgamecoin/internal/domain"
)

type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*domain.User, error)
	Login(ctx context.Context, req LoginRequest) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	UpdateProfile(ctx context.Context, actor *domain.User, req UpdateProfileRequest) (*domain.User, error)
	ChangePassword(ctx context.Context, actor *domain.User, req ChangePasswordRequest) error
	List(ctx context.Context, actor *domain.User, filter ListFilter) ([]domain.User, error)
	ChangeRole(ctx context.Context, actor *domain.User, userID, role string) (*domain.User, error)
	Delete(ctx context.Context, actor *domain.User, userID string) error
}

type Repository interface {
	Create(ctx context.Context, u *domain.User) error
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, u *domain.User) error
	Delete(ctx context.Context, u *domain.User) error
	List(ctx context.Context) ([]domain.User, error)
	ClaimEmail(ctx context.Context, email, userID string) error
	ReleaseEmail(ctx context.Context, email string) error
}
