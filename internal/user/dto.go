package user

import (
	"time"

	"sobgamecoin/internal/domain"
)

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UpdateProfileRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type ChangeRoleRequest struct {
	Role string `json:"role"`
}

// ListFilter narrows the user listing. An empty Role or "all" matches every role.
type ListFilter struct {
	Search string
	Role   string
}

type UserDTO struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Role      string     `json:"role"`
	CreatedAt time.Time  `json:"createdAt"`
	LastLogin *time.Time `json:"lastLogin,omitempty"`
}

type UserResponse struct {
	TraceID string  `json:"traceId"`
	User    UserDTO `json:"user"`
}

type UserStats struct {
	Total        int `json:"total"`
	ActiveUsers  int `json:"activeUsers"`
	AdminUsers   int `json:"adminUsers"`
	RegularUsers int `json:"regularUsers"`
}

type UserListResponse struct {
	TraceID string    `json:"traceId"`
	Users   []UserDTO `json:"users"`
	Count   int       `json:"count"`
	Stats   UserStats `json:"stats"`
}

func toDTO(u *domain.User) UserDTO {
	return UserDTO{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
		LastLogin: u.LastLogin,
	}
}

const activeWindow = 7 * 24 * time.Hour

// computeStats counts users seen within the last week as active.
func computeStats(users []domain.User, now time.Time) UserStats {
	stats := UserStats{Total: len(users)}
	for _, u := range users {
		if u.LastLogin != nil && now.Sub(*u.LastLogin) < activeWindow {
			stats.ActiveUsers++
		}
		if u.CanManageOrders() {
			stats.AdminUsers++
		} else {
			stats.RegularUsers++
		}
	}
	return stats
}
