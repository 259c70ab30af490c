package users

import (
	"time"

	"github.com/agrogas/agrogas-backend/pkg/db/models"
	"github.com/agrogas/agrogas-backend/pkg/enums"
)

// UserDTO is the transport shape that omits sensitive credentials.
type UserDTO struct {
	ID          int64          `json:"id"`
	Name        string         `json:"name"`
	Role        enums.UserRole `json:"role"`
	Phone       string         `json:"phone"`
	Location    *string        `json:"location"`
	LastLoginAt *time.Time     `json:"last_login_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// CreateUserDTO holds the data required by the repo to persist a new user.
type CreateUserDTO struct {
	Name         string
	Role         enums.UserRole
	Phone        string
	Location     *string
	PasswordHash string
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}
	return &UserDTO{
		ID:          u.ID,
		Name:        u.Name,
		Role:        u.Role,
		Phone:       u.Phone,
		Location:    u.Location,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
}

func (c CreateUserDTO) ToModel() *models.User {
	return &models.User{
		Name:         c.Name,
		Role:         c.Role,
		Phone:        c.Phone,
		Location:     c.Location,
		PasswordHash: c.PasswordHash,
	}
}
