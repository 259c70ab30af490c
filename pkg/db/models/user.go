package models

import (
	"time"

	"github.com/agrogas/agrogas-backend/pkg/enums"
)

// User is a marketplace account. Phone is the login identifier.
type User struct {
	ID           int64          `gorm:"column:id;primaryKey;autoIncrement"`
	Name         string         `gorm:"column:name;not null"`
	Role         enums.UserRole `gorm:"column:role;not null"`
	Phone        string         `gorm:"column:phone;not null;uniqueIndex"`
	Location     *string        `gorm:"column:location"`
	PasswordHash string         `gorm:"column:password_hash;not null"`
	LastLoginAt  *time.Time     `gorm:"column:last_login_at"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
