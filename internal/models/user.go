package models

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	RoleAdmin UserRole = "ADMIN"
	RoleUser  UserRole = "USER"
)

// User is reference data for the task core: provisioned by cmd/seed and read
// by everything else.
type User struct {
	Email        string         `gorm:"type:varchar(255);primarykey" json:"email"`
	DisplayName  string         `gorm:"type:varchar(255);not null" json:"display_name"`
	Role         UserRole       `gorm:"type:varchar(20);not null;default:'USER'" json:"role"`
	PasswordHash string         `gorm:"type:varchar(255);not null" json:"-"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
