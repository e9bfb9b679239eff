package model

import "time"

type UserRole string

const (
	UserRoleFaculty UserRole = "faculty"
	UserRoleStudent UserRole = "student"
)

type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusInactive UserStatus = "inactive"
)

type User struct {
	ID         int64      `json:"id"`
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	Department string     `json:"department"`
	Role       UserRole   `json:"role"`
	Status     UserStatus `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}
