package model

import "time"

type User struct {
	ID           int64     `json:"id"`
	FullName     string    `json:"full_name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	SchoolNumber string    `json:"school_number"`
	Phone        string    `json:"phone,omitempty"`
	Role         string    `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

// Roles carried on User.Role.
const (
	RoleStudent = "Student"
	RoleStaff   = "Staff"
	RoleAdmin   = "Admin"
)
