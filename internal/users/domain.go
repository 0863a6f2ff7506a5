package users

import "time"

// User is an operator account for the dashboard.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	PasswordHash string    `json:"-"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserWithRoles carries a user plus its assigned role names.
type UserWithRoles struct {
	User
	Roles []string `json:"roles"`
}
