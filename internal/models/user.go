package models

import "time"

// Platform roles
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// Account statuses. New accounts start PENDING and must be activated
// before they can act; BLOCKED accounts are rejected at resolution time.
const (
	StatusPending = "PENDING"
	StatusActive  = "ACTIVE"
	StatusBlocked = "BLOCKED"
)

type User struct {
	ID         int64     `json:"id"`
	CognitoSub string    `json:"-"`
	Email      string    `json:"email"`
	FullName   *string   `json:"full_name,omitempty"`
	Role       string    `json:"role"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) IsActive() bool {
	return u.Status == StatusActive
}
