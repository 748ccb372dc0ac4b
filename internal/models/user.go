package models

import (
	"time"
)

// User is an account row. The password is only ever stored hashed.
type User struct {
	CreatedAt      time.Time `json:"created_at"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"-"`
	PhoneNumber    *string   `json:"phone_number,omitempty"`
	UserID         int64     `json:"user_id"`
}

// UserProfile holds per-user profile data, related 1:1 to a User.
type UserProfile struct {
	FirstName     *string `json:"first_name,omitempty"`
	LastName      *string `json:"last_name,omitempty"`
	ID            int64   `json:"id"`
	UserID        int64   `json:"user_id"`
	EmailVerified bool    `json:"email_verified"`
	Active        bool    `json:"active"`
	PhoneVerified bool    `json:"phone_verified"`
}

// UserRoleLink assigns a role to a user. The pair is the primary key.
type UserRoleLink struct {
	UserID int64 `json:"user_id"`
	RoleID int   `json:"role_id"`
}

// UserExportRow is one denormalized row of the users+profiles export join.
// Profile fields are nil/false when the user has no profile row.
type UserExportRow struct {
	CreatedAt     *time.Time
	PhoneNumber   *string
	FirstName     *string
	LastName      *string
	Active        *bool
	Email         string
	UserID        int64
	EmailVerified bool
	PhoneVerified bool
}
