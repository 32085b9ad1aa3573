package models

import "time"

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RolePublic    UserRole = "public"
	RoleEducator  UserRole = "educator"
	RoleModerator UserRole = "moderator"
	RoleAdmin     UserRole = "admin"
)

// Privileged reports whether the role sees non-approved documents and
// reporter identities in the projection layer.
func (r UserRole) Privileged() bool {
	return r == RoleModerator || r == RoleAdmin
}

// User represents an application user stored in the users table.
type User struct {
	ID           int64     `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	FullName     string    `db:"full_name" json:"full_name"`
	Role         UserRole  `db:"role" json:"role"`
	Active       bool      `db:"active" json:"active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
