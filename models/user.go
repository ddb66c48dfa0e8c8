package models

type UserRole string

const (
	RoleAdmin UserRole = "admin"
)

// AuthUser is derived from a verified session token and never persisted.
type AuthUser struct {
	Username string   `json:"username"`
	Role     UserRole `json:"role"`
}
