package models

const (
	RoleAdmin  = "Admin"
	RoleViewer = "Viewer"
)

// User is an operator account. Viewers never log in; the role exists so
// tokens can be scoped down later without a schema change.
type User struct {
	ID           int    `json:"user_id" db:"user_id"`
	Username     string `json:"username" db:"username"`
	PasswordHash string `json:"-" db:"password_hash"`
	Role         string `json:"role" db:"role"`
}
