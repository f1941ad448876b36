package models

import "time"

// Roles assigned at signup. Users who register without a valid role stay
// pending until an operator assigns one.
const (
	RoleHomeowner       = "homeowner"
	RolePropertyManager = "property_manager"
	RolePending         = "pending"
)

// User is an account row. PropertyID is set for homeowners, PortfolioID for
// property managers; the other stays nil.
type User struct {
	ID           int64     `db:"id" json:"user_id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         string    `db:"role" json:"role"`
	PropertyID   *int64    `db:"property_id" json:"property_id,omitempty"`
	PortfolioID  *int64    `db:"portfolio_id" json:"portfolio_id,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
