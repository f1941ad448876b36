package models

// Role tags the user variant carried in JWT claims.
type Role string

const (
	RoleHomeowner       Role = "homeowner"
	RolePropertyManager Role = "property_manager"
	RolePending         Role = "pending"
)

// Principal is the authenticated caller resolved from a token. Exactly one
// of PropertyID/PortfolioID is meaningful depending on the role.
type Principal struct {
	UserID      int64
	Role        Role
	PropertyID  int64
	PortfolioID int64
}
