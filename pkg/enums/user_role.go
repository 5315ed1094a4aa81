package enums

// UserRole is the marketplace role attached to an identity.
type UserRole string

const (
	UserRoleCustomer UserRole = "customer"
	UserRoleSeller   UserRole = "seller"
	UserRoleAdmin    UserRole = "admin"
)

var userRoles = newValueSet("user role",
	UserRoleCustomer,
	UserRoleSeller,
	UserRoleAdmin,
)

func (v UserRole) IsValid() bool { return userRoles.has(v) }

func ParseUserRole(raw string) (UserRole, error) {
	return userRoles.parse(raw)
}
