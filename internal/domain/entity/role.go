package entity

// Role is a member's permission level within an organization.
type Role string

const (
	RoleViewer  Role = "VIEWER"
	RoleMember  Role = "MEMBER"
	RoleFinance Role = "FINANCE"
	RoleManager Role = "MANAGER"
	RoleAdmin   Role = "ADMIN"
)

// roleRanks makes the hierarchy explicit rather than relying on
// declaration order. Unknown roles rank below VIEWER.
var roleRanks = map[Role]int{
	RoleViewer:  1,
	RoleMember:  2,
	RoleFinance: 3,
	RoleManager: 4,
	RoleAdmin:   5,
}

// Rank returns the role's position in the hierarchy, 0 for unknown roles.
func (r Role) Rank() int {
	return roleRanks[r]
}

// AtLeast reports whether r sits at or above the required role.
func (r Role) AtLeast(required Role) bool {
	return r.Rank() >= required.Rank() && r.Rank() > 0
}

// IsValid reports whether the role is one of the defined levels.
func (r Role) IsValid() bool {
	_, ok := roleRanks[r]
	return ok
}

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// Actor identifies the authenticated user performing an operation,
// as supplied by the identity collaborator.
type Actor struct {
	UserID         int64
	OrganizationID int64
	Role           Role
}
