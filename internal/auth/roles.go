package auth

import "strings"

type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleTrainer Role = "TRAINER"
	RoleStaff   Role = "STAFF"
	RoleMember  Role = "MEMBER"
)

// rolePriority orders roles from most to least privileged.
var rolePriority = []Role{RoleAdmin, RoleTrainer, RoleStaff, RoleMember}

// Staff-side roles that may act on any member's records.
var StaffRoles = []Role{RoleAdmin, RoleStaff, RoleTrainer}

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleTrainer, RoleStaff, RoleMember:
		return true
	}
	return false
}

// ParseRole accepts "admin", "ROLE_ADMIN" and "ADMIN" alike.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(s)), "ROLE_"))
	return r, r.Valid()
}

// ResolveRole picks the single role for a signup that requested several.
// Unknown names are ignored; the highest-priority known role wins, and an
// empty or fully unknown request yields MEMBER.
func ResolveRole(requested []string) Role {
	seen := make(map[Role]bool, len(requested))
	for _, name := range requested {
		if r, ok := ParseRole(name); ok {
			seen[r] = true
		}
	}

	for _, r := range rolePriority {
		if seen[r] {
			return r
		}
	}
	return RoleMember
}

// Caller is the authenticated identity a request acts as.
type Caller struct {
	ID   int
	Role Role
}

func (c Caller) HasRole(roles ...Role) bool {
	for _, r := range roles {
		if c.Role == r {
			return true
		}
	}
	return false
}

// Allow reports whether caller may act on a resource owned by ownerID. Access is
// granted when the caller's role is in roles, or when the caller owns the
// resource. ownerID <= 0 means the resource has no owner to match against.
func Allow(caller Caller, ownerID int, roles ...Role) bool {
	if caller.ID <= 0 || !caller.Role.Valid() {
		return false
	}
	if caller.HasRole(roles...) {
		return true
	}
	return ownerID > 0 && caller.ID == ownerID
}
