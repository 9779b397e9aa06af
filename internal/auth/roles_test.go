package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		in   string
		want Role
		ok   bool
	}{
		{"ADMIN", RoleAdmin, true},
		{"trainer", RoleTrainer, true},
		{"ROLE_STAFF", RoleStaff, true},
		{" member ", RoleMember, true},
		{"owner", Role("OWNER"), false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseRole(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveRole(t *testing.T) {
	tests := []struct {
		name      string
		requested []string
		want      Role
	}{
		{"empty defaults to member", nil, RoleMember},
		{"unknown only defaults to member", []string{"owner"}, RoleMember},
		{"single", []string{"staff"}, RoleStaff},
		{"admin beats trainer", []string{"trainer", "admin"}, RoleAdmin},
		{"trainer beats staff", []string{"staff", "mod", "trainer"}, RoleTrainer},
		{"staff beats member", []string{"member", "staff"}, RoleStaff},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveRole(tt.requested))
		})
	}
}

func TestResolveRole_OrderIndependent(t *testing.T) {
	names := []string{"admin", "trainer", "staff", "member", "owner", "ROLE_ADMIN"}

	rapid.Check(t, func(t *rapid.T) {
		requested := rapid.SliceOf(rapid.SampledFrom(names)).Draw(t, "requested")
		reversed := make([]string, len(requested))
		for i, name := range requested {
			reversed[len(requested)-1-i] = name
		}

		if ResolveRole(requested) != ResolveRole(reversed) {
			t.Fatalf("resolution depends on order: %v", requested)
		}
	})
}

func TestAllow(t *testing.T) {
	member := Caller{ID: 5, Role: RoleMember}
	staff := Caller{ID: 9, Role: RoleStaff}

	tests := []struct {
		name    string
		caller  Caller
		ownerID int
		roles   []Role
		want    bool
	}{
		{"role in allow-list", staff, 5, StaffRoles, true},
		{"self access", member, 5, StaffRoles, true},
		{"other member denied", member, 6, StaffRoles, false},
		{"no owner and no role", member, 0, StaffRoles, false},
		{"anonymous denied", Caller{}, 0, []Role{RoleMember}, false},
		{"unknown role denied even as owner", Caller{ID: 5, Role: "OWNER"}, 5, nil, false},
		{"empty allow-list still allows owner", member, 5, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Allow(tt.caller, tt.ownerID, tt.roles...))
		})
	}
}
