package permissions

import (
	"testing"

	"financehub/portal/internal/models"
)

func TestCapabilityMatrix(t *testing.T) {
	cases := []struct {
		role       models.Role
		settings   bool
		management bool
		mutate     bool
		view       bool
	}{
		{models.RoleAdmin, true, true, true, true},
		{models.RoleGerente, true, true, false, true},
		{models.RoleUsuario, false, false, false, false},
		{models.RoleCliente, false, false, false, false},
		{models.Role(""), false, false, false, false},
		{models.Role("superadmin"), false, false, false, false},
	}

	for _, tc := range cases {
		if got := CanAccessSettings(tc.role); got != tc.settings {
			t.Errorf("CanAccessSettings(%q) = %v, want %v", tc.role, got, tc.settings)
		}
		if got := CanAccessUserManagement(tc.role); got != tc.management {
			t.Errorf("CanAccessUserManagement(%q) = %v, want %v", tc.role, got, tc.management)
		}
		if got := CanCreateEditDeleteUsers(tc.role); got != tc.mutate {
			t.Errorf("CanCreateEditDeleteUsers(%q) = %v, want %v", tc.role, got, tc.mutate)
		}
		if got := CanViewUsers(tc.role); got != tc.view {
			t.Errorf("CanViewUsers(%q) = %v, want %v", tc.role, got, tc.view)
		}
	}
}

func TestOnlyAdminMutatesUsers(t *testing.T) {
	for _, role := range []models.Role{models.RoleGerente, models.RoleUsuario, models.RoleCliente, ""} {
		if CanCreateEditDeleteUsers(role) {
			t.Errorf("role %q must not mutate users", role)
		}
	}
	if !CanCreateEditDeleteUsers(models.RoleAdmin) {
		t.Error("admin must mutate users")
	}
}
