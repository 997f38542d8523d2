// Package permissions maps a role to capability flags. All functions are
// pure and total: an empty or unknown role grants nothing, which also makes
// them safe to call before the session finishes loading.
package permissions

import "financehub/portal/internal/models"

func CanAccessSettings(role models.Role) bool {
	return role == models.RoleAdmin || role == models.RoleGerente
}

func CanAccessUserManagement(role models.Role) bool {
	return role == models.RoleAdmin || role == models.RoleGerente
}

// CanCreateEditDeleteUsers: only admin mutates users.
func CanCreateEditDeleteUsers(role models.Role) bool {
	return role == models.RoleAdmin
}

func CanViewUsers(role models.Role) bool {
	return role == models.RoleAdmin || role == models.RoleGerente
}
