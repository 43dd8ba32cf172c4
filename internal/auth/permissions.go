package auth

import (
	"strings"
)

// Permission strings are "resource:action". A grant of "resource:*" covers every action
// on the resource and "*" covers everything.
const (
	PermNotesRead       = "notes:read"
	PermNotesWrite      = "notes:write"
	PermCategoriesWrite = "categories:write"
	PermCarouselsWrite  = "carousels:write"
	PermFeedbackRead    = "feedback:read"
	PermFeedbackWrite   = "feedback:write"
	PermAdminsManage    = "admins:manage"
	PermRolesManage     = "roles:manage"
	PermSystemRead      = "system:read"
	PermAll             = "*"
)

// Built-in role names.
const (
	RoleSuperAdmin = "super_admin"
	RoleEditor     = "editor"
	RoleViewer     = "viewer"
)

// HasPermission reports whether any grant covers required.
func HasPermission(grants []string, required string) bool {
	resource, _, _ := strings.Cut(required, ":")
	for _, g := range grants {
		g = strings.TrimSpace(g)
		switch {
		case g == PermAll, g == required:
			return true
		case strings.HasSuffix(g, ":*") && strings.TrimSuffix(g, ":*") == resource:
			return true
		}
	}
	return false
}

// NormalizeRoleName maps "Super Admin", "super-admin" and "SUPER_ADMIN" to "super_admin".
// Older rows were written with mixed spellings, so every comparison and write goes
// through this.
func NormalizeRoleName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.NewReplacer("-", "_", " ", "_").Replace(name)
	for strings.Contains(name, "__") {
		name = strings.ReplaceAll(name, "__", "_")
	}
	return strings.Trim(name, "_")
}

// DefaultRoles are created on first start.
func DefaultRoles() map[string][]string {
	return map[string][]string{
		RoleSuperAdmin: {PermAll},
		RoleEditor: {
			"notes:*", PermCategoriesWrite, PermCarouselsWrite, PermFeedbackRead, PermFeedbackWrite,
		},
		RoleViewer: {PermNotesRead, PermFeedbackRead},
	}
}
