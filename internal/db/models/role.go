// Package models defines the domain entities persisted by ToolVault: profiles,
// categories, tools, ratings, comments, and activity log entries, along with the
// closed enums (roles, tool status, audit actions) shared across the service.
package models

// Role is a team member's job function. The set is closed: every role carries
// differentiated visibility and moderation rights, and RoleOwner alone grants
// moderation (approve/reject tools, view the activity log).
type Role string

const (
	RoleOwner    Role = "owner"
	RoleBackend  Role = "backend"
	RoleFrontend Role = "frontend"
	RolePM       Role = "pm"
	RoleQA       Role = "qa"
	RoleDesigner Role = "designer"
)

// AllRoles returns every valid role.
func AllRoles() []Role {
	return []Role{RoleOwner, RoleBackend, RoleFrontend, RolePM, RoleQA, RoleDesigner}
}

// IsValid reports whether r is one of the defined roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleOwner, RoleBackend, RoleFrontend, RolePM, RoleQA, RoleDesigner:
		return true
	}
	return false
}

// RoleMeta holds display metadata for a role. Rendering concerns (icon, accent
// color) live in this lookup table rather than behind string switches so that a
// new role cannot be added without the compiler pointing at this file.
type RoleMeta struct {
	Label string `json:"label"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

// roleMeta is keyed by every member of the Role enum. AllRoles and this map are
// kept in sync; models_test.go asserts the two cover each other exactly.
var roleMeta = map[Role]RoleMeta{
	RoleOwner:    {Label: "Owner", Icon: "crown", Color: "#f59e0b"},
	RoleBackend:  {Label: "Backend", Icon: "server", Color: "#3b82f6"},
	RoleFrontend: {Label: "Frontend", Icon: "layout", Color: "#8b5cf6"},
	RolePM:       {Label: "Product", Icon: "clipboard", Color: "#10b981"},
	RoleQA:       {Label: "QA", Icon: "bug", Color: "#ef4444"},
	RoleDesigner: {Label: "Designer", Icon: "palette", Color: "#ec4899"},
}

// Meta returns display metadata for the role. Unknown roles fall back to a
// bare label so a stale row never breaks rendering.
func (r Role) Meta() RoleMeta {
	if m, ok := roleMeta[r]; ok {
		return m
	}
	return RoleMeta{Label: string(r)}
}
