// activity_log.go defines the append-only ActivityLog model and the closed
// vocabularies for audit actions and resource types.
package models

import "time"

// Action is an audit action name. The vocabulary is closed; repositories reject
// writes with an action outside this set so the log stays queryable by enum.
type Action string

const (
	ActionLogin          Action = "login"
	ActionLogout         Action = "logout"
	ActionCreateTool     Action = "create_tool"
	ActionUpdateTool     Action = "update_tool"
	ActionDeleteTool     Action = "delete_tool"
	ActionApproveTool    Action = "approve_tool"
	ActionRejectTool     Action = "reject_tool"
	ActionEnable2FA      Action = "enable_2fa"
	ActionDisable2FA     Action = "disable_2fa"
	ActionCreateCategory Action = "create_category"
	ActionUpdateCategory Action = "update_category"
	ActionDeleteCategory Action = "delete_category"
)

// IsValid reports whether a is a defined audit action.
func (a Action) IsValid() bool {
	switch a {
	case ActionLogin, ActionLogout,
		ActionCreateTool, ActionUpdateTool, ActionDeleteTool,
		ActionApproveTool, ActionRejectTool,
		ActionEnable2FA, ActionDisable2FA,
		ActionCreateCategory, ActionUpdateCategory, ActionDeleteCategory:
		return true
	}
	return false
}

// ResourceType identifies the kind of record an audit entry refers to.
type ResourceType string

const (
	ResourceAuth     ResourceType = "auth"
	ResourceTool     ResourceType = "ai_tool"
	ResourceCategory ResourceType = "category"
	ResourceProfile  ResourceType = "profile"
	ResourceSystem   ResourceType = "system"
)

// IsValid reports whether t is a defined resource type.
func (t ResourceType) IsValid() bool {
	switch t {
	case ResourceAuth, ResourceTool, ResourceCategory, ResourceProfile, ResourceSystem:
		return true
	}
	return false
}

// ActivityLog is one audit trail entry. Rows are append-only: nothing in this
// service mutates or deletes them. UserID is nil for system actions. Details
// carries free-form context (e.g. a durable snapshot of a deleted tool's name).
type ActivityLog struct {
	ID           string                 `json:"id"`
	UserID       *string                `json:"user_id,omitempty"`
	Action       Action                 `json:"action"`
	ResourceType ResourceType           `json:"resource_type"`
	ResourceID   *string                `json:"resource_id,omitempty"`
	Details      map[string]interface{} `json:"details,omitempty"`
	UserAgent    *string                `json:"user_agent,omitempty"`
	CreatedAt    time.Time              `json:"created_at"`
}
