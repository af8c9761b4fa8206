// Package policy implements the role/visibility predicates consulted before
// every read or write of a tool, comment, or activity log entry.
//
// All functions are pure: they take the actor and the resource, return a bool,
// and never touch the database. Denial is expressed as false, not an error —
// callers decide whether that means an empty result set or a 403. The SQL layer
// mirrors CanView in its list queries (see ToolRepository.ListVisibleTools) so
// these checks are never the sole enforcement boundary.
package policy

import "github.com/toolvault/toolvault/internal/db/models"

// CanView reports whether actor may see the tool. Approved tools are visible to
// everyone; pending and rejected tools only to their creator and to owners.
func CanView(tool *models.Tool, actor *models.Profile) bool {
	if tool == nil || actor == nil {
		return false
	}
	return tool.Status == models.ToolStatusApproved ||
		tool.CreatedBy == actor.ID ||
		actor.Role == models.RoleOwner
}

// CanEdit reports whether actor may modify the tool.
func CanEdit(tool *models.Tool, actor *models.Profile) bool {
	if tool == nil || actor == nil {
		return false
	}
	return tool.CreatedBy == actor.ID || actor.Role == models.RoleOwner
}

// CanDelete reports whether actor may remove the tool. Deletion rights track
// edit rights exactly.
func CanDelete(tool *models.Tool, actor *models.Profile) bool {
	return CanEdit(tool, actor)
}

// CanEditComment reports whether actor may edit or delete the comment. Owners
// may delete any comment as a moderation action; the edit handler additionally
// restricts editing to the author (owners moderate, they do not rewrite).
func CanEditComment(comment *models.ToolComment, actor *models.Profile) bool {
	if comment == nil || actor == nil {
		return false
	}
	return comment.UserID == actor.ID || actor.Role == models.RoleOwner
}

// CanModerate reports whether actor may approve/reject tools, view the
// activity log, and access the admin surface.
func CanModerate(actor *models.Profile) bool {
	return actor != nil && actor.Role == models.RoleOwner
}

// CanDeleteCategory reports whether actor may delete a category. Creation and
// update are open to any authenticated user; deletion is owner-only.
func CanDeleteCategory(actor *models.Profile) bool {
	return CanModerate(actor)
}
