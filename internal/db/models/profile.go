// profile.go defines the Profile model for team member accounts, including the
// two-factor flag that drives the second login step.
package models

import "time"

// Profile represents a team member's identity record. Profiles are created on
// first signup and never deleted by this service; account removal is handled by
// the external account lifecycle.
type Profile struct {
	ID               string    `json:"id"`
	Email            string    `json:"email"`
	FullName         string    `json:"full_name"`
	Role             Role      `json:"role"`
	TwoFactorEnabled bool      `json:"two_factor_enabled"`
	PasswordHash     string    `json:"-"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// IsOwner reports whether the profile holds the moderator role.
func (p *Profile) IsOwner() bool {
	return p.Role == RoleOwner
}
