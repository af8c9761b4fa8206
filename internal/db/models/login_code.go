// login_code.go defines the LoginCode model backing the second factor of the
// login flow.
package models

import "time"

// LoginCode is a one-time 6-digit code issued after a successful password check
// for a two-factor-enabled account. A code is valid until consumed, superseded
// by a resend, or expired (ten minutes after issue).
type LoginCode struct {
	ID         string     `json:"id"`
	Email      string     `json:"email"`
	Code       string     `json:"-"`
	CreatedAt  time.Time  `json:"created_at"`
	ExpiresAt  time.Time  `json:"expires_at"`
	ConsumedAt *time.Time `json:"consumed_at,omitempty"`
}

// IsExpired reports whether the code's validity window has passed.
func (c *LoginCode) IsExpired() bool {
	return time.Now().After(c.ExpiresAt)
}

// IsUsable reports whether the code can still satisfy a verification attempt.
func (c *LoginCode) IsUsable() bool {
	return c.ConsumedAt == nil && !c.IsExpired()
}
