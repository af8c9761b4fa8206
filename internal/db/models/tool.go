// tool.go defines the Tool model and its closed enums for status, difficulty,
// and pricing, plus the per-tool rating and comment records.
package models

import "time"

// ToolStatus represents where a tool sits in the approval lifecycle.
type ToolStatus string

const (
	ToolStatusPending  ToolStatus = "pending"
	ToolStatusApproved ToolStatus = "approved"
	ToolStatusRejected ToolStatus = "rejected"
)

// IsValid reports whether s is a defined tool status.
func (s ToolStatus) IsValid() bool {
	switch s {
	case ToolStatusPending, ToolStatusApproved, ToolStatusRejected:
		return true
	}
	return false
}

// DifficultyLevel describes how steep a tool's learning curve is.
type DifficultyLevel string

const (
	DifficultyBeginner     DifficultyLevel = "beginner"
	DifficultyIntermediate DifficultyLevel = "intermediate"
	DifficultyAdvanced     DifficultyLevel = "advanced"
)

// IsValid reports whether d is a defined difficulty level.
func (d DifficultyLevel) IsValid() bool {
	switch d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return true
	}
	return false
}

// PricingModel describes how a tool is licensed.
type PricingModel string

const (
	PricingFree       PricingModel = "free"
	PricingFreemium   PricingModel = "freemium"
	PricingPaid       PricingModel = "paid"
	PricingEnterprise PricingModel = "enterprise"
)

// IsValid reports whether p is a defined pricing model.
func (p PricingModel) IsValid() bool {
	switch p {
	case PricingFree, PricingFreemium, PricingPaid, PricingEnterprise:
		return true
	}
	return false
}

// Tool represents a submitted AI-tool recommendation. A tool is created in
// ToolStatusPending and moves between approved and rejected only through
// moderation actions; ApprovedBy, ApprovedAt, and RejectionReason are set
// together with those transitions, never independently.
type Tool struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	Description      string          `json:"description"`
	CategoryID       *string         `json:"category_id,omitempty"`
	WebsiteURL       *string         `json:"website_url,omitempty"`
	DocumentationURL *string         `json:"documentation_url,omitempty"`
	VideoURL         *string         `json:"video_url,omitempty"`
	Difficulty       DifficultyLevel `json:"difficulty_level"`
	Pricing          PricingModel    `json:"pricing_model"`
	Tags             []string        `json:"tags"`
	Status           ToolStatus      `json:"status"`
	ApprovedBy       *string         `json:"approved_by,omitempty"`
	ApprovedAt       *time.Time      `json:"approved_at,omitempty"`
	RejectionReason  *string         `json:"rejection_reason,omitempty"`
	CreatedBy        string          `json:"created_by"`
	Roles            []Role          `json:"roles"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// ToolAggregate holds the derived statistics for one tool. AverageRating is 0,
// not null, when no ratings exist.
type ToolAggregate struct {
	AverageRating float64 `json:"average_rating"`
	RatingCount   int     `json:"rating_count"`
	CommentCount  int     `json:"comment_count"`
}

// ToolRating is a single user's 1-5 rating of a tool. At most one row exists
// per (tool, user); re-rating overwrites the previous value.
type ToolRating struct {
	ToolID    string    `json:"tool_id"`
	UserID    string    `json:"user_id"`
	Rating    int       `json:"rating"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToolComment is a free-text comment on a tool, owned by its author. Owners may
// delete (moderate) any comment but may not edit someone else's words.
type ToolComment struct {
	ID        string    `json:"id"`
	ToolID    string    `json:"tool_id"`
	UserID    string    `json:"user_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Joined field (not in DB)
	AuthorName string `json:"author_name,omitempty"`
}
