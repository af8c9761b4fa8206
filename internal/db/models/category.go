// category.go defines the Category model used to group tools on the dashboard.
package models

import "time"

// Category groups tools under a named, colored heading. Any authenticated user
// may create or update categories; only owners may delete them.
type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	Color       string    `json:"color"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
