// Package validation provides the small pure validators applied before any
// write: rating bounds, comment content, two-factor code format, and email
// shape. Rejections here surface as inline 400 messages, never as store errors.
package validation

import (
	"fmt"
	"strings"
)

// ValidateRating checks that a rating value is an integer in [1,5].
func ValidateRating(rating int) error {
	if rating < 1 || rating > 5 {
		return fmt.Errorf("rating must be between 1 and 5, got %d", rating)
	}
	return nil
}

// NormalizeComment trims surrounding whitespace and rejects empty content.
// The trimmed content is otherwise stored verbatim.
func NormalizeComment(content string) (string, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return "", fmt.Errorf("comment cannot be empty")
	}
	return trimmed, nil
}

// ValidateLoginCode checks that a submitted two-factor code is exactly six
// ASCII digits.
func ValidateLoginCode(code string) error {
	if len(code) != 6 {
		return fmt.Errorf("code must be 6 digits")
	}
	for _, ch := range code {
		if ch < '0' || ch > '9' {
			return fmt.Errorf("code must be 6 digits")
		}
	}
	return nil
}

// ValidateEmail performs a minimal structural check on an email address.
// Delivery failure is the real validator; this only catches obvious typos
// before a database round-trip.
func ValidateEmail(email string) error {
	at := strings.Index(email, "@")
	if at < 1 || at == len(email)-1 || strings.Count(email, "@") != 1 {
		return fmt.Errorf("invalid email address")
	}
	if strings.ContainsAny(email, " \t\n") {
		return fmt.Errorf("invalid email address")
	}
	return nil
}

// ValidateHexColor checks a #rrggbb category color string.
func ValidateHexColor(color string) error {
	if len(color) != 7 || color[0] != '#' {
		return fmt.Errorf("color must be a #rrggbb hex string")
	}
	for _, ch := range color[1:] {
		switch {
		case ch >= '0' && ch <= '9':
		case ch >= 'a' && ch <= 'f':
		case ch >= 'A' && ch <= 'F':
		default:
			return fmt.Errorf("color must be a #rrggbb hex string")
		}
	}
	return nil
}
