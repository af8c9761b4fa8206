package validation

import "testing"

func TestValidateRating(t *testing.T) {
	tests := []struct {
		name    string
		rating  int
		wantErr bool
	}{
		{"minimum", 1, false},
		{"middle", 3, false},
		{"maximum", 5, false},
		{"zero", 0, true},
		{"too high", 6, true},
		{"negative", -1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRating(tt.rating)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRating(%d) error = %v, wantErr %v", tt.rating, err, tt.wantErr)
			}
		})
	}
}

func TestNormalizeComment(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
		wantErr bool
	}{
		{"plain", "great tool", "great tool", false},
		{"surrounding whitespace", "  great tool \n", "great tool", false},
		{"interior whitespace preserved", "a  b", "a  b", false},
		{"empty", "", "", true},
		{"whitespace only", "   \t\n", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeComment(tt.content)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NormalizeComment(%q) error = %v, wantErr %v", tt.content, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("NormalizeComment(%q) = %q, want %q", tt.content, got, tt.want)
			}
		})
	}
}

func TestValidateLoginCode(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantErr bool
	}{
		{"valid", "042917", false},
		{"all zeros", "000000", false},
		{"too short", "12345", true},
		{"too long", "1234567", true},
		{"letters", "12a456", true},
		{"empty", "", true},
		{"unicode digits", "１２３４５６", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLoginCode(tt.code)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateLoginCode(%q) error = %v, wantErr %v", tt.code, err, tt.wantErr)
			}
		})
	}
}

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{"simple", "alice@example.com", false},
		{"subdomain", "bob@mail.example.com", false},
		{"missing at", "alice.example.com", true},
		{"leading at", "@example.com", true},
		{"trailing at", "alice@", true},
		{"double at", "a@b@c.com", true},
		{"whitespace", "alice @example.com", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateEmail(%q) error = %v, wantErr %v", tt.email, err, tt.wantErr)
			}
		})
	}
}

func TestValidateHexColor(t *testing.T) {
	tests := []struct {
		name    string
		color   string
		wantErr bool
	}{
		{"lowercase", "#3b82f6", false},
		{"uppercase", "#3B82F6", false},
		{"missing hash", "3b82f6", true},
		{"short", "#fff", true},
		{"bad char", "#3b82fg", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateHexColor(tt.color)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateHexColor(%q) error = %v, wantErr %v", tt.color, err, tt.wantErr)
			}
		})
	}
}
