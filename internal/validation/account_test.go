package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  string
	}{
		{"valid", "Password123", ""},
		{"too short", "Pass1", "password must be at least 8 characters long"},
		{"too long", strings.Repeat("a1", 65), "password must not exceed 128 characters"},
		{"no letter", "12345678", "password must contain at least one letter"},
		{"no digit", "passwordonly", "password must contain at least one digit"},
		{"unicode letters count", "pässwörd1", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.EqualError(t, err, tt.wantErr)
			}
		})
	}
}

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		name     string
		username string
		wantErr  string
	}{
		{"valid", "jane_doe-42", ""},
		{"blank", "   ", "username is required"},
		{"too short", "ab", "username must be between 3 and 50 characters"},
		{"too long", strings.Repeat("a", 51), "username must be between 3 and 50 characters"},
		{"bad characters", "jane doe", "username can only contain letters, numbers, underscores, and hyphens"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUsername(tt.username)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.EqualError(t, err, tt.wantErr)
			}
		})
	}
}

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr string
	}{
		{"valid", "jane@example.com", ""},
		{"blank", "", "email is required"},
		{"no at sign", "janeexample.com", "email should be valid"},
		{"no tld", "jane@example", "email should be valid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.EqualError(t, err, tt.wantErr)
			}
		})
	}
}

func TestValidateBio(t *testing.T) {
	assert.NoError(t, ValidateBio(""))
	assert.NoError(t, ValidateBio(strings.Repeat("b", 255)))
	assert.EqualError(t, ValidateBio(strings.Repeat("b", 256)), "bio cannot exceed 255 characters")
}
