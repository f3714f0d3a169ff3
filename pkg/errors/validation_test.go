package errors

import (
	"strings"
	"testing"
)

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "Idle", false},
		{"with digits", "Attack2", false},
		{"with dash", "double-jump", false},
		{"with space", "Wall Run", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 300), true},
		{"slash", "a/b", true},
		{"traversal", "..", true},
		{"backslash", `a\b`, true},
		{"null byte", "a\x00b", true},
		{"newline", "a\nb", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName("state", tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidInput) {
				t.Errorf("error code = %v, want INVALID_INPUT", GetCode(err))
			}
		})
	}
}

func TestValidateIdentifier(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"UIViewController", false},
		{"Base_2", false},
		{"Wall Run", true},
		{"a-b", true},
		{"", true},
	}
	for _, tt := range tests {
		if err := ValidateIdentifier("class", tt.input); (err != nil) != tt.wantErr {
			t.Errorf("ValidateIdentifier(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
	}
}

func TestValidateExtension(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{".swift", false},
		{".ts", false},
		{"swift", true},
		{"", true},
		{"./x", true},
		{"..", true},
	}
	for _, tt := range tests {
		if err := ValidateExtension(tt.input); (err != nil) != tt.wantErr {
			t.Errorf("ValidateExtension(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
	}
}

func TestValidateOutputBase(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"UIView", false},
		{"classes", false},
		{"", true},
		{"out/UIView", true},
		{".hidden", true},
		{"a\tb", true},
	}
	for _, tt := range tests {
		err := ValidateOutputBase(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateOutputBase(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
		if err != nil && !Is(err, ErrCodeInvalidPath) {
			t.Errorf("ValidateOutputBase(%q) code = %v", tt.input, GetCode(err))
		}
	}
}
