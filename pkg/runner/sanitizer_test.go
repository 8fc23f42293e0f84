package runner

import (
	"errors"
	"strings"
	"testing"
)

func TestSanitizeInput_SizeLimit(t *testing.T) {
	limit := DefaultMaxInputSize

	tests := []struct {
		name      string
		inputSize int
		wantErr   bool
	}{
		{"Under Limit", limit - 1, false},
		{"Exact Limit", limit, false},
		{"Over Limit", limit + 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := SanitizeInput(strings.Repeat("a", tt.inputSize))
			if tt.wantErr != (err != nil) {
				t.Errorf("SanitizeInput(size %d) err = %v, wantErr %v", tt.inputSize, err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrInputTooLarge) {
				t.Errorf("expected ErrInputTooLarge, got %v", err)
			}
		})
	}
}

func TestSanitizeInput_ControlChars(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Normal Text", "Hello World", "Hello World"},
		{"Safe Controls", "Line1\nLine2\tTabbed", "Line1\nLine2\tTabbed"},
		{"ANSI Code", "\x1b[31mRed\x1b[0m", "[31mRed[0m"},
		{"Null Byte", "Null\x00Byte", "NullByte"},
		{"Bell", "Ding\x07", "Ding"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SanitizeInput(tt.input)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestSanitizeField(t *testing.T) {
	tests := []struct {
		field, input, want string
	}{
		{"title", "  Multi\nline\t title ", "Multi line title"},
		{"image", "https://img/x.png\x00", "https://img/x.png"},
		{"description", "First\nSecond", "First\nSecond"},
	}
	for _, tt := range tests {
		got, err := SanitizeField(tt.field, tt.input)
		if err != nil {
			t.Fatalf("SanitizeField(%s) error: %v", tt.field, err)
		}
		if got != tt.want {
			t.Errorf("SanitizeField(%s, %q) = %q, want %q", tt.field, tt.input, got, tt.want)
		}
	}
}

func TestSanitizeInput_EnvOverride(t *testing.T) {
	t.Setenv(EnvMaxInputSize, "10")

	if _, err := SanitizeInput("12345678901"); err == nil {
		t.Error("Expected error for input > 10 when env var is set")
	}
	if _, err := SanitizeInput("12345"); err != nil {
		t.Error("Unexpected error for valid input")
	}

	t.Setenv(EnvMaxInputSize, "not-a-number")
	if got := MaxInputSize(); got != DefaultMaxInputSize {
		t.Errorf("invalid override should fall back to default, got %d", got)
	}
}

func TestSanitizeInput_InvalidUTF8(t *testing.T) {
	input := "\xbd\xb2\x3d\xbc\x20\xe2\x8c\x98"
	if _, err := SanitizeInput(input); err != ErrInvalidUTF8 {
		t.Errorf("Expected ErrInvalidUTF8, got %v", err)
	}
}
