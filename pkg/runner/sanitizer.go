package runner

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	// DefaultMaxInputSize is 4KB, enough for any step description.
	DefaultMaxInputSize = 4096
	// EnvMaxInputSize overrides DefaultMaxInputSize.
	EnvMaxInputSize = "WAYPOINT_MAX_INPUT_SIZE"
)

var (
	ErrInputTooLarge = errors.New("input exceeds maximum allowed size")
	ErrInvalidUTF8   = errors.New("input contains invalid UTF-8 sequences")
)

// SanitizeInput checks the size limit and UTF-8 validity of a draft value and
// strips control characters other than newline, tab and carriage return.
// Oversized input is rejected, never truncated.
func SanitizeInput(input string) (string, error) {
	if limit := MaxInputSize(); len(input) > limit {
		return "", fmt.Errorf("%w: size=%d limit=%d", ErrInputTooLarge, len(input), limit)
	}
	if !utf8.ValidString(input) {
		return "", ErrInvalidUTF8
	}
	return strip(input, isSafeControl), nil
}

// SanitizeLine is SanitizeInput for single-line values such as titles and
// player commands: line breaks and tabs collapse to a single space.
func SanitizeLine(input string) (string, error) {
	clean, err := SanitizeInput(input)
	if err != nil {
		return "", err
	}
	return strings.Join(strings.Fields(clean), " "), nil
}

// SanitizeField applies the rule for a draft field: descriptions keep their
// line breaks, every other field is a single line.
func SanitizeField(name, value string) (string, error) {
	if name == "description" {
		return SanitizeInput(value)
	}
	return SanitizeLine(value)
}

func strip(input string, keep func(rune) bool) string {
	if strings.IndexFunc(input, func(r rune) bool { return unicode.IsControl(r) && !keep(r) }) < 0 {
		return input
	}
	var b strings.Builder
	b.Grow(len(input))
	for _, r := range input {
		if !unicode.IsControl(r) || keep(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isSafeControl(r rune) bool {
	return r == '\n' || r == '\t' || r == '\r'
}

// MaxInputSize returns the effective limit in bytes.
func MaxInputSize() int {
	if val := os.Getenv(EnvMaxInputSize); val != "" {
		if size, err := strconv.Atoi(val); err == nil && size > 0 {
			return size
		}
	}
	return DefaultMaxInputSize
}
