package validate

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultMaxInputSize bounds raw expression text before validation.
const DefaultMaxInputSize = 4096

// EnvMaxInputSize overrides DefaultMaxInputSize when set to a positive integer.
const EnvMaxInputSize = "QUIVER_MAX_INPUT_SIZE"

var (
	ErrInputTooLarge = errors.New("input exceeds maximum allowed size")
	ErrInvalidUTF8   = errors.New("input contains invalid UTF-8 sequences")
)

// Sanitize prepares untrusted text coming from a request or a terminal.
// It rejects oversized or non UTF-8 input, drops control characters other than tab
// and trims surrounding whitespace. A limit <= 0 selects MaxInputSize().
func Sanitize(input string, limit int) (string, error) {
	if limit <= 0 {
		limit = MaxInputSize()
	}
	if len(input) > limit {
		// Rejected rather than truncated: a truncated equation is a different equation.
		return "", fmt.Errorf("%w: size=%d limit=%d", ErrInputTooLarge, len(input), limit)
	}
	if !utf8.ValidString(input) {
		return "", ErrInvalidUTF8
	}

	clean := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && r != '\t' {
			return -1
		}
		return r
	}, input)
	return strings.TrimSpace(clean), nil
}

// MaxInputSize returns the configured input limit.
func MaxInputSize() int {
	if val := os.Getenv(EnvMaxInputSize); val != "" {
		if size, err := strconv.Atoi(val); err == nil && size > 0 {
			return size
		}
	}
	return DefaultMaxInputSize
}
