package utils

import (
	"regexp"
	"strings"
)

var nonDigits = regexp.MustCompile(`\D`)

// NormalizeHandle strips formatting from a phone handle and drops a leading
// +91 or 0 trunk prefix.
func NormalizeHandle(raw string) string {
	digits := nonDigits.ReplaceAllString(raw, "")
	switch {
	case len(digits) == 12 && strings.HasPrefix(digits, "91"):
		return digits[2:]
	case len(digits) == 11 && strings.HasPrefix(digits, "0"):
		return digits[1:]
	}
	return digits
}

// ValidHandle reports whether s is a 10-digit handle.
func ValidHandle(s string) bool {
	if len(s) != 10 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// DisplayHandle formats a handle as "+91 98765 43210".
func DisplayHandle(handle string) string {
	if !ValidHandle(handle) {
		return handle
	}
	return "+91 " + handle[:5] + " " + handle[5:]
}
