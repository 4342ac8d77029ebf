package service

import (
	"regexp"
	"strings"
)

var (
	emailPattern   = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	digitsOnly     = regexp.MustCompile(`^[0-9]+$`)
	dashesOnly     = regexp.MustCompile(`^-+$`)
	minEmailLength = len("a@b.c")
)

// IsValidEmail rejects malformed addresses and the placeholder values that
// spreadsheet exports use for "no email" (numeric IDs, dashes).
func IsValidEmail(candidate string) bool {
	switch {
	case candidate == "",
		len(candidate) < minEmailLength,
		!strings.Contains(candidate, "@"),
		!strings.Contains(candidate, "."),
		digitsOnly.MatchString(candidate),
		dashesOnly.MatchString(candidate),
		candidate == "-",
		strings.HasPrefix(candidate, "000"),
		strings.HasPrefix(candidate, "-"):
		return false
	}
	return emailPattern.MatchString(candidate)
}
