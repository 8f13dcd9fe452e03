// Package extract scans free-form user text for email addresses and phone
// numbers and grades password complexity.
package extract

import (
	"fmt"
	"regexp"
	"strings"
)

type Kind string

const (
	KindEmail Kind = "emails"
	KindPhone Kind = "phones"
)

// Deliberately loose address shape; full RFC 5322 parsing is not the point.
var emailPattern = regexp.MustCompile(`[a-zA-Z0-9+_.-]+@[a-zA-Z0-9.-]+`)

// Russian-format numbers: a leading +7 or 8, then three groups of digits
// with optional spaces, dashes or parentheses:
//
//	8XXXXXXXXXX, 8(XXX)XXXXXXX, 8 XXX XXX XX XX, 8-XXX-XXX-XX-XX
var phonePattern = regexp.MustCompile(`(?:\+7|8)(?:\s*[-(]?\d{3}[-)]?\s*-?\d{3}\s*-?\d{2}\s*-?\d{2})`)

// Find returns every match of the given kind in order of appearance,
// or nil when the text contains none.
func Find(kind Kind, text string) []string {
	switch kind {
	case KindEmail:
		return emailPattern.FindAllString(text, -1)
	case KindPhone:
		return phonePattern.FindAllString(text, -1)
	default:
		return nil
	}
}

// FormatNumbered renders matches as a 1-based numbered listing, one per line.
func FormatNumbered(matches []string) string {
	var b strings.Builder
	for i, match := range matches {
		fmt.Fprintf(&b, "%d. %s\n", i+1, match)
	}
	return b.String()
}

// The five independent complexity checks: minimum length 8, an uppercase
// letter, a lowercase letter, a digit, and a symbol from the allowed set.
var passwordChecks = []*regexp.Regexp{
	regexp.MustCompile(`.{8}`),
	regexp.MustCompile(`[A-Z]`),
	regexp.MustCompile(`[a-z]`),
	regexp.MustCompile(`\d`),
	regexp.MustCompile(`[!@#$%&*()^]`),
}

// PasswordComplexity runs the fixed set of independent complexity checks and
// reports how many passed. The password counts as strong only when
// passed == total.
func PasswordComplexity(password string) (passed, total int) {
	total = len(passwordChecks)
	for _, check := range passwordChecks {
		if check.MatchString(password) {
			passed++
		}
	}
	return passed, total
}
