package ticket

import (
	"regexp"
	"strings"
)

// Ticket numbers follow PREFIX-YYYYMMDD-NNNNNN: a fixed 3–4 letter
// prefix, the 8-digit issuance date and a 6-digit zero-padded per-day
// sequence, e.g. TKT-20251108-000001. The format is human-typable, so
// every entry point normalizes case and whitespace before lookup.
var numberPattern = regexp.MustCompile(`^[A-Z]{3,4}-[0-9]{8}-[0-9]{6}$`)

// Normalize upper-cases and trims a ticket number as typed or scanned
// by a cashier. Lookups always operate on the normalized form.
func Normalize(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// ValidNumber reports whether a normalized ticket number is
// well-formed. Malformed numbers never reach the database; they are
// reported as not found.
func ValidNumber(number string) bool {
	return numberPattern.MatchString(number)
}
