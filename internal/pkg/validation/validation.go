package validation

import (
	"regexp"
	"strings"
	"unicode"
)

// Identifiers: investor, funding round and idempotency keys. Letters, digits and
// _ - : . only, starting with a letter or digit.
var idRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_\-:.]{0,127}$`)

const maxLabelLen = 64

func IsValidID(id string) bool {
	return idRe.MatchString(id)
}

// IsValidLabel accepts short printable free text such as a distribution period ("Q1 2026").
func IsValidLabel(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > maxLabelLen {
		return false
	}
	for _, r := range s {
		if !unicode.IsPrint(r) {
			return false
		}
	}
	return true
}
