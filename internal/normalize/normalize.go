// Package normalize canonicalizes free-text venue strings before lookup.
package normalize

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Normalize folds compatibility forms (NFKC), trims, collapses internal
// whitespace runs to a single space and upper-cases the result.
// Empty or whitespace-only input yields "".
func Normalize(s string) string {
	s = norm.NFKC.String(strings.ToUpper(norm.NFKC.String(s)))
	return strings.Join(strings.Fields(s), " ")
}
