package recipe

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Normalize canonicalizes an ingredient name or search query:
// 1. Unicode lowercase (language neutral)
// 2. Trim leading/trailing whitespace
//
// Internal whitespace is left alone so substring matching sees the text as
// entered. Normalize is idempotent.
func Normalize(s string) string {
	// A Caser holds state; build one per call.
	// Not cases.Fold: it maps Cherokee to uppercase and is not idempotent there.
	return strings.TrimSpace(cases.Lower(language.Und).String(s))
}

// Matches reports whether any ingredient's normalized name contains the
// already-normalized query. Matching is plain substring containment, not
// token aware: "egg" matches "Eggplant".
func (r *Recipe) Matches(normalizedQuery string) bool {
	for _, ing := range r.Ingredients {
		if strings.Contains(Normalize(ing.Name), normalizedQuery) {
			return true
		}
	}
	return false
}
