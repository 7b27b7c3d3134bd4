package filter

import "strings"

// Typographic quotes and the quotes a keyboard produces
var quoteReplacer = strings.NewReplacer(
	"“", `"`,
	"”", `"`,
	"‘", "'",
	"’", "'",
)

// Normalize maps indexed values and query text to a common domain. It trims
// surrounding whitespace, lowercases (an approximation of case folding, not
// full Unicode folding) and replaces typographic quotes with plain ones.
func Normalize(text string) string {
	return quoteReplacer.Replace(strings.ToLower(strings.TrimSpace(text)))
}

// Tokenize normalizes a query and splits it on whitespace runs. An empty or
// all-whitespace query has no tokens.
func Tokenize(query string) []string {
	return strings.Fields(Normalize(query))
}
