package match

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// honorifics dropped during normalization. Dictated French name mentions
// routinely carry these.
var honorifics = map[string]bool{
	"m":            true,
	"mr":           true,
	"mme":          true,
	"mlle":         true,
	"dr":           true,
	"pr":           true,
	"monsieur":     true,
	"madame":       true,
	"mademoiselle": true,
	"docteur":      true,
	"professeur":   true,
}

var diacriticStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize lowercases a name, strips diacritics and punctuation, and drops
// leading honorifics. The result is a single-space-separated token string.
func Normalize(name string) string {
	return strings.Join(Tokens(name), " ")
}

// Tokens returns the normalized tokens of a name.
//
// A single-letter token is kept (it may be an initial, "Marie M.") but a
// token that is a known honorific is dropped only in leading position, so
// "M. Dupont" loses the honorific while a genuine initial inside the name
// survives.
func Tokens(name string) []string {
	stripped, _, err := transform.String(diacriticStripper, name)
	if err != nil {
		stripped = name
	}
	lower := strings.ToLower(stripped)

	fields := strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})

	tokens := make([]string, 0, len(fields))
	for i, field := range fields {
		if i == 0 && honorifics[field] && len(fields) > 1 {
			continue
		}
		tokens = append(tokens, field)
	}
	return tokens
}

// levenshtein computes the edit distance between two strings, by rune.
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, min(curr[j-1]+1, prev[j-1]+cost))
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

// similarity maps edit distance into [0,1], 1 meaning identical.
func similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	maxLen := max(len([]rune(a)), len([]rune(b)))
	if maxLen == 0 {
		return 1
	}
	return 1 - float64(levenshtein(a, b))/float64(maxLen)
}
