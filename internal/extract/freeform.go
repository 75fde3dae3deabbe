package extract

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var keyStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// ParseFreeform reads the extractor's line-based fallback shape:
//
//	- participants: Jean Dupont, Marie Martin
//	- date: demain
//	- heure: 14h
//	- durée: 30 minutes
//
// It tolerates missing dashes, "*" bullets, blank lines, unknown keys, and
// keys in mixed case or with diacritics. Lines without a recognized
// "key: value" form are accumulated into the description.
func ParseFreeform(text string) Extraction {
	e := Extraction{}
	var leftover []string

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "-*• \t")
		if line == "" {
			continue
		}

		key, value, ok := splitKeyValue(line)
		if !ok {
			leftover = append(leftover, line)
			continue
		}

		if !assignField(&e, key, value) {
			// Unknown key: keep the raw line rather than losing it.
			leftover = append(leftover, line)
		}
	}

	if e.Description == "" && len(leftover) > 0 {
		e.Description = strings.Join(leftover, " ")
	}
	return e
}

// splitKeyValue splits "key: value" on the first colon. A colon inside a
// time form ("14:30") does not make a key, so the key side must be short
// and non-numeric.
func splitKeyValue(line string) (string, string, bool) {
	idx := strings.Index(line, ":")
	if idx <= 0 || idx > 40 {
		return "", "", false
	}
	rawKey := strings.TrimSpace(line[:idx])
	if rawKey == "" || strings.ContainsAny(rawKey, "0123456789") {
		return "", "", false
	}
	return normalizeKey(rawKey), strings.TrimSpace(line[idx+1:]), true
}

// normalizeKey lowercases and strips diacritics so "Durée" matches "duree".
func normalizeKey(key string) string {
	stripped, _, err := transform.String(keyStripper, key)
	if err != nil {
		stripped = key
	}
	return strings.ToLower(strings.TrimSpace(stripped))
}
