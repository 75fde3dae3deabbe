package draft

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Keyword stems checked against the diacritic-stripped dictated text.
// "annul" covers annule, annuler, annulation; update stems cover the usual
// rescheduling verbs.
var (
	cancelStems = []string{"annul", "supprime", "supprimer"}
	updateStems = []string{"deplac", "report", "chang", "modifi", "decal"}
)

var intentStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// ClassifyIntent applies the rule-based create/update/cancel classification
// to the dictated text. Cancellation wins over modification when both
// appear ("annule et remplace" is a cancel).
func ClassifyIntent(rawText string) Intent {
	stripped, _, err := transform.String(intentStripper, rawText)
	if err != nil {
		stripped = rawText
	}
	lower := strings.ToLower(stripped)

	for _, stem := range cancelStems {
		if strings.Contains(lower, stem) {
			return IntentCancel
		}
	}
	for _, stem := range updateStems {
		if strings.Contains(lower, stem) {
			return IntentUpdate
		}
	}
	return IntentCreate
}
