package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseFreeformWellFormed(t *testing.T) {
	text := `- participants: Jean Dupont, Marie Martin
- date: demain
- heure: 14h
- durée: 30 minutes
- description: visite de contrôle
- lieu: domicile`

	e := ParseFreeform(text)

	assert.Equal(t, []string{"Jean Dupont", "Marie Martin"}, e.Participants)
	assert.Equal(t, "demain", e.DateText)
	assert.Equal(t, "14h", e.TimeText)
	assert.Equal(t, "30 minutes", e.DurationText)
	assert.Equal(t, "visite de contrôle", e.Description)
	assert.Equal(t, "domicile", e.Location)
}

func TestParseFreeformToleratesBulletsAndCase(t *testing.T) {
	text := `* Participants : Jean Dupont et Paul Petit
  Date: lundi

DURÉE: 1 heure`

	e := ParseFreeform(text)

	assert.Equal(t, []string{"Jean Dupont", "Paul Petit"}, e.Participants)
	assert.Equal(t, "lundi", e.DateText)
	assert.Equal(t, "1 heure", e.DurationText)
}

func TestParseFreeformColonInsideTimeValue(t *testing.T) {
	e := ParseFreeform("- heure: 14:30")
	assert.Equal(t, "14:30", e.TimeText)
}

func TestParseFreeformUnknownKeysBecomeDescription(t *testing.T) {
	text := `- priorité: haute
- note: apporter le dossier`

	e := ParseFreeform(text)
	assert.Contains(t, e.Description, "apporter le dossier")
}

func TestParseFreeformKeepsExplicitDescription(t *testing.T) {
	text := `- description: bilan mensuel
- note: à confirmer`

	e := ParseFreeform(text)
	assert.Equal(t, "bilan mensuel", e.Description)
}

func TestParseFreeformMalformedShapes(t *testing.T) {
	cases := []struct {
		name string
		text string
	}{
		{"empty", ""},
		{"only dashes", "-\n-\n-"},
		{"no colons", "rendez vous demain quatorze heures"},
		{"colon first", ": valeur sans clef"},
		{"numeric key", "14:30"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := ParseFreeform(tc.text)
			assert.Empty(t, e.Participants)
			assert.Empty(t, e.DateText)
			assert.Empty(t, e.TimeText)
		})
	}
}

func TestParseFreeformDuplicateKeysAccumulate(t *testing.T) {
	text := `- participant: Jean Dupont
- participant: Marie Martin`

	e := ParseFreeform(text)
	assert.Equal(t, []string{"Jean Dupont", "Marie Martin"}, e.Participants)
}
