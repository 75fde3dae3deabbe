package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeWellFormedJSON(t *testing.T) {
	raw := `{"participants": ["Jean Dupont"], "date": "demain", "heure": "14h"}`

	p := Decode(raw)
	require.Equal(t, KindStructured, p.Kind)

	e := ToExtraction(p)
	assert.Equal(t, []string{"Jean Dupont"}, e.Participants)
	assert.Equal(t, "demain", e.DateText)
	assert.Equal(t, "14h", e.TimeText)
}

func TestDecodeRepairsBrokenJSON(t *testing.T) {
	// Trailing comma and unquoted key, typical LLM output.
	raw := `{participants: ["Jean Dupont"], "date": "demain",}`

	p := Decode(raw)
	assert.Equal(t, KindStructured, p.Kind)

	e := ToExtraction(p)
	assert.Equal(t, []string{"Jean Dupont"}, e.Participants)
}

func TestDecodeFencedJSON(t *testing.T) {
	raw := "```json\n{\"date\": \"demain\"}\n```"

	p := Decode(raw)
	require.Equal(t, KindStructured, p.Kind)
	assert.Equal(t, "demain", ToExtraction(p).DateText)
}

func TestDecodeFreeformText(t *testing.T) {
	raw := "- participants: Jean Dupont\n- date: demain"

	p := Decode(raw)
	require.Equal(t, KindFreeform, p.Kind)

	e := ToExtraction(p)
	assert.Equal(t, []string{"Jean Dupont"}, e.Participants)
	assert.Equal(t, "demain", e.DateText)
}

func TestDecodeEmptyInput(t *testing.T) {
	p := Decode("   ")
	assert.Equal(t, KindFreeform, p.Kind)
	assert.Empty(t, ToExtraction(p).Participants)
}

func TestStructuredToleratesVariantShapes(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want Extraction
	}{
		{
			name: "participants as string",
			raw:  `{"participants": "Jean Dupont, Marie Martin"}`,
			want: Extraction{Participants: []string{"Jean Dupont", "Marie Martin"}},
		},
		{
			name: "participants as objects",
			raw:  `{"participants": [{"nom": "Jean Dupont"}, {"name": "Marie Martin"}]}`,
			want: Extraction{Participants: []string{"Jean Dupont", "Marie Martin"}},
		},
		{
			name: "alternate keys",
			raw:  `{"avec": "Jean Dupont", "quand": "demain", "motif": "bilan", "adresse": "domicile"}`,
			want: Extraction{Participants: []string{"Jean Dupont"}, DateText: "demain", Description: "bilan", Location: "domicile"},
		},
		{
			name: "unknown keys ignored",
			raw:  `{"confidence": 0.9, "date": "demain"}`,
			want: Extraction{DateText: "demain"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := Decode(tc.raw)
			require.Equal(t, KindStructured, p.Kind)
			assert.Equal(t, tc.want, ToExtraction(p))
		})
	}
}

func TestSplitNames(t *testing.T) {
	assert.Equal(t, []string{"Jean", "Marie", "Paul"}, SplitNames("Jean, Marie et Paul"))
	assert.Empty(t, SplitNames("  "))
}
