package match

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"careagenda/internal/directory"
)

func newIndex(names ...string) *directory.Index {
	records := make([]directory.ContactRecord, len(names))
	for i, name := range names {
		records[i] = directory.ContactRecord{ID: string(rune('1' + i)), Name: name}
	}
	return directory.NewIndex(records)
}

func TestTokensNormalization(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"Jean Dupont", []string{"jean", "dupont"}},
		{"M. Dupont", []string{"dupont"}},
		{"Docteur Hélène Lefèvre", []string{"helene", "lefevre"}},
		{"Marie M.", []string{"marie", "m"}},
		{"  madame   Claire   Bernard ", []string{"claire", "bernard"}},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Tokens(tc.in), "input %q", tc.in)
	}
}

func TestExactMatchIsMaximal(t *testing.T) {
	idx := newIndex("Jean Dupont", "Marie Martin")

	result := Resolve("JEAN DUPONT", idx, DefaultConfig())
	assert.Equal(t, StatusMatched, result.Status)
	assert.Equal(t, "1", result.ResolvedID)
	assert.Equal(t, 1.0, result.Score)
}

func TestExactMatchIgnoresDiacritics(t *testing.T) {
	idx := newIndex("Hélène Lefèvre")

	result := Resolve("Helene Lefevre", idx, DefaultConfig())
	assert.Equal(t, StatusMatched, result.Status)
	assert.Equal(t, 1.0, result.Score)
}

func TestTypoStillMatches(t *testing.T) {
	idx := newIndex("Jean Dupont")
	config := DefaultConfig()

	result := Resolve("Jean Dupond", idx, config)
	assert.Equal(t, StatusMatched, result.Status)
	assert.Equal(t, "1", result.ResolvedID)
	assert.GreaterOrEqual(t, result.Score, config.Threshold)
}

func TestInitialIsAmbiguous(t *testing.T) {
	idx := newIndex("Marie Martin", "Marie Morin")

	result := Resolve("Marie M.", idx, DefaultConfig())
	assert.Equal(t, StatusAmbiguous, result.Status)
	assert.Len(t, result.Candidates, 2)
	assert.Empty(t, result.ResolvedID)
}

func TestUnknownNameIsUnmatched(t *testing.T) {
	idx := newIndex("Jean Dupont", "Marie Martin")

	result := Resolve("Gérard Larcher", idx, DefaultConfig())
	assert.Equal(t, StatusUnmatched, result.Status)
	assert.Empty(t, result.ResolvedID)
}

func TestMatchResultsSortedDescending(t *testing.T) {
	idx := newIndex("Jean Dupont", "Marie Martin", "Jeanne Durand", "Paul Petit")

	ranked := Match("Jean Dupont", idx, 4)
	require.NotEmpty(t, ranked)
	assert.True(t, sort.SliceIsSorted(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	}) || isNonIncreasing(ranked))

	// Top score is the maximum over the whole directory.
	for _, c := range ranked[1:] {
		assert.LessOrEqual(t, c.Score, ranked[0].Score)
	}
	assert.Equal(t, "1", ranked[0].ID)
}

func isNonIncreasing(ranked []Candidate) bool {
	for i := 1; i < len(ranked); i++ {
		if ranked[i].Score > ranked[i-1].Score {
			return false
		}
	}
	return true
}

func TestMatchRespectsTopN(t *testing.T) {
	idx := newIndex("Jean Dupont", "Marie Martin", "Jeanne Durand", "Paul Petit")
	assert.Len(t, Match("Jean", idx, 2), 2)
}

func TestScoreIsPureAndSymmetricBounds(t *testing.T) {
	a := Score("Jean Dupont", "Jean Dupond")
	b := Score("Jean Dupont", "Jean Dupond")
	assert.Equal(t, a, b)
	assert.GreaterOrEqual(t, a, 0.0)
	assert.LessOrEqual(t, a, 1.0)
}

func TestEmptyDirectoryIsUnmatched(t *testing.T) {
	result := Resolve("Jean Dupont", directory.NewIndex(nil), DefaultConfig())
	assert.Equal(t, StatusUnmatched, result.Status)
	assert.Empty(t, result.Candidates)
}

func TestLevenshtein(t *testing.T) {
	assert.Equal(t, 0, levenshtein("abc", "abc"))
	assert.Equal(t, 1, levenshtein("dupond", "dupont"))
	assert.Equal(t, 3, levenshtein("", "abc"))
	assert.Equal(t, 2, levenshtein("kitten", "sittin"))
}
