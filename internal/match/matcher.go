// Package match scores dictated name mentions against a directory snapshot.
// All functions are pure: identical inputs always produce identical output,
// and nothing is cached across calls.
package match

import (
	"sort"

	"careagenda/internal/directory"
)

// Status classifies a participant-name resolution.
type Status string

const (
	StatusMatched   Status = "matched"
	StatusAmbiguous Status = "ambiguous"
	StatusUnmatched Status = "unmatched"
)

// Candidate is one scored directory entry.
type Candidate struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// Config calibrates classification. See DESIGN.md for the chosen constants.
type Config struct {
	Threshold       float64 // minimum score to consider a candidate a match
	AmbiguityMargin float64 // required lead over the runner-up
	TopN            int     // candidates retained per mention
}

// DefaultConfig returns the calibrated defaults.
func DefaultConfig() Config {
	return Config{Threshold: 0.72, AmbiguityMargin: 0.15, TopN: 3}
}

// Result is the classified outcome for one name mention.
type Result struct {
	InputName    string      `json:"inputName"`
	Status       Status      `json:"status"`
	ResolvedID   string      `json:"resolvedId,omitempty"`
	ResolvedName string      `json:"resolvedName,omitempty"`
	Score        float64     `json:"score"`
	Candidates   []Candidate `json:"candidates,omitempty"`
}

const (
	tokenWeight = 0.6
	editWeight  = 0.4

	// An initial ("M.") against a token it abbreviates scores just below an
	// exact token so full-name mentions still outrank initials.
	initialSimilarity = 0.9
)

// Score computes the blended similarity of two names in [0,1].
func Score(a, b string) float64 {
	na, nb := Normalize(a), Normalize(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 1
	}
	return tokenWeight*tokenSetSimilarity(Tokens(a), Tokens(b)) + editWeight*similarity(na, nb)
}

// Match ranks directory entries against a candidate name, best first.
// Ties break on directory order for determinism.
func Match(candidateName string, idx *directory.Index, topN int) []Candidate {
	if idx == nil || idx.Len() == 0 || topN <= 0 {
		return nil
	}

	ranked := make([]Candidate, 0, idx.Len())
	for _, rec := range idx.Records() {
		ranked = append(ranked, Candidate{ID: rec.ID, Name: rec.Name, Score: Score(candidateName, rec.Name)})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	if len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return ranked
}

// Classify turns a ranked candidate list into a matched / ambiguous /
// unmatched result:
//
//   - top score ≥ threshold and lead over the runner-up ≥ margin → matched
//   - top score ≥ threshold otherwise, or ≥2 candidates above threshold → ambiguous
//   - top score below threshold → unmatched
func Classify(inputName string, ranked []Candidate, config Config) Result {
	result := Result{InputName: inputName, Status: StatusUnmatched, Candidates: ranked}
	if len(ranked) == 0 {
		return result
	}

	top := ranked[0]
	result.Score = top.Score
	if top.Score < config.Threshold {
		return result
	}

	aboveThreshold := 0
	for _, c := range ranked {
		if c.Score >= config.Threshold {
			aboveThreshold++
		}
	}

	lead := top.Score
	if len(ranked) > 1 {
		lead = top.Score - ranked[1].Score
	}

	if aboveThreshold >= 2 || (len(ranked) > 1 && lead < config.AmbiguityMargin) {
		result.Status = StatusAmbiguous
		result.Candidates = withinMargin(ranked, top.Score, config)
		return result
	}

	result.Status = StatusMatched
	result.ResolvedID = top.ID
	result.ResolvedName = top.Name
	return result
}

// Resolve is the full pipeline for one mention: rank then classify.
func Resolve(inputName string, idx *directory.Index, config Config) Result {
	return Classify(inputName, Match(inputName, idx, config.TopN), config)
}

// withinMargin keeps the candidates an ambiguous result must surface: every
// candidate whose score is within the ambiguity margin of the top score or
// above the threshold, and always at least two.
func withinMargin(ranked []Candidate, topScore float64, config Config) []Candidate {
	kept := make([]Candidate, 0, len(ranked))
	for i, c := range ranked {
		if c.Score >= config.Threshold || topScore-c.Score <= config.AmbiguityMargin || i < 2 {
			kept = append(kept, c)
		}
	}
	return kept
}

// tokenSetSimilarity averages, over both directions, the best per-token
// similarity between two token sets. An initial matches the token it
// abbreviates.
func tokenSetSimilarity(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	return (directionalSimilarity(a, b) + directionalSimilarity(b, a)) / 2
}

func directionalSimilarity(from, to []string) float64 {
	var total float64
	for _, ft := range from {
		best := 0.0
		for _, tt := range to {
			s := tokenSimilarity(ft, tt)
			if s > best {
				best = s
			}
		}
		total += best
	}
	return total / float64(len(from))
}

func tokenSimilarity(a, b string) float64 {
	if a == b {
		return 1
	}
	if isInitialOf(a, b) || isInitialOf(b, a) {
		return initialSimilarity
	}
	return similarity(a, b)
}

func isInitialOf(initial, full string) bool {
	ri := []rune(initial)
	rf := []rune(full)
	return len(ri) == 1 && len(rf) > 1 && ri[0] == rf[0]
}
