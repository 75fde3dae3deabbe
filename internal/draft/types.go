// Package draft builds the in-memory, not-yet-committed representation of a
// dictated appointment. A draft lives only in the calling session: it is
// built fresh per preparation request and discarded once a commit attempt
// returns.
package draft

import (
	"time"

	"careagenda/internal/directory"
	"careagenda/internal/extract"
	"careagenda/internal/match"
)

// Intent is the classified operation type derived from dictated text.
type Intent string

const (
	IntentCreate Intent = "create"
	IntentUpdate Intent = "update"
	IntentCancel Intent = "cancel"
)

// ParticipantMatch is the resolution outcome for one dictated name mention.
type ParticipantMatch struct {
	InputName       string                     `json:"inputName"`
	Status          match.Status               `json:"status"`
	ResolvedID      string                     `json:"resolvedId,omitempty"`
	ResolvedName    string                     `json:"resolvedName,omitempty"`
	Score           float64                    `json:"score"`
	Candidates      []match.Candidate          `json:"candidates,omitempty"`
	ProposedContact *directory.ProposedContact `json:"proposedContact,omitempty"`
}

// EventDraft is the structured, warning-annotated result of preparing a
// dictated appointment request.
type EventDraft struct {
	Participants  []ParticipantMatch `json:"participants"`
	Start         *time.Time         `json:"start,omitempty"`
	Stop          *time.Time         `json:"stop,omitempty"`
	Description   string             `json:"description"`
	Location      string             `json:"location"`
	Intent        Intent             `json:"intent"`
	Warnings      []string           `json:"warnings"`
	RawExtraction extract.Extraction `json:"rawExtraction"`
}

// ResolvedParticipantIDs returns the ids of matched participants, in draft
// order.
func (d *EventDraft) ResolvedParticipantIDs() []string {
	ids := make([]string, 0, len(d.Participants))
	for _, p := range d.Participants {
		if p.Status == match.StatusMatched && p.ResolvedID != "" {
			ids = append(ids, p.ResolvedID)
		}
	}
	return ids
}

// NeedsDisambiguation reports whether any participant is still ambiguous.
func (d *EventDraft) NeedsDisambiguation() bool {
	for _, p := range d.Participants {
		if p.Status == match.StatusAmbiguous {
			return true
		}
	}
	return false
}
