package agenda

import (
	"errors"
	"time"

	"careagenda/internal/calendar"
	"careagenda/internal/directory"
)

// PrepareRequest carries dictated text into draft building. ReferenceNow
// pins "now" for deterministic replay; nil means wall clock.
type PrepareRequest struct {
	Text         string     `json:"text"`
	ReferenceNow *time.Time `json:"referenceNow,omitempty"`
}

// ConfirmEvent is the confirmed slot and participant set to commit.
type ConfirmEvent struct {
	Title          string    `json:"title"`
	Start          time.Time `json:"start"`
	Stop           time.Time `json:"stop"`
	Location       string    `json:"location,omitempty"`
	ParticipantIDs []string  `json:"participantIds"`
}

// ConfirmRequest commits a confirmed draft. Accepted proposals for
// unmatched participants are created in the directory before the commit.
type ConfirmRequest struct {
	Event                 ConfirmEvent                `json:"event"`
	ProposedContacts      []directory.ProposedContact `json:"proposedContacts,omitempty"`
	SkipAvailabilityCheck bool                        `json:"skipAvailabilityCheck,omitempty"`
}

func (r ConfirmRequest) validate() error {
	if r.Event.Start.IsZero() || r.Event.Stop.IsZero() {
		return errors.New("creneau manquant: start et stop sont requis")
	}
	if !r.Event.Stop.After(r.Event.Start) {
		return errors.New("creneau invalide: stop doit suivre start")
	}
	return nil
}

// ConfirmResult is the committed event.
type ConfirmResult struct {
	EventID string    `json:"eventId"`
	Start   time.Time `json:"start"`
	Stop    time.Time `json:"stop"`
	Summary string    `json:"summary"`
}

// Conflict is the suggestion returned when the availability search
// exhausts its attempts. The suggested slot is the next untried one.
type Conflict struct {
	SuggestionStart time.Time `json:"suggestionStart"`
	SuggestionStop  time.Time `json:"suggestionStop"`
	Attempts        int       `json:"attempts"`
	Message         string    `json:"message"`
}

// ConfirmOutcome holds exactly one of a committed result or a conflict.
type ConfirmOutcome struct {
	Committed *ConfirmResult
	Conflict  *Conflict
}

// UpdateRequest targets an event by id or by match query and applies a
// partial update.
type UpdateRequest struct {
	EventID        string                `json:"eventId,omitempty"`
	OriginalStart  *time.Time            `json:"originalStart,omitempty"`
	ParticipantIDs []string              `json:"participantIds,omitempty"`
	Keywords       []string              `json:"keywords,omitempty"`
	Fields         calendar.UpdateFields `json:"fields"`
}

func (r UpdateRequest) matchQuery() *calendar.MatchQuery {
	return buildMatchQuery(r.OriginalStart, r.ParticipantIDs, r.Keywords)
}

// CancelRequest targets an event by id or by match query.
type CancelRequest struct {
	EventID        string     `json:"eventId,omitempty"`
	OriginalStart  *time.Time `json:"originalStart,omitempty"`
	ParticipantIDs []string   `json:"participantIds,omitempty"`
	Keywords       []string   `json:"keywords,omitempty"`
}

func (r CancelRequest) matchQuery() *calendar.MatchQuery {
	return buildMatchQuery(r.OriginalStart, r.ParticipantIDs, r.Keywords)
}

func buildMatchQuery(originalStart *time.Time, participantIDs, keywords []string) *calendar.MatchQuery {
	if originalStart == nil {
		return nil
	}
	return &calendar.MatchQuery{
		OriginalStart:  *originalStart,
		ParticipantIDs: participantIDs,
		Keywords:       keywords,
	}
}
