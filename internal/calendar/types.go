// Package calendar locates target events for update/cancel operations and
// executes the single external mutation of a commit.
package calendar

import "time"

// Event is the payload of a calendar creation.
type Event struct {
	Title          string    `json:"title"`
	Start          time.Time `json:"start"`
	Stop           time.Time `json:"stop"`
	Location       string    `json:"location,omitempty"`
	ParticipantIDs []string  `json:"participantIds"`
}

// UpdateFields carries a partial update; nil fields are left untouched by
// the remote system.
type UpdateFields struct {
	Title          *string    `json:"title,omitempty"`
	Start          *time.Time `json:"start,omitempty"`
	Stop           *time.Time `json:"stop,omitempty"`
	Location       *string    `json:"location,omitempty"`
	ParticipantIDs []string   `json:"participantIds,omitempty"`
}

// MatchQuery finds an event when no explicit id is available: the original
// start time plus the participant set, optionally narrowed by keywords.
type MatchQuery struct {
	OriginalStart  time.Time `json:"originalStart"`
	ParticipantIDs []string  `json:"participantIds"`
	Keywords       []string  `json:"keywords,omitempty"`
}
