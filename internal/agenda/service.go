// Package agenda is the application service tying the draft builder, the
// availability resolver, and the calendar gateway into the four boundary
// operations: Prepare, Confirm, Update, Cancel.
package agenda

import (
	"context"
	"errors"
	"fmt"
	"time"

	"careagenda/internal/availability"
	"careagenda/internal/calendar"
	"careagenda/internal/directory"
	"careagenda/internal/draft"
	"careagenda/internal/logging"
	"careagenda/internal/metrics"
)

// DraftBuilder prepares a warning-annotated draft from dictated text.
type DraftBuilder interface {
	Build(ctx context.Context, rawText string, referenceNow time.Time) *draft.EventDraft
}

// ConflictResolver runs the bounded availability search.
type ConflictResolver interface {
	Resolve(ctx context.Context, participantIDs []string, start, stop time.Time, maxAttempts int) availability.Result
}

// EventLocator resolves the target event of an update or cancel.
type EventLocator interface {
	Locate(ctx context.Context, eventID string, query *calendar.MatchQuery) (string, error)
}

// CommitGateway executes calendar mutations, one external call each.
type CommitGateway interface {
	Create(ctx context.Context, event calendar.Event) (string, error)
	Update(ctx context.Context, eventID string, fields calendar.UpdateFields) (string, error)
	Cancel(ctx context.Context, eventID string) error
}

// ContactCreator registers a proposed contact and returns its new id.
type ContactCreator interface {
	CreateContact(ctx context.Context, proposed directory.ProposedContact) (string, error)
}

// Service implements the boundary operations. It holds no per-request
// state; drafts live with the caller and are only preserved by never being
// mutated here on failure.
type Service struct {
	builder     DraftBuilder
	resolver    ConflictResolver
	locator     EventLocator
	gateway     CommitGateway
	contacts    ContactCreator
	metrics     *metrics.Metrics
	maxAttempts int
	logger      logging.Logger
}

// NewService wires the application service.
func NewService(builder DraftBuilder, resolver ConflictResolver, locator EventLocator, gateway CommitGateway, contacts ContactCreator, m *metrics.Metrics, maxAttempts int, logger logging.Logger) *Service {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	return &Service{
		builder:     builder,
		resolver:    resolver,
		locator:     locator,
		gateway:     gateway,
		contacts:    contacts,
		metrics:     m,
		maxAttempts: maxAttempts,
		logger:      logging.OrNop(logger),
	}
}

// Prepare builds a draft from dictated text. It never fails: collaborator
// outages degrade the draft with warnings.
func (s *Service) Prepare(ctx context.Context, req PrepareRequest) (*draft.EventDraft, error) {
	if req.Text == "" {
		return nil, errors.New("texte dicte manquant")
	}

	now := time.Now()
	if req.ReferenceNow != nil {
		now = *req.ReferenceNow
	}

	d := s.builder.Build(ctx, req.Text, now)
	if s.metrics != nil {
		s.metrics.ObservePrepare(len(d.Warnings))
	}
	s.logger.Info("draft prepared: intent=%s participants=%d warnings=%d", d.Intent, len(d.Participants), len(d.Warnings))
	return d, nil
}

// Confirm commits a confirmed draft. Unless skipped, the availability
// search runs first; an exhausted search returns a conflict outcome with
// the next untried slot, and nothing is committed. A successful search may
// land on a later slot than requested; the commit uses the found slot.
func (s *Service) Confirm(ctx context.Context, req ConfirmRequest) (ConfirmOutcome, error) {
	if err := req.validate(); err != nil {
		return ConfirmOutcome{}, err
	}

	participantIDs, err := s.registerProposedContacts(ctx, req)
	if err != nil {
		s.observeCommit("create", false)
		return ConfirmOutcome{}, err
	}

	start, stop := req.Event.Start, req.Event.Stop
	if !req.SkipAvailabilityCheck {
		result := s.resolver.Resolve(ctx, participantIDs, start, stop, s.maxAttempts)
		if s.metrics != nil {
			s.metrics.ObserveAvailability(result.Attempts)
		}
		if !result.Success {
			s.logger.Info("availability exhausted after %d attempt(s)", result.Attempts)
			return ConfirmOutcome{Conflict: &Conflict{
				SuggestionStart: result.FinalStart,
				SuggestionStop:  result.FinalStop,
				Attempts:        result.Attempts,
				Message:         result.Message,
			}}, nil
		}
		start, stop = result.FinalStart, result.FinalStop
	}

	eventID, err := s.gateway.Create(ctx, calendar.Event{
		Title:          req.Event.Title,
		Start:          start,
		Stop:           stop,
		Location:       req.Event.Location,
		ParticipantIDs: participantIDs,
	})
	s.observeCommit("create", err == nil)
	if err != nil {
		return ConfirmOutcome{}, err
	}

	s.logger.Info("event committed: id=%s start=%s", eventID, start.Format(time.RFC3339))
	return ConfirmOutcome{Committed: &ConfirmResult{
		EventID: eventID,
		Start:   start,
		Stop:    stop,
		Summary: fmt.Sprintf("rendez-vous confirme le %s de %s a %s", start.Format("02/01/2006"), start.Format("15:04"), stop.Format("15:04")),
	}}, nil
}

// Update locates the target event and applies the partial update. A
// locate failure leaves the caller's draft untouched.
func (s *Service) Update(ctx context.Context, req UpdateRequest) (string, error) {
	eventID, err := s.locator.Locate(ctx, req.EventID, req.matchQuery())
	if err != nil {
		return "", err
	}

	id, err := s.gateway.Update(ctx, eventID, req.Fields)
	s.observeCommit("update", err == nil)
	if err != nil {
		return "", err
	}
	s.logger.Info("event updated: id=%s", id)
	return id, nil
}

// Cancel locates the target event and deletes it.
func (s *Service) Cancel(ctx context.Context, req CancelRequest) (string, error) {
	eventID, err := s.locator.Locate(ctx, req.EventID, req.matchQuery())
	if err != nil {
		return "", err
	}

	err = s.gateway.Cancel(ctx, eventID)
	s.observeCommit("cancel", err == nil)
	if err != nil {
		return "", err
	}
	s.logger.Info("event cancelled: id=%s", eventID)
	return eventID, nil
}

// registerProposedContacts creates accepted contact proposals and returns
// the full participant id list. Any creation failure aborts the confirm
// before the calendar is touched.
func (s *Service) registerProposedContacts(ctx context.Context, req ConfirmRequest) ([]string, error) {
	ids := append([]string(nil), req.Event.ParticipantIDs...)
	for _, proposed := range req.ProposedContacts {
		if proposed.Name == "" {
			continue
		}
		id, err := s.contacts.CreateContact(ctx, proposed)
		if err != nil {
			return nil, fmt.Errorf("creation du contact %q: %w", proposed.Name, err)
		}
		s.logger.Info("contact created: id=%s name=%s", id, proposed.Name)
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *Service) observeCommit(operation string, success bool) {
	if s.metrics != nil {
		s.metrics.ObserveCommit(operation, success)
	}
}
