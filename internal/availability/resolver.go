package availability

import (
	"context"
	"fmt"
	"time"

	"careagenda/internal/agendaerrors"
	"careagenda/internal/logging"
)

// Result is the outcome of one conflict search.
type Result struct {
	RequestedStart time.Time `json:"requestedStart"`
	RequestedStop  time.Time `json:"requestedStop"`
	FinalStart     time.Time `json:"finalStart"`
	FinalStop      time.Time `json:"finalStop"`
	Attempts       int       `json:"attempts"`
	Success        bool      `json:"success"`
	Message        string    `json:"message"`
}

// Resolver runs the bounded CHECK / SEARCH_NEXT loop against a BusyChecker.
type Resolver struct {
	checker     BusyChecker
	callTimeout time.Duration
	logger      logging.Logger
}

// NewResolver wires the conflict-search resolver. callTimeout bounds each
// individual busy query.
func NewResolver(checker BusyChecker, callTimeout time.Duration, logger logging.Logger) *Resolver {
	if callTimeout <= 0 {
		callTimeout = 3 * time.Second
	}
	return &Resolver{
		checker:     checker,
		callTimeout: callTimeout,
		logger:      logging.OrNop(logger),
	}
}

// Resolve searches for a free slot starting from the requested window.
//
// Step policy: on conflict the whole window advances by its own duration
// (next start = previous stop, duration preserved), so candidate slots tile
// forward without gaps and the search is fully deterministic.
//
// A timed-out busy query counts as a conflict and consumes one attempt.
// Empty participantIDs short-circuits to success with zero attempts.
func (r *Resolver) Resolve(ctx context.Context, participantIDs []string, start, stop time.Time, maxAttempts int) Result {
	result := Result{
		RequestedStart: start,
		RequestedStop:  stop,
		FinalStart:     start,
		FinalStop:      stop,
	}

	if len(participantIDs) == 0 {
		result.Success = true
		result.Message = "aucun participant a verifier"
		return result
	}
	if maxAttempts <= 0 {
		maxAttempts = 1
	}

	duration := stop.Sub(start)
	windowStart, windowStop := start, stop

	for result.Attempts < maxAttempts {
		if ctx.Err() != nil {
			result.Message = "recherche interrompue: delai global depasse"
			result.FinalStart, result.FinalStop = windowStart, windowStop
			return result
		}

		result.Attempts++
		busy, err := r.check(ctx, participantIDs, windowStart, windowStop)
		switch {
		case err != nil && agendaerrors.IsTimeout(err):
			// Counts as a conflict for retry accounting.
			r.logger.Warn("availability check timed out on attempt %d", result.Attempts)
		case err != nil:
			r.logger.Warn("availability check failed on attempt %d: %v", result.Attempts, err)
		case !busy:
			result.Success = true
			result.FinalStart, result.FinalStop = windowStart, windowStop
			result.Message = fmt.Sprintf("creneau libre trouve en %d tentative(s)", result.Attempts)
			return result
		}

		windowStart = windowStop
		windowStop = windowStart.Add(duration)
	}

	// Exhausted: suggest the next untried slot after the last conflict.
	result.FinalStart, result.FinalStop = windowStart, windowStop
	result.Message = fmt.Sprintf("aucun creneau libre apres %d tentative(s); prochain creneau propose non verifie", result.Attempts)
	return result
}

func (r *Resolver) check(ctx context.Context, participantIDs []string, start, stop time.Time) (bool, error) {
	callCtx, cancel := context.WithTimeout(ctx, r.callTimeout)
	defer cancel()
	return r.checker.IsBusy(callCtx, participantIDs, start, stop)
}
