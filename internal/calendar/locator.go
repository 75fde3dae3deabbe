package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"careagenda/internal/agendaerrors"
	"careagenda/internal/httpclient"
	"careagenda/internal/logging"
)

// Locator resolves the target event of an update or cancel. An explicit
// event id is used as-is; otherwise the external "find by original time and
// participants" lookup runs. No id, no match, or an ambiguous match is a
// fatal EventNotFound for the operation — the engine does not attempt
// further disambiguation here.
type Locator struct {
	baseURL    string
	httpClient *http.Client
	logger     logging.Logger
}

// LocatorConfig configures the event locator.
type LocatorConfig struct {
	BaseURL string
	Timeout time.Duration
}

// NewLocator creates an event locator.
func NewLocator(config LocatorConfig, logger logging.Logger) *Locator {
	return &Locator{
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		httpClient: httpclient.New(config.Timeout, logger),
		logger:     logging.OrNop(logger),
	}
}

type foundEvent struct {
	ID string `json:"id"`
}

// Locate returns the id of the event an update/cancel targets.
func (l *Locator) Locate(ctx context.Context, eventID string, query *MatchQuery) (string, error) {
	if eventID != "" {
		return eventID, nil
	}
	if query == nil || query.OriginalStart.IsZero() {
		return "", &agendaerrors.EventNotFoundError{Reason: "ni identifiant ni critere de recherche fournis"}
	}

	payload, err := json.Marshal(query)
	if err != nil {
		return "", &agendaerrors.EventNotFoundError{Reason: fmt.Sprintf("requete invalide: %v", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.baseURL+"/events/find", bytes.NewReader(payload))
	if err != nil {
		return "", &agendaerrors.EventNotFoundError{Reason: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return "", &agendaerrors.EventNotFoundError{Reason: fmt.Sprintf("recherche indisponible: %v", err)}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", &agendaerrors.EventNotFoundError{
			Reason: fmt.Sprintf("recherche: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
		}
	}

	var matches []foundEvent
	if err := json.NewDecoder(resp.Body).Decode(&matches); err != nil {
		return "", &agendaerrors.EventNotFoundError{Reason: fmt.Sprintf("reponse illisible: %v", err)}
	}

	switch len(matches) {
	case 1:
		l.logger.Debug("event located: %s", matches[0].ID)
		return matches[0].ID, nil
	case 0:
		return "", &agendaerrors.EventNotFoundError{Reason: "aucun evenement ne correspond aux criteres"}
	default:
		return "", &agendaerrors.EventNotFoundError{Reason: fmt.Sprintf("%d evenements correspondent, cible ambigue", len(matches))}
	}
}
