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

// Gateway executes calendar mutations. Each operation is exactly one
// external call: the remote system's idempotency is not guaranteed, so
// nothing here retries — a failed commit surfaces as a typed error and
// manual retry is the caller's decision.
type Gateway struct {
	baseURL    string
	httpClient *http.Client
	logger     logging.Logger
}

// GatewayConfig configures the commit gateway.
type GatewayConfig struct {
	BaseURL string
	Timeout time.Duration
}

// NewGateway creates the commit gateway.
func NewGateway(config GatewayConfig, logger logging.Logger) *Gateway {
	return &Gateway{
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		httpClient: httpclient.New(config.Timeout, logger),
		logger:     logging.OrNop(logger),
	}
}

// Create creates an event and returns its id.
func (g *Gateway) Create(ctx context.Context, event Event) (string, error) {
	return g.mutate(ctx, "create", g.baseURL+"/events", event)
}

// Update applies a partial update to an existing event.
func (g *Gateway) Update(ctx context.Context, eventID string, fields UpdateFields) (string, error) {
	return g.mutate(ctx, "update", g.baseURL+"/events/"+eventID+"/update", fields)
}

// Cancel deletes an event.
func (g *Gateway) Cancel(ctx context.Context, eventID string) error {
	_, err := g.mutate(ctx, "cancel", g.baseURL+"/events/"+eventID+"/delete", struct{}{})
	return err
}

func (g *Gateway) mutate(ctx context.Context, operation, url string, payload any) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", &agendaerrors.CommitFailureError{Operation: operation, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", &agendaerrors.CommitFailureError{Operation: operation, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", &agendaerrors.CommitFailureError{Operation: operation, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		g.logger.Error("calendar %s failed: status %d", operation, resp.StatusCode)
		return "", &agendaerrors.CommitFailureError{
			Operation:  operation,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(respBody)),
		}
	}

	var decoded struct {
		ID string `json:"id"`
	}
	if len(respBody) > 0 {
		if err := json.Unmarshal(respBody, &decoded); err != nil {
			return "", &agendaerrors.CommitFailureError{Operation: operation, Err: fmt.Errorf("decode response: %w", err)}
		}
	}

	g.logger.Info("calendar %s committed: id=%s", operation, decoded.ID)
	return decoded.ID, nil
}
