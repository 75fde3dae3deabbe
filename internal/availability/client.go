// Package availability checks a candidate time window against the
// participants' busy state and searches for the next free slot under a
// bounded retry policy.
package availability

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"careagenda/internal/httpclient"
	"careagenda/internal/logging"
)

// BusyChecker is the external availability collaborator.
type BusyChecker interface {
	IsBusy(ctx context.Context, participantIDs []string, start, stop time.Time) (bool, error)
}

// Client queries the external availability service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     logging.Logger
}

// ClientConfig configures the availability client.
type ClientConfig struct {
	BaseURL string
	Timeout time.Duration
}

// NewClient creates an availability client.
func NewClient(config ClientConfig, logger logging.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		httpClient: httpclient.New(config.Timeout, logger),
		logger:     logging.OrNop(logger),
	}
}

type busyRequest struct {
	ParticipantIDs []string  `json:"participantIds"`
	Start          time.Time `json:"start"`
	Stop           time.Time `json:"stop"`
}

type busyResponse struct {
	Busy      *bool `json:"busy,omitempty"`
	Available *bool `json:"available,omitempty"`
}

// IsBusy reports whether any participant has a commitment overlapping the
// window. The service answers either {"busy": b} or {"available": a};
// both shapes are accepted.
func (c *Client) IsBusy(ctx context.Context, participantIDs []string, start, stop time.Time) (bool, error) {
	payload, err := json.Marshal(busyRequest{ParticipantIDs: participantIDs, Start: start, Stop: stop})
	if err != nil {
		return false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return false, fmt.Errorf("availability query: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var decoded busyResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return false, fmt.Errorf("decode availability response: %w", err)
	}
	switch {
	case decoded.Busy != nil:
		return *decoded.Busy, nil
	case decoded.Available != nil:
		return !*decoded.Available, nil
	default:
		return false, fmt.Errorf("availability response carries neither busy nor available")
	}
}
