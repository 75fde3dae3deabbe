package extract

import (
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

// Client calls the external extraction service with the dictated text and
// returns its raw best-effort output. Parsing is the payload codec's job.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     logging.Logger
}

// ClientConfig configures the extraction client.
type ClientConfig struct {
	BaseURL string
	Timeout time.Duration
}

// NewClient creates an extraction client with a breaker-guarded transport.
func NewClient(config ClientConfig, logger logging.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		httpClient: httpclient.NewWithCircuitBreaker(config.Timeout, logger, "extraction"),
		logger:     logging.OrNop(logger),
	}
}

type extractRequest struct {
	Text string `json:"text"`
}

// Extract posts the dictated text and returns the raw response body as a
// tagged payload. Any failure is an ExtractionUnavailableError; the caller
// degrades to an empty draft.
func (c *Client) Extract(ctx context.Context, text string) (Payload, error) {
	payload, err := json.Marshal(extractRequest{Text: text})
	if err != nil {
		return Payload{}, &agendaerrors.ExtractionUnavailableError{Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, strings.NewReader(string(payload)))
	if err != nil {
		return Payload{}, &agendaerrors.ExtractionUnavailableError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Payload{}, &agendaerrors.ExtractionUnavailableError{Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Payload{}, &agendaerrors.ExtractionUnavailableError{Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Payload{}, &agendaerrors.ExtractionUnavailableError{
			Err: fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
		}
	}

	decoded := Decode(string(body))
	c.logger.Debug("extraction payload kind=%s bytes=%d", decoded.Kind, len(body))
	return decoded, nil
}
