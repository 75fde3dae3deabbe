package directory

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

// Client talks to the external directory and contact-creation services.
type Client struct {
	directoryURL string
	contactsURL  string
	httpClient   *http.Client
	logger       logging.Logger
}

// ClientConfig configures the directory client.
type ClientConfig struct {
	DirectoryURL string
	ContactsURL  string
	Timeout      time.Duration
}

// NewClient creates a directory client with a breaker-guarded transport.
func NewClient(config ClientConfig, logger logging.Logger) *Client {
	return &Client{
		directoryURL: strings.TrimRight(config.DirectoryURL, "/"),
		contactsURL:  strings.TrimRight(config.ContactsURL, "/"),
		httpClient:   httpclient.NewWithCircuitBreaker(config.Timeout, logger, "directory"),
		logger:       logging.OrNop(logger),
	}
}

// Fetch retrieves the contact list and builds a request-scoped snapshot.
func (c *Client) Fetch(ctx context.Context) (*Index, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.directoryURL, nil)
	if err != nil {
		return nil, &agendaerrors.DirectoryUnavailableError{Err: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &agendaerrors.DirectoryUnavailableError{Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &agendaerrors.DirectoryUnavailableError{
			Err: fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
		}
	}

	var records []ContactRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, &agendaerrors.DirectoryUnavailableError{Err: fmt.Errorf("decode contacts: %w", err)}
	}

	c.logger.Debug("directory snapshot: %d contacts", len(records))
	return NewIndex(records), nil
}

// CreateContact registers a proposed contact and returns its new id.
func (c *Client) CreateContact(ctx context.Context, proposed ProposedContact) (string, error) {
	payload, err := json.Marshal(proposed)
	if err != nil {
		return "", fmt.Errorf("encode contact: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.contactsURL, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("create contact: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("create contact: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", fmt.Errorf("decode contact id: %w", err)
	}
	if created.ID == "" {
		return "", fmt.Errorf("create contact: empty id in response")
	}
	return created.ID, nil
}
