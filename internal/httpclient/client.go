// Package httpclient builds the outbound HTTP clients used to reach the
// engine's collaborators (extractor, directory, availability, calendar).
package httpclient

import (
	"net/http"
	"time"

	"careagenda/internal/logging"
)

// New returns an HTTP client with the given timeout and a transport that
// logs request latency through logger.
func New(timeout time.Duration, logger logging.Logger) *http.Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &loggingRoundTripper{
			base:   http.DefaultTransport,
			logger: logging.OrNop(logger),
		},
	}
}

type loggingRoundTripper struct {
	base   http.RoundTripper
	logger logging.Logger
}

func (t *loggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.base.RoundTrip(req)
	elapsed := time.Since(start)
	if err != nil {
		t.logger.Debug("%s %s failed after %s: %v", req.Method, req.URL.Path, elapsed, err)
		return nil, err
	}
	t.logger.Debug("%s %s -> %d in %s", req.Method, req.URL.Path, resp.StatusCode, elapsed)
	return resp, nil
}
