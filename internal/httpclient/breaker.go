package httpclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"careagenda/internal/agendaerrors"
	"careagenda/internal/logging"
)

type circuitBreakerRoundTripper struct {
	base    http.RoundTripper
	breaker *agendaerrors.CircuitBreaker
}

// NewWithCircuitBreaker builds an HTTP client guarded by a circuit breaker.
func NewWithCircuitBreaker(timeout time.Duration, logger logging.Logger, name string) *http.Client {
	client := New(timeout, logger)
	client.Transport = WrapTransportWithCircuitBreaker(client.Transport, name, agendaerrors.DefaultCircuitBreakerConfig())
	return client
}

// WrapTransportWithCircuitBreaker wraps a transport with circuit breaker protection.
func WrapTransportWithCircuitBreaker(base http.RoundTripper, name string, config agendaerrors.CircuitBreakerConfig) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	if name == "" {
		name = "http-client"
	}
	return &circuitBreakerRoundTripper{
		base:    base,
		breaker: agendaerrors.NewCircuitBreaker(name, config),
	}
}

func (t *circuitBreakerRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if req == nil {
		return nil, fmt.Errorf("nil request")
	}
	if err := t.breaker.Allow(); err != nil {
		return nil, err
	}
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		// Caller cancellation is not a collaborator failure.
		if errors.Is(err, context.Canceled) {
			t.breaker.Mark(nil)
			return nil, err
		}
		t.breaker.Mark(err)
		return nil, err
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		t.breaker.Mark(fmt.Errorf("status %d", resp.StatusCode))
	} else {
		t.breaker.Mark(nil)
	}
	return resp, nil
}
