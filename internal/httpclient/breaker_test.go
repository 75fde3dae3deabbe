package httpclient

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"careagenda/internal/agendaerrors"
	"careagenda/internal/logging"
)

func TestBreakerOpensOnServerErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := New(time.Second, logging.Nop())
	client.Transport = WrapTransportWithCircuitBreaker(client.Transport, "test", agendaerrors.CircuitBreakerConfig{
		FailureThreshold: 2,
		SuccessThreshold: 1,
		Timeout:          time.Minute,
	})

	for i := 0; i < 2; i++ {
		resp, err := client.Get(server.URL)
		require.NoError(t, err)
		_ = resp.Body.Close()
	}

	_, err := client.Get(server.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "circuit breaker")
}

func TestBreakerStaysClosedOnSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewWithCircuitBreaker(time.Second, logging.Nop(), "test")
	for i := 0; i < 10; i++ {
		resp, err := client.Get(server.URL)
		require.NoError(t, err)
		_ = resp.Body.Close()
	}
}
