package calendar

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"careagenda/internal/agendaerrors"
	"careagenda/internal/logging"
)

var eventStart = time.Date(2025, time.March, 12, 14, 0, 0, 0, time.UTC)

func newGatewayAgainst(t *testing.T, handler http.HandlerFunc) *Gateway {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewGateway(GatewayConfig{BaseURL: server.URL, Timeout: time.Second}, logging.Nop())
}

func TestCreateReturnsID(t *testing.T) {
	var calls int
	gateway := newGatewayAgainst(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "/events", r.URL.Path)

		var event Event
		require.NoError(t, json.NewDecoder(r.Body).Decode(&event))
		assert.Equal(t, []string{"1"}, event.ParticipantIDs)

		_, _ = w.Write([]byte(`{"id":"ev-7"}`))
	})

	id, err := gateway.Create(context.Background(), Event{
		Title:          "Visite Jean Dupont",
		Start:          eventStart,
		Stop:           eventStart.Add(30 * time.Minute),
		ParticipantIDs: []string{"1"},
	})
	require.NoError(t, err)
	assert.Equal(t, "ev-7", id)
	assert.Equal(t, 1, calls, "exactly one external call")
}

func TestCommitFailureIsTypedAndNotRetried(t *testing.T) {
	var calls int
	gateway := newGatewayAgainst(t, func(w http.ResponseWriter, _ *http.Request) {
		calls++
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	})

	_, err := gateway.Create(context.Background(), Event{Start: eventStart, Stop: eventStart.Add(time.Hour)})
	require.Error(t, err)

	var failure *agendaerrors.CommitFailureError
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, http.StatusTooManyRequests, failure.StatusCode)
	assert.Contains(t, failure.Body, "quota exceeded")
	assert.Equal(t, 1, calls, "no automatic retry")
}

func TestUpdateHitsUpdateRoute(t *testing.T) {
	gateway := newGatewayAgainst(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/events/ev-7/update", r.URL.Path)
		_, _ = w.Write([]byte(`{"id":"ev-7"}`))
	})

	title := "Visite reportée"
	id, err := gateway.Update(context.Background(), "ev-7", UpdateFields{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "ev-7", id)
}

func TestCancelHitsDeleteRoute(t *testing.T) {
	gateway := newGatewayAgainst(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/events/ev-7/delete", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	})

	require.NoError(t, gateway.Cancel(context.Background(), "ev-7"))
}
