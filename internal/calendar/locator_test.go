package calendar

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"careagenda/internal/agendaerrors"
	"careagenda/internal/logging"
)

func newLocatorAgainst(t *testing.T, handler http.HandlerFunc) *Locator {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewLocator(LocatorConfig{BaseURL: server.URL, Timeout: time.Second}, logging.Nop())
}

func TestLocateUsesExplicitIDWithoutLookup(t *testing.T) {
	locator := newLocatorAgainst(t, func(http.ResponseWriter, *http.Request) {
		t.Fatal("lookup must not be called when an id is supplied")
	})

	id, err := locator.Locate(context.Background(), "ev-3", nil)
	require.NoError(t, err)
	assert.Equal(t, "ev-3", id)
}

func TestLocateSingleMatch(t *testing.T) {
	locator := newLocatorAgainst(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/events/find", r.URL.Path)
		_, _ = w.Write([]byte(`[{"id":"ev-9"}]`))
	})

	id, err := locator.Locate(context.Background(), "", &MatchQuery{
		OriginalStart:  eventStart,
		ParticipantIDs: []string{"1"},
	})
	require.NoError(t, err)
	assert.Equal(t, "ev-9", id)
}

func TestLocateNoMatchIsEventNotFound(t *testing.T) {
	locator := newLocatorAgainst(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})

	_, err := locator.Locate(context.Background(), "", &MatchQuery{OriginalStart: eventStart})
	assert.True(t, agendaerrors.IsEventNotFound(err))
}

func TestLocateAmbiguousMatchIsEventNotFound(t *testing.T) {
	locator := newLocatorAgainst(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"id":"ev-1"},{"id":"ev-2"}]`))
	})

	_, err := locator.Locate(context.Background(), "", &MatchQuery{OriginalStart: eventStart})
	assert.True(t, agendaerrors.IsEventNotFound(err))
}

func TestLocateWithoutCriteriaIsEventNotFound(t *testing.T) {
	locator := newLocatorAgainst(t, func(http.ResponseWriter, *http.Request) {})

	_, err := locator.Locate(context.Background(), "", nil)
	assert.True(t, agendaerrors.IsEventNotFound(err))
}
