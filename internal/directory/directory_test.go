package directory

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

func TestIndexDropsInvalidAndDuplicateRecords(t *testing.T) {
	idx := NewIndex([]ContactRecord{
		{ID: "1", Name: "Jean Dupont"},
		{ID: "", Name: "Sans ID"},
		{ID: "2", Name: ""},
		{ID: "1", Name: "Jean Dupont (doublon)"},
		{ID: "3", Name: "Marie Martin"},
	})

	assert.Equal(t, 2, idx.Len())
	rec, ok := idx.ByID("1")
	require.True(t, ok)
	assert.Equal(t, "Jean Dupont", rec.Name)
	_, ok = idx.ByID("2")
	assert.False(t, ok)
}

func TestFetchBuildsSnapshot(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		_, _ = w.Write([]byte(`[{"id":"1","name":"Jean Dupont","email":"jean@example.org"}]`))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{DirectoryURL: server.URL, Timeout: time.Second}, logging.Nop())
	idx, err := client.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, idx.Len())
}

func TestFetchFailureIsTyped(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(ClientConfig{DirectoryURL: server.URL, Timeout: time.Second}, logging.Nop())
	_, err := client.Fetch(context.Background())
	require.Error(t, err)

	var target *agendaerrors.DirectoryUnavailableError
	assert.ErrorAs(t, err, &target)
}

func TestCreateContactReturnsID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		_, _ = w.Write([]byte(`{"id":"42"}`))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{ContactsURL: server.URL, Timeout: time.Second}, logging.Nop())
	id, err := client.CreateContact(context.Background(), ProposedContact{Name: "Paul Nouveau"})
	require.NoError(t, err)
	assert.Equal(t, "42", id)
}
