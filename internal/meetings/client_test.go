package meetings_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/navikt/meetingsview/internal/config"
	"github.com/navikt/meetingsview/internal/meetings"
	"github.com/navikt/meetingsview/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(url string) *meetings.Client {
	return meetings.NewClient(config.SourceConfig{URL: url, Timeout: 5 * time.Second}, nil)
}

func TestListMeetings(t *testing.T) {
	var gotMethod, gotAccept, gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotAccept = r.Header.Get("Accept")
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id":1,"topic":"Sync","date":"2024-01-01","summary":"ok"}]`))
	}))
	defer server.Close()

	client := newTestClient(server.URL + "/api/meetings/")
	assert.Equal(t, server.URL+"/api/meetings/", client.URL())

	result, err := client.ListMeetings(context.Background())
	require.NoError(t, err)

	assert.Equal(t, http.MethodGet, gotMethod)
	assert.Equal(t, "application/json", gotAccept)
	assert.Empty(t, gotQuery)
	assert.Equal(t, []models.Meeting{{ID: "1", Topic: "Sync", Date: "2024-01-01", Summary: "ok"}}, result)
}

func TestListMeetings_StatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).ListMeetings(context.Background())

	var statusErr *meetings.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.StatusCode)
	assert.Contains(t, statusErr.Body, "database unavailable")
}

func TestListMeetings_ParseError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"detail":"not a list"}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).ListMeetings(context.Background())

	var parseErr *models.ParseError
	assert.True(t, errors.As(err, &parseErr))
}

func TestListMeetings_TransportError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := newTestClient(url).ListMeetings(context.Background())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to make request")
}

func TestListMeetings_Canceled(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	_, err := newTestClient(server.URL).ListMeetings(ctx)
	assert.True(t, errors.Is(err, context.Canceled), "expected context.Canceled, got %v", err)
}
