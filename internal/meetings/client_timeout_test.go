package meetings

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/navikt/meetingsview/internal/config"
	"github.com/navikt/meetingsview/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newStalledServer never answers; handlers return once the client goes away
func newStalledServer(t *testing.T) *httptest.Server {
	t.Helper()

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})
	return srv
}

func TestListMeetings_Timeout(t *testing.T) {
	t.Run("client timeout bounds the request", func(t *testing.T) {
		srv := newStalledServer(t)
		client := NewClient(config.SourceConfig{URL: srv.URL, Timeout: 100 * time.Millisecond}, nil)

		start := time.Now()
		result, err := client.ListMeetings(context.Background())
		elapsed := time.Since(start)

		require.Error(t, err)
		assert.Nil(t, result)
		assert.Less(t, elapsed, 2*time.Second)
		assert.GreaterOrEqual(t, elapsed, 100*time.Millisecond)
		assert.False(t, errors.Is(err, context.Canceled))

		var netErr net.Error
		require.True(t, errors.As(err, &netErr))
		assert.True(t, netErr.Timeout())
		assert.Equal(t, metrics.OutcomeTransport, outcomeOf(err))
	})

	t.Run("zero timeout waits for the context", func(t *testing.T) {
		srv := newStalledServer(t)
		client := NewClient(config.SourceConfig{URL: srv.URL, Timeout: 0}, nil)

		ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
		defer cancel()

		start := time.Now()
		_, err := client.ListMeetings(ctx)
		elapsed := time.Since(start)

		require.Error(t, err)
		assert.GreaterOrEqual(t, elapsed, 150*time.Millisecond)
		assert.Less(t, elapsed, 2*time.Second)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Equal(t, metrics.OutcomeTransport, outcomeOf(err))
	})
}
