// Package meetings provides the client for the meetings collection endpoint
package meetings

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/navikt/meetingsview/internal/config"
	"github.com/navikt/meetingsview/internal/logger"
	"github.com/navikt/meetingsview/internal/metrics"
	"github.com/navikt/meetingsview/internal/models"
)

// maxBodySize caps how much of a response is read
const maxBodySize = 10 << 20

// StatusError is returned when the endpoint answers with a non-2xx status
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("meetings API error (status %d): %s", e.StatusCode, e.Body)
}

// Client fetches the meetings collection
type Client struct {
	url        string
	httpClient *http.Client
	log        *slog.Logger
}

// NewClient creates a client for the configured collection endpoint.
// A zero timeout leaves the request bounded only by its context.
func NewClient(cfg config.SourceConfig, log *slog.Logger) *Client {
	if log == nil {
		log = logger.Discard()
	}
	return &Client{
		url: cfg.URL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		log: log,
	}
}

// URL returns the collection endpoint
func (c *Client) URL() string {
	return c.url
}

// ListMeetings issues one GET to the collection endpoint and decodes the body.
// Cancelling ctx aborts the request.
func (c *Client) ListMeetings(ctx context.Context) ([]models.Meeting, error) {
	start := time.Now()
	meetings, err := c.listMeetings(ctx)
	elapsed := time.Since(start)

	outcome := outcomeOf(err)
	metrics.RecordFetch(outcome, elapsed.Seconds())
	c.log.Debug("meetings fetch finished",
		"url", logger.RedactURL(c.url),
		"outcome", outcome,
		"count", len(meetings),
		"latency_ms", elapsed.Milliseconds(),
	)

	return meetings, err
}

func (c *Client) listMeetings(ctx context.Context) ([]models.Meeting, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			Body:       logger.SanitizeLogString(string(body)),
		}
	}

	return models.DecodeMeetings(body)
}

func outcomeOf(err error) string {
	var parseErr *models.ParseError
	var statusErr *StatusError

	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, context.Canceled):
		return metrics.OutcomeCanceled
	case errors.As(err, &parseErr):
		return metrics.OutcomeParseError
	case errors.As(err, &statusErr):
		return metrics.OutcomeStatusError
	default:
		return metrics.OutcomeTransport
	}
}
