// Package fetch is the rate-limited JSON GET helper shared by the
// location, weather and parks clients.
package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/teilomillet/trailhead/utils"
	"golang.org/x/time/rate"
)

// maxErrorBody caps how much of a failed response is kept in a StatusError.
const maxErrorBody = 512

// StatusError is returned when the server answers with anything but 200.
type StatusError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d", e.URL, e.StatusCode)
}

// Client issues GET requests, waiting on a shared limiter before each one.
type Client struct {
	http        *http.Client
	rateLimiter *rate.Limiter
	logger      utils.Logger
}

// NewClient returns a Client allowing perSecond requests with the given burst.
// A non-positive perSecond disables limiting.
func NewClient(timeout time.Duration, perSecond float64, burst int, logger utils.Logger) *Client {
	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}
	if burst < 1 {
		burst = 1
	}
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	return &Client{
		http:        &http.Client{Timeout: timeout},
		rateLimiter: rate.NewLimiter(limit, burst),
		logger:      logger,
	}
}

// GetJSON fetches endpoint with query and headers and decodes the JSON body into out.
func (c *Client) GetJSON(ctx context.Context, endpoint string, query url.Values, headers map[string]string, out any) error {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter error: %w", err)
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
	}
	if len(query) > 0 {
		q := u.Query()
		for k, vs := range query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	c.logger.Debug("Fetching", "host", u.Host, "path", u.Path)
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		// The URL may carry an API key; report it without the query.
		u.RawQuery = ""
		return &StatusError{URL: u.String(), StatusCode: resp.StatusCode, Body: string(body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", u.Host, err)
	}
	return nil
}
