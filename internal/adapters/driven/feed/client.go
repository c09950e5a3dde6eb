// Package feed implements the remote announcement feed client: a paginated
// HTTP JSON consumer with bounded retry, proactive throttling and
// per-request correlation IDs.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/rostra-labs/rostra-cli/internal/core/domain"
	"github.com/rostra-labs/rostra-cli/internal/core/ports/driven"
	"github.com/rostra-labs/rostra-cli/internal/logger"
)

const (
	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// MaxRetries is the maximum number of retries for transient errors.
	MaxRetries = 3

	// RetryDelay is the initial delay between retries.
	RetryDelay = time.Second

	// DefaultPageSize is the number of records requested per page.
	DefaultPageSize = 100

	// ProactiveRate is the proactive throttle rate in requests per second.
	ProactiveRate = 2.0

	// HeaderRequestID carries the correlation id for each request.
	HeaderRequestID = "X-Request-ID"
)

// Client fetches raw records from the feed endpoint.
type Client struct {
	baseURL    string
	http       *http.Client
	limiter    *rate.Limiter
	pageSize   int
	retryDelay time.Duration
}

var _ driven.FeedClient = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client. Useful for testing.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithPageSize overrides the per-page record count.
func WithPageSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// WithRetryDelay overrides the initial retry delay. Useful for testing.
func WithRetryDelay(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.retryDelay = d
		}
	}
}

// NewClient creates a feed client for the given endpoint URL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		http:       &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(ProactiveRate), 1),
		pageSize:   DefaultPageSize,
		retryDelay: RetryDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// envelope is the feed's page wrapper.
type envelope struct {
	Count *int         `json:"count,omitempty"`
	Value []wireRecord `json:"value"`
}

// wireRecord is one record as serialised by the feed.
type wireRecord struct {
	ID             string             `json:"id"`
	Title          string             `json:"title"`
	Body           string             `json:"body"`
	Status         string             `json:"status"`
	Locale         string             `json:"locale"`
	Tags           []string           `json:"tags"`
	Categories     []string           `json:"categories"`
	Products       []string           `json:"products"`
	Availabilities []wireAvailability `json:"availabilities"`
	Metadata       map[string]any     `json:"metadata"`
	Created        time.Time          `json:"created"`
	Modified       time.Time          `json:"modified"`
}

// wireAvailability is one availability milestone; year and month are
// omitted for undated entries.
type wireAvailability struct {
	Ring  string `json:"ring"`
	Year  int    `json:"year,omitempty"`
	Month int    `json:"month,omitempty"`
}

// Fetch returns all records with modified strictly after modifiedSince,
// walking the feed's skip/top pages until a short page. Pages are fetched
// sequentially so the result preserves feed order.
func (c *Client) Fetch(
	ctx context.Context, modifiedSince *time.Time, includeCount bool,
) ([]domain.RawUpdate, error) {
	var all []domain.RawUpdate
	skip := 0

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		env, err := c.fetchPage(ctx, modifiedSince, skip, includeCount && skip == 0)
		if err != nil {
			return nil, err
		}

		if env.Count != nil {
			logger.Info("Feed reports %d records total", *env.Count)
		}

		for i := range env.Value {
			all = append(all, toRawUpdate(&env.Value[i]))
		}

		if len(env.Value) < c.pageSize {
			break
		}
		skip += c.pageSize
	}

	logger.Debug("Fetched %d records from feed", len(all))
	return all, nil
}

// fetchPage requests one page, retrying transient failures with a growing
// delay. The last error is returned once the retry budget is spent.
func (c *Client) fetchPage(
	ctx context.Context, modifiedSince *time.Time, skip int, includeCount bool,
) (*envelope, error) {
	var lastErr error

	for attempt := 0; attempt <= MaxRetries; attempt++ {
		if attempt > 0 {
			delay := c.retryDelay << (attempt - 1)
			logger.Warn("Feed fetch failed, retrying in %s: %v", delay, lastErr)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		env, err := c.doRequest(ctx, modifiedSince, skip, includeCount)
		if err == nil {
			return env, nil
		}
		if !IsRetryable(err) {
			return nil, err
		}
		lastErr = err
	}

	return nil, lastErr
}

// doRequest performs a single page request.
func (c *Client) doRequest(
	ctx context.Context, modifiedSince *time.Time, skip int, includeCount bool,
) (*envelope, error) {
	reqURL, err := c.pageURL(modifiedSince, skip, includeCount)
	if err != nil {
		return nil, fmt.Errorf("building feed URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building feed request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set(HeaderRequestID, requestID)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{URL: reqURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &ResponseError{
			StatusCode: resp.StatusCode,
			URL:        reqURL,
			RequestID:  requestID,
		}
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, &ResponseError{
			StatusCode: resp.StatusCode,
			URL:        reqURL,
			RequestID:  requestID,
		}
	}
	return &env, nil
}

// pageURL builds the query URL for one page.
func (c *Client) pageURL(modifiedSince *time.Time, skip int, includeCount bool) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", err
	}

	q := u.Query()
	q.Set("skip", strconv.Itoa(skip))
	q.Set("top", strconv.Itoa(c.pageSize))
	if modifiedSince != nil {
		q.Set("modifiedSince", modifiedSince.UTC().Format(time.RFC3339))
	}
	if includeCount {
		q.Set("includeCount", "true")
	}
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// toRawUpdate maps a wire record onto the domain shape.
func toRawUpdate(w *wireRecord) domain.RawUpdate {
	availabilities := make([]domain.RawAvailability, 0, len(w.Availabilities))
	for _, a := range w.Availabilities {
		availabilities = append(availabilities, domain.RawAvailability{
			Ring:  a.Ring,
			Year:  a.Year,
			Month: time.Month(a.Month),
		})
	}

	return domain.RawUpdate{
		ID:             w.ID,
		Title:          w.Title,
		Body:           w.Body,
		Status:         w.Status,
		Locale:         w.Locale,
		Tags:           w.Tags,
		Categories:     w.Categories,
		Products:       w.Products,
		Availabilities: availabilities,
		Metadata:       w.Metadata,
		CreatedAt:      w.Created,
		ModifiedAt:     w.Modified,
	}
}
