package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/mobil-koeln/tubeboard/internal/models"
)

const (
	defaultTimeout      = 10 * time.Second
	defaultProbeTimeout = time.Second
	defaultAttempts     = 2
)

// Cache interface for caching station metadata responses
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte) error
}

// Connectivity is the result of a network probe
type Connectivity int

const (
	Offline Connectivity = iota
	Online
)

func (c Connectivity) String() string {
	if c == Online {
		return "online"
	}
	return "offline"
}

// Client fetches JSON from the TfL API and the station-selection service
type Client struct {
	httpClient   *http.Client
	baseURL      string
	appID        string
	appKey       string
	attempts     int
	probeURL     string
	probeTimeout time.Duration
	cache        Cache
	logger       *zap.Logger
}

// ClientOption configures the Client
type ClientOption func(*Client)

// WithTimeout sets the HTTP client timeout
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBaseURL points the client at another TfL-compatible API
func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithCredentials sets the app_id and app_key sent with every TfL request
func WithCredentials(appID, appKey string) ClientOption {
	return func(c *Client) {
		c.appID = appID
		c.appKey = appKey
	}
}

// WithAttempts sets how many times a request is tried before giving up
func WithAttempts(n int) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.attempts = n
		}
	}
}

// WithProbeURL sets the endpoint used by Probe
func WithProbeURL(u string) ClientOption {
	return func(c *Client) {
		c.probeURL = u
	}
}

// WithProbeTimeout bounds the connectivity probe
func WithProbeTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.probeTimeout = d
		}
	}
}

// WithCache enables caching of station metadata with the provided cache
func WithCache(cache Cache) ClientOption {
	return func(c *Client) {
		c.cache = cache
	}
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient creates a new API client
func NewClient(opts ...ClientOption) (*Client, error) {
	c := &Client{
		httpClient:   &http.Client{Timeout: defaultTimeout},
		baseURL:      BaseURL,
		attempts:     defaultAttempts,
		probeURL:     DefaultProbeURL,
		probeTimeout: defaultProbeTimeout,
		logger:       zap.NewNop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if _, err := url.Parse(c.baseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	return c, nil
}

// FetchJSON requests endpoint with params and decodes the body into v.
// Relative endpoints are resolved against the TfL base URL and carry the
// credentials. An empty body is a success that leaves v untouched.
func (c *Client) FetchJSON(ctx context.Context, endpoint string, params url.Values, v any) error {
	return c.fetchJSON(ctx, endpoint, params, v, false)
}

func (c *Client) fetchJSON(ctx context.Context, endpoint string, params url.Values, v any, cacheable bool) error {
	reqURL, key := c.buildURL(endpoint, params)

	var body []byte
	if cacheable && c.cache != nil {
		if data, ok := c.cache.Get(key); ok {
			c.logger.Debug("cache hit", zap.String("endpoint", extractEndpoint(key)))
			body = data
		}
	}

	if body == nil {
		data, err := c.getWithRetry(ctx, reqURL)
		if err != nil {
			return err
		}
		body = data
		if cacheable && c.cache != nil && len(bytes.TrimSpace(body)) > 0 {
			if err := c.cache.Set(key, body); err != nil {
				c.logger.Warn("failed to write cache", zap.Error(err))
			}
		}
	}

	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to parse %s response: %w", extractEndpoint(reqURL), err)
	}
	return nil
}

// buildURL returns the request URL and a cache key without credentials
func (c *Client) buildURL(endpoint string, params url.Values) (string, string) {
	q := url.Values{}
	for k, vs := range params {
		q[k] = append([]string(nil), vs...)
	}

	base := endpoint
	tfl := !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://")
	if tfl {
		base = c.baseURL + endpoint
	}

	key := base
	if len(q) > 0 {
		key += "?" + q.Encode()
	}

	if tfl && c.appID != "" {
		q.Set("app_id", c.appID)
	}
	if tfl && c.appKey != "" {
		q.Set("app_key", c.appKey)
	}
	if len(q) == 0 {
		return base, key
	}
	return base + "?" + q.Encode(), key
}

// getWithRetry retries failed requests immediately up to the attempt bound
func (c *Client) getWithRetry(ctx context.Context, reqURL string) ([]byte, error) {
	endpoint := extractEndpoint(reqURL)
	attempt := 0

	op := func() ([]byte, error) {
		attempt++
		body, err := c.doRequest(ctx, reqURL)
		if err != nil && ctx.Err() != nil {
			return nil, backoff.Permanent(err)
		}
		return body, err
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(&backoff.ZeroBackOff{}, uint64(c.attempts-1)),
		ctx,
	)

	body, err := backoff.RetryNotifyWithData(op, policy, func(err error, _ time.Duration) {
		c.logger.Warn("upstream request failed, retrying",
			zap.String("endpoint", endpoint),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
	})
	if err != nil {
		return nil, &UpstreamError{Endpoint: endpoint, Attempts: attempt, Err: err}
	}
	return body, nil
}

// doRequest performs a single HTTP GET request
func (c *Client) doRequest(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %w", ErrTimeout, ctx.Err())
		}
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	c.logger.Debug("upstream response",
		zap.String("endpoint", extractEndpoint(reqURL)),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, NewAPIError(resp.StatusCode, resp.Status, extractEndpoint(reqURL))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, nil
}

// Probe classifies the network as online when the probe URL answers at all.
// Any HTTP status counts as online; only transport failures are offline.
func (c *Client) Probe(ctx context.Context) Connectivity {
	ctx, cancel := context.WithTimeout(ctx, c.probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.probeURL, nil)
	if err != nil {
		c.logger.Error("invalid probe URL", zap.String("url", c.probeURL), zap.Error(err))
		return Offline
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("probe failed", zap.Error(err))
		return Offline
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	_ = resp.Body.Close()
	return Online
}

// SearchStopPoints returns the best stop matching query in the given mode
func (c *Client) SearchStopPoints(ctx context.Context, query, mode string) (*models.StopPointSearchResponse, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrMissingField("query")
	}
	params := url.Values{}
	params.Set("query", query)
	if mode != "" {
		params.Set("modes", mode)
	}
	params.Set("maxResults", "1")

	var resp models.StopPointSearchResponse
	if err := c.fetchJSON(ctx, EndpointStopPointSearch, params, &resp, true); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetStopPoint fetches a stop point with its lines and children
func (c *Client) GetStopPoint(ctx context.Context, id string) (*models.StopPointResponse, error) {
	if id == "" {
		return nil, ErrMissingField("id")
	}

	var resp models.StopPointResponse
	if err := c.fetchJSON(ctx, EndpointStopPoint+url.PathEscape(id), nil, &resp, true); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetArrivals fetches arrival predictions for lines at a stop
func (c *Client) GetArrivals(ctx context.Context, lineIDs []string, stopID string, direction models.Direction) ([]models.ArrivalResponse, error) {
	if len(lineIDs) == 0 {
		return nil, ErrMissingField("lines")
	}
	if stopID == "" {
		return nil, ErrMissingField("stopId")
	}

	escaped := make([]string, len(lineIDs))
	for i, id := range lineIDs {
		escaped[i] = url.PathEscape(id)
	}
	endpoint := fmt.Sprintf(EndpointLineArrivals, strings.Join(escaped, ","), url.PathEscape(stopID))

	params := url.Values{}
	if direction != "" {
		params.Set("direction", string(direction))
	}

	var resp []models.ArrivalResponse
	if err := c.FetchJSON(ctx, endpoint, params, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// GetStationRequest reads the currently requested station from the
// station-selection service at sourceURL
func (c *Client) GetStationRequest(ctx context.Context, sourceURL string) (models.StationQuery, error) {
	if sourceURL == "" {
		return models.StationQuery{}, ErrMissingField("source_url")
	}

	var resp models.StationRequestResponse
	if err := c.FetchJSON(ctx, sourceURL, nil, &resp); err != nil {
		return models.StationQuery{}, err
	}
	return resp.ToStationQuery(), nil
}

// extractEndpoint extracts the endpoint path from a full URL
func extractEndpoint(fullURL string) string {
	u, err := url.Parse(fullURL)
	if err != nil {
		return fullURL
	}
	return u.Path
}
