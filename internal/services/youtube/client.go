package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultHTTPTimeout   = 15 * time.Second
	defaultMaxVideos     = 5
	defaultRetryAttempts = 3
	defaultRetryBase     = 500 * time.Millisecond
	defaultRPS           = 5.0
)

// Config captures the runtime settings for the YouTube Data API.
type Config struct {
	APIKey            string
	BaseURL           string
	TimeoutSeconds    int
	MaxVideos         int
	RequestsPerSecond float64
}

// Channel is the authoritative channel match for a search query.
type Channel struct {
	ID   string
	Name string
}

// Video is one upload returned by the recent-videos listing.
type Video struct {
	VideoID      string
	Title        string
	URL          string
	PublishedAt  string
	ThumbnailURL string
}

// Client wraps the YouTube Data API v3 search endpoint. Outbound calls are
// rate limited and transient failures are retried with backoff.
type Client struct {
	cfg        Config
	httpClient *http.Client
	limiter    *rate.Limiter

	retryMaxAttempts int
	retryBaseDelay   time.Duration
	sleeper          func(time.Duration)
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRetryMaxAttempts overrides the default retry count.
func WithRetryMaxAttempts(attempts int) Option {
	return func(c *Client) {
		c.retryMaxAttempts = attempts
	}
}

// WithRetryBaseDelay overrides the retry backoff base delay.
func WithRetryBaseDelay(delay time.Duration) Option {
	return func(c *Client) {
		c.retryBaseDelay = delay
	}
}

// WithSleeper overrides how retry sleeps are performed (useful for tests).
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(c *Client) {
		c.sleeper = sleeper
	}
}

// NewClient constructs a YouTube Data API client.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	if cfg.MaxVideos <= 0 {
		cfg.MaxVideos = defaultMaxVideos
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = defaultRPS
	}
	client := &Client{
		cfg: Config{
			APIKey:            strings.TrimSpace(cfg.APIKey),
			BaseURL:           strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
			TimeoutSeconds:    cfg.TimeoutSeconds,
			MaxVideos:         cfg.MaxVideos,
			RequestsPerSecond: rps,
		},
		httpClient:       &http.Client{Timeout: timeout},
		limiter:          rate.NewLimiter(rate.Limit(rps), 1),
		retryMaxAttempts: defaultRetryAttempts,
		retryBaseDelay:   defaultRetryBase,
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return client
}

type searchResponse struct {
	Items []struct {
		ID struct {
			ChannelID string `json:"channelId"`
			VideoID   string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title       string `json:"title"`
			PublishedAt string `json:"publishedAt"`
			Thumbnails  struct {
				Default struct {
					URL string `json:"url"`
				} `json:"default"`
			} `json:"thumbnails"`
		} `json:"snippet"`
	} `json:"items"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// ErrNoChannel is returned when the search yields no channel match.
var ErrNoChannel = errors.New("no channel found")

// ErrNoVideos is returned when a channel has no listed uploads.
var ErrNoVideos = errors.New("no videos found")

// SearchChannel resolves a channel query to its authoritative channel. The
// first search result wins. A leading "@" handle marker is stripped before
// searching.
func (c *Client) SearchChannel(ctx context.Context, query string) (Channel, error) {
	query = strings.TrimSpace(query)
	query = strings.TrimPrefix(query, "@")
	if query == "" {
		return Channel{}, errors.New("youtube search: channel query required")
	}
	if c.cfg.APIKey == "" {
		return Channel{}, errors.New("youtube search: api key required")
	}

	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("type", "channel")
	params.Set("q", query)

	result, err := c.searchWithRetry(ctx, params, "youtube search")
	if err != nil {
		return Channel{}, err
	}
	for _, item := range result.Items {
		if item.ID.ChannelID != "" && item.Snippet.Title != "" {
			return Channel{ID: item.ID.ChannelID, Name: item.Snippet.Title}, nil
		}
	}
	return Channel{}, ErrNoChannel
}

// ListRecent returns the channel's most recent uploads, newest first, capped
// at the configured maximum.
func (c *Client) ListRecent(ctx context.Context, channelID string) ([]Video, error) {
	channelID = strings.TrimSpace(channelID)
	if channelID == "" {
		return nil, errors.New("youtube list: channel id required")
	}
	if c.cfg.APIKey == "" {
		return nil, errors.New("youtube list: api key required")
	}

	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("channelId", channelID)
	params.Set("order", "date")
	params.Set("type", "video")
	params.Set("maxResults", strconv.Itoa(c.cfg.MaxVideos))

	result, err := c.searchWithRetry(ctx, params, "youtube list")
	if err != nil {
		return nil, err
	}

	var videos []Video
	for _, item := range result.Items {
		if item.ID.VideoID == "" {
			continue
		}
		videos = append(videos, Video{
			VideoID:      item.ID.VideoID,
			Title:        item.Snippet.Title,
			URL:          "https://www.youtube.com/watch?v=" + item.ID.VideoID,
			PublishedAt:  item.Snippet.PublishedAt,
			ThumbnailURL: item.Snippet.Thumbnails.Default.URL,
		})
	}
	if len(videos) == 0 {
		return nil, ErrNoVideos
	}
	return videos, nil
}

// HealthCheck verifies the API key is present and the endpoint is reachable.
func (c *Client) HealthCheck(ctx context.Context) error {
	if c.cfg.APIKey == "" {
		return errors.New("youtube health: api key required")
	}
	return nil
}

type httpStatusError struct {
	StatusCode int
	Body       string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("youtube request: http %d: %s", e.StatusCode, strings.TrimSpace(e.Body))
}

func (c *Client) searchWithRetry(ctx context.Context, params url.Values, op string) (searchResponse, error) {
	attempts := c.retryMaxAttempts
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		result, err := c.searchOnce(ctx, params)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !retryable(ctx, err) || attempt == attempts {
			return searchResponse{}, err
		}
		if sleepErr := c.sleep(ctx, c.retryBaseDelay<<(attempt-1)); sleepErr != nil {
			return searchResponse{}, sleepErr
		}
	}
	return searchResponse{}, fmt.Errorf("%s: failed after %d attempts: %w", op, attempts, lastErr)
}

func (c *Client) searchOnce(ctx context.Context, params url.Values) (searchResponse, error) {
	var result searchResponse

	if err := c.limiter.Wait(ctx); err != nil {
		return result, err
	}

	query := params.Encode() + "&key=" + url.QueryEscape(c.cfg.APIKey)
	endpoint := c.cfg.BaseURL + "/search?" + query

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return result, fmt.Errorf("youtube request: new request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return result, fmt.Errorf("youtube request: http error: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return result, fmt.Errorf("youtube request: read body: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return result, &httpStatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return result, fmt.Errorf("youtube request: decode response: %w", err)
	}
	if result.Error != nil {
		return result, fmt.Errorf("youtube request: api error %d: %s", result.Error.Code, result.Error.Message)
	}
	return result, nil
}

func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var statusErr *httpStatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode == http.StatusTooManyRequests ||
			statusErr.StatusCode >= http.StatusInternalServerError
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Timeout() || urlErr.Temporary()
	}
	return false
}

func (c *Client) sleep(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	if c.sleeper != nil {
		c.sleeper(delay)
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
