// Package geocode resolves street addresses to coordinates with the
// MapQuest batch geocoding API.
package geocode

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

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultBaseURL is the MapQuest API host.
const DefaultBaseURL = "https://www.mapquestapi.com"

// DefaultBatchSize is the number of addresses sent per request. MapQuest
// accepts at most 100 locations per batch.
const DefaultBatchSize = 100

// DefaultTimeout is the default per-request timeout.
const DefaultTimeout = 30 * time.Second

// DefaultMaxRetries is the default number of attempts per batch.
const DefaultMaxRetries = 3

// DefaultRetryBaseDelay is the delay before the first retry; it doubles on
// each subsequent attempt.
const DefaultRetryBaseDelay = time.Second

// DefaultWorkers is the default number of batches geocoded concurrently.
const DefaultWorkers = 2

const batchPath = "/geocoding/v1/batch"

// Config holds geocoder client settings.
type Config struct {
	BaseURL        string
	APIKey         string
	BatchSize      int
	Timeout        time.Duration
	MaxRetries     int
	RetryBaseDelay time.Duration
	RateLimit      time.Duration
	Workers        int
}

// DefaultConfig returns a Config with sensible defaults and no API key.
func DefaultConfig() Config {
	return Config{
		BaseURL:        DefaultBaseURL,
		BatchSize:      DefaultBatchSize,
		Timeout:        DefaultTimeout,
		MaxRetries:     DefaultMaxRetries,
		RetryBaseDelay: DefaultRetryBaseDelay,
		Workers:        DefaultWorkers,
	}
}

// Location is a geocoded address.
type Location struct {
	Query   string  `json:"query"`
	Address string  `json:"address"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Quality string  `json:"quality,omitempty"`
	Found   bool    `json:"found"`
}

// Client is a MapQuest batch geocoding client. It is safe for concurrent
// use.
type Client struct {
	config     Config
	httpClient HTTPClient
	logger     *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client used for requests. The client is
// still wrapped with the configured timeout and rate limit.
func WithHTTPClient(httpClient HTTPClient) Option {
	return func(client *Client) {
		client.httpClient = httpClient
	}
}

// WithLogger sets the client's logger.
func WithLogger(logger *zap.Logger) Option {
	return func(client *Client) {
		client.logger = logger
	}
}

// NewClient creates a geocoding client. Zero values in config are replaced
// with defaults.
func NewClient(config Config, opts ...Option) *Client {
	defaults := DefaultConfig()
	if config.BaseURL == "" {
		config.BaseURL = defaults.BaseURL
	}
	if config.BatchSize <= 0 || config.BatchSize > DefaultBatchSize {
		config.BatchSize = defaults.BatchSize
	}
	if config.MaxRetries <= 0 {
		config.MaxRetries = 1
	}
	if config.RetryBaseDelay <= 0 {
		config.RetryBaseDelay = defaults.RetryBaseDelay
	}
	if config.Workers <= 0 {
		config.Workers = defaults.Workers
	}

	client := &Client{
		config:     config,
		httpClient: http.DefaultClient,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(client)
	}

	client.httpClient = NewTimeoutHTTPClient(client.httpClient, config.Timeout)
	if config.RateLimit > 0 {
		client.httpClient = NewRateLimitedHTTPClient(client.httpClient, config.RateLimit)
	}
	return client
}

// BatchSize returns the configured number of addresses per request.
func (client *Client) BatchSize() int {
	return client.config.BatchSize
}

// BatchGeocode geocodes up to BatchSize addresses in one request. Results
// are in the order of addresses. Transient failures are retried with
// exponential backoff.
func (client *Client) BatchGeocode(ctx context.Context, addresses []string) ([]Location, error) {
	if len(addresses) == 0 {
		return nil, nil
	}
	if len(addresses) > client.config.BatchSize {
		return nil, fmt.Errorf("batch of %d addresses exceeds limit of %d", len(addresses), client.config.BatchSize)
	}

	requestURL := client.batchURL(addresses)

	var lastErr error
	for attempt := 0; attempt < client.config.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := client.config.RetryBaseDelay * time.Duration(1<<uint(attempt-1))
			client.logger.Warn("Retrying geocoder batch",
				zap.Int("attempt", attempt+1),
				zap.Duration("delay", delay),
				zap.Error(lastErr))
			if err := sleep(ctx, delay); err != nil {
				return nil, err
			}
		}

		locations, err := client.batchAttempt(ctx, requestURL, addresses)
		if err == nil {
			return locations, nil
		}
		lastErr = err
		if !isRetryableError(err) || ctx.Err() != nil {
			return nil, err
		}
	}
	return nil, fmt.Errorf("geocoder failed after %d attempts: %w", client.config.MaxRetries, lastErr)
}

// batchURL builds the request URL. The API key is appended as is because
// MapQuest keys are issued already URL-encoded.
func (client *Client) batchURL(addresses []string) string {
	params := url.Values{}
	params.Set("maxResults", "1")
	for _, address := range addresses {
		params.Add("location", address)
	}
	params.Set("thumbMaps", "false")

	base := strings.TrimRight(client.config.BaseURL, "/") + batchPath + "?outFormat=json"
	return base + "&" + params.Encode() + "&key=" + client.config.APIKey
}

func (client *Client) batchAttempt(ctx context.Context, requestURL string, addresses []string) ([]Location, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	request.Header.Set("Accept", "application/json")

	response, err := client.httpClient.Do(request)
	if err != nil {
		return nil, &transportError{err: err}
	}
	defer response.Body.Close()

	if response.StatusCode >= 500 {
		return nil, &retryableHTTPError{StatusCode: response.StatusCode}
	}
	if response.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(response.Body, 512))
		return nil, fmt.Errorf("geocoder returned HTTP %d: %s", response.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload batchResponse
	if err := json.NewDecoder(response.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode geocoder response: %w", err)
	}
	return payload.locations(addresses)
}

// GeocodeAll geocodes addresses in batches of batchSize, running up to the
// configured number of batches concurrently. Results are in input order.
// A batchSize of zero uses the client's configured size.
func (client *Client) GeocodeAll(ctx context.Context, addresses []string, batchSize int) ([]Location, error) {
	if batchSize <= 0 || batchSize > client.config.BatchSize {
		batchSize = client.config.BatchSize
	}

	locations := make([]Location, len(addresses))
	pages := (len(addresses) + batchSize - 1) / batchSize

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(client.config.Workers)
	for page := 0; page < pages; page++ {
		start := page * batchSize
		end := min(start+batchSize, len(addresses))
		group.Go(func() error {
			client.logger.Debug("Geocoding page",
				zap.Int("page", page+1),
				zap.Int("pages", pages))
			batch, err := client.BatchGeocode(groupCtx, addresses[start:end])
			if err != nil {
				return fmt.Errorf("page %d of %d: %w", page+1, pages, err)
			}
			copy(locations[start:end], batch)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return locations, nil
}

type batchResponse struct {
	Info struct {
		StatusCode int      `json:"statuscode"`
		Messages   []string `json:"messages"`
	} `json:"info"`
	Results []struct {
		ProvidedLocation struct {
			Location string `json:"location"`
		} `json:"providedLocation"`
		Locations []mapquestLocation `json:"locations"`
	} `json:"results"`
}

type mapquestLocation struct {
	Street         string `json:"street"`
	AdminArea5     string `json:"adminArea5"`
	AdminArea3     string `json:"adminArea3"`
	AdminArea1     string `json:"adminArea1"`
	PostalCode     string `json:"postalCode"`
	GeocodeQuality string `json:"geocodeQuality"`
	LatLng         struct {
		Lat float64 `json:"lat"`
		Lng float64 `json:"lng"`
	} `json:"latLng"`
}

// canonicalAddress formats the address parts of a result as
// "street city, state country postal".
func (location mapquestLocation) canonicalAddress() string {
	return fmt.Sprintf("%s %s, %s %s %s", location.Street, location.AdminArea5,
		location.AdminArea3, location.AdminArea1, location.PostalCode)
}

func (payload *batchResponse) locations(addresses []string) ([]Location, error) {
	if payload.Info.StatusCode != 0 {
		return nil, fmt.Errorf("geocoder status %d: %s", payload.Info.StatusCode, strings.Join(payload.Info.Messages, "; "))
	}
	if len(payload.Results) != len(addresses) {
		return nil, fmt.Errorf("geocoder returned %d results for %d addresses", len(payload.Results), len(addresses))
	}

	locations := make([]Location, len(addresses))
	for i, result := range payload.Results {
		locations[i].Query = addresses[i]
		if len(result.Locations) == 0 {
			continue
		}
		best := result.Locations[0]
		locations[i].Address = best.canonicalAddress()
		locations[i].Lat = best.LatLng.Lat
		locations[i].Lon = best.LatLng.Lng
		locations[i].Quality = best.GeocodeQuality
		locations[i].Found = true
	}
	return locations, nil
}

// retryableHTTPError is a server error that should trigger a retry.
type retryableHTTPError struct {
	StatusCode int
}

func (e *retryableHTTPError) Error() string {
	return "geocoder returned HTTP " + strconv.Itoa(e.StatusCode)
}

// transportError is a failure to get any response from the geocoder.
type transportError struct {
	err error
}

func (e *transportError) Error() string {
	return fmt.Sprintf("geocoder request failed: %v", e.err)
}

func (e *transportError) Unwrap() error {
	return e.err
}

func isRetryableError(err error) bool {
	var httpErr *retryableHTTPError
	var netErr *transportError
	return errors.As(err, &httpErr) || errors.As(err, &netErr)
}

func sleep(ctx context.Context, delay time.Duration) error {
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
