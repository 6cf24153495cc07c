package geocode

import (
	"context"
	"io"
	"net/http"
	"sync"
	"time"
)

// HTTPClient is an interface matching the Do method of *http.Client.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// RateLimitedHTTPClient enforces a minimum interval between requests sent
// through an underlying HTTPClient. Waiting honors the request context.
type RateLimitedHTTPClient struct {
	underlying      HTTPClient
	requestInterval time.Duration

	mu          sync.Mutex
	nextRequest time.Time
}

// NewRateLimitedHTTPClient creates a client that sends at most one request
// per requestInterval.
func NewRateLimitedHTTPClient(underlying HTTPClient, requestInterval time.Duration) *RateLimitedHTTPClient {
	return &RateLimitedHTTPClient{
		underlying:      underlying,
		requestInterval: requestInterval,
	}
}

// Do waits for the next free slot and then sends req.
func (rateLimitedClient *RateLimitedHTTPClient) Do(req *http.Request) (*http.Response, error) {
	if err := rateLimitedClient.wait(req.Context()); err != nil {
		return nil, err
	}
	return rateLimitedClient.underlying.Do(req)
}

func (rateLimitedClient *RateLimitedHTTPClient) wait(ctx context.Context) error {
	rateLimitedClient.mu.Lock()
	now := time.Now()
	slot := rateLimitedClient.nextRequest
	if slot.Before(now) {
		slot = now
	}
	rateLimitedClient.nextRequest = slot.Add(rateLimitedClient.requestInterval)
	rateLimitedClient.mu.Unlock()

	delay := time.Until(slot)
	if delay <= 0 {
		return nil
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

// TimeoutHTTPClient bounds each request sent through an underlying
// HTTPClient by a timeout.
type TimeoutHTTPClient struct {
	underlying HTTPClient
	timeout    time.Duration
}

// NewTimeoutHTTPClient creates a client that cancels requests after timeout.
func NewTimeoutHTTPClient(underlying HTTPClient, timeout time.Duration) *TimeoutHTTPClient {
	return &TimeoutHTTPClient{
		underlying: underlying,
		timeout:    timeout,
	}
}

// Do sends req with the configured timeout applied to its context. The
// response body remains readable until it is closed.
func (timeoutClient *TimeoutHTTPClient) Do(req *http.Request) (*http.Response, error) {
	if timeoutClient.timeout <= 0 {
		return timeoutClient.underlying.Do(req)
	}

	ctx, cancel := context.WithTimeout(req.Context(), timeoutClient.timeout)
	response, err := timeoutClient.underlying.Do(req.WithContext(ctx))
	if err != nil {
		cancel()
		return nil, err
	}
	response.Body = &cancelOnClose{ReadCloser: response.Body, cancel: cancel}
	return response, nil
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (body *cancelOnClose) Close() error {
	err := body.ReadCloser.Close()
	body.cancel()
	return err
}
