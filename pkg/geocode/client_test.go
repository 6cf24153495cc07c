package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/coolbeans/convictions/pkg/disposition"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
	)
}

// mapquestHandler answers batch requests with one result per location,
// placing each at a latitude equal to its index.
func mapquestHandler(t *testing.T, requests *atomic.Int32) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		if r.URL.Path != batchPath {
			t.Errorf("Expected path %q, got %q", batchPath, r.URL.Path)
		}
		query := r.URL.Query()
		if query.Get("key") != "test-key" {
			t.Errorf("Expected key %q, got %q", "test-key", query.Get("key"))
		}

		var results []map[string]any
		for i, location := range query["location"] {
			results = append(results, map[string]any{
				"providedLocation": map[string]any{"location": location},
				"locations": []map[string]any{{
					"street":         strings.Split(location, ",")[0],
					"adminArea5":     "Chicago",
					"adminArea3":     "IL",
					"adminArea1":     "US",
					"postalCode":     "60613",
					"geocodeQuality": "ADDRESS",
					"latLng":         map[string]any{"lat": float64(i), "lng": -87.6},
				}},
			})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"info":    map[string]any{"statuscode": 0, "messages": []string{}},
			"results": results,
		})
	}
}

func newTestClient(serverURL string, config Config) *Client {
	config.BaseURL = serverURL
	config.APIKey = "test-key"
	if config.RetryBaseDelay == 0 {
		config.RetryBaseDelay = time.Millisecond
	}
	return NewClient(config)
}

func TestBatchURL(t *testing.T) {
	client := NewClient(Config{APIKey: "abc%2Bdef"})
	got := client.batchURL([]string{"707 W WAVELAND,60613", "1 N STATE,CHICAGO,IL"})

	assert.True(t, strings.HasPrefix(got, "https://www.mapquestapi.com/geocoding/v1/batch?outFormat=json&"))
	assert.Contains(t, got, "maxResults=1")
	assert.Contains(t, got, "thumbMaps=false")
	assert.Contains(t, got, "location=707+W+WAVELAND%2C60613&location=1+N+STATE%2CCHICAGO%2CIL")
	assert.True(t, strings.HasSuffix(got, "&key=abc%2Bdef"), "key is appended without re-encoding")
}

func TestBatchGeocode(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(mapquestHandler(t, &requests))
	defer server.Close()

	client := newTestClient(server.URL, Config{})
	locations, err := client.BatchGeocode(context.Background(), []string{"707 W WAVELAND,60613", "1 N STATE,CHICAGO,IL"})
	require.NoError(t, err)
	require.Len(t, locations, 2)

	assert.Equal(t, Location{
		Query:   "707 W WAVELAND,60613",
		Address: "707 W WAVELAND Chicago, IL US 60613",
		Lat:     0,
		Lon:     -87.6,
		Quality: "ADDRESS",
		Found:   true,
	}, locations[0])
	assert.Equal(t, 1.0, locations[1].Lat)
	assert.Equal(t, int32(1), requests.Load())
}

func TestBatchGeocodeNoMatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"info":{"statuscode":0},"results":[{"locations":[]}]}`)
	}))
	defer server.Close()

	locations, err := newTestClient(server.URL, Config{}).BatchGeocode(context.Background(), []string{"nowhere"})
	require.NoError(t, err)
	require.Len(t, locations, 1)
	assert.False(t, locations[0].Found)
	assert.Equal(t, "nowhere", locations[0].Query)
}

func TestBatchGeocodeRetriesServerErrors(t *testing.T) {
	var requests atomic.Int32
	success := mapquestHandler(t, &atomic.Int32{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		success(w, r)
	}))
	defer server.Close()

	client := newTestClient(server.URL, Config{MaxRetries: 3})
	locations, err := client.BatchGeocode(context.Background(), []string{"707 W WAVELAND,60613"})
	require.NoError(t, err)
	assert.Len(t, locations, 1)
	assert.Equal(t, int32(3), requests.Load())
}

func TestBatchGeocodeGivesUp(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL, Config{MaxRetries: 2}).BatchGeocode(context.Background(), []string{"x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed after 2 attempts")
	assert.Equal(t, int32(2), requests.Load())
}

func TestBatchGeocodeClientErrorNotRetried(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		http.Error(w, "The AppKey submitted with this request is invalid.", http.StatusForbidden)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL, Config{MaxRetries: 3}).BatchGeocode(context.Background(), []string{"x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 403")
	assert.Equal(t, int32(1), requests.Load())
}

func TestBatchGeocodeStatusAndCountErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"status", `{"info":{"statuscode":403,"messages":["bad key"]},"results":[]}`, "geocoder status 403: bad key"},
		{"count", `{"info":{"statuscode":0},"results":[]}`, "returned 0 results for 1 addresses"},
		{"json", `not json`, "failed to decode"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, tc.body)
			}))
			defer server.Close()

			_, err := newTestClient(server.URL, Config{}).BatchGeocode(context.Background(), []string{"x"})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestBatchGeocodeTooLarge(t *testing.T) {
	client := NewClient(Config{BatchSize: 2})
	_, err := client.BatchGeocode(context.Background(), []string{"a", "b", "c"})
	assert.ErrorContains(t, err, "exceeds limit")

	locations, err := client.BatchGeocode(context.Background(), nil)
	assert.NoError(t, err)
	assert.Nil(t, locations)
}

func TestGeocodeAll(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(mapquestHandler(t, &requests))
	defer server.Close()

	addresses := make([]string, 25)
	for i := range addresses {
		addresses[i] = fmt.Sprintf("%d N STATE,60601", i)
	}

	client := newTestClient(server.URL, Config{Workers: 3})
	locations, err := client.GeocodeAll(context.Background(), addresses, 10)
	require.NoError(t, err)
	require.Len(t, locations, 25)
	assert.Equal(t, int32(3), requests.Load())

	for i, location := range locations {
		assert.Equal(t, addresses[i], location.Query, "results keep input order")
		assert.Equal(t, float64(i%10), location.Lat)
	}
}

func TestGeocodeAllStopsOnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadRequest)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL, Config{}).GeocodeAll(context.Background(), []string{"a", "b"}, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "page")
}

func TestGeocodeDispositions(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(mapquestHandler(t, &requests))
	defer server.Close()

	lat, lon := 41.9, -87.6
	dispositions := []*disposition.Disposition{
		{StAddress: "707 W WAVELAND", City: "CHICAGO", State: "IL", Zipcode: "60613"},
		{StAddress: "1 N STATE", City: "CHICAGO"},
		{StAddress: "2 N STATE", City: "CHICAGO", State: "IL", Zipcode: "60601", Lat: &lat, Lon: &lon},
		{StAddress: "3 N STATE", City: "CHICAGO", State: "IL", Zipcode: "60601"},
	}

	geocoded, err := GeocodeDispositions(context.Background(), newTestClient(server.URL, Config{}), dispositions)
	require.NoError(t, err)
	assert.Equal(t, 2, geocoded)
	assert.True(t, dispositions[0].Geocoded())
	assert.False(t, dispositions[1].Geocoded())
	assert.Equal(t, 41.9, *dispositions[2].Lat, "already geocoded records are left alone")
	require.True(t, dispositions[3].Geocoded())
	assert.Equal(t, 1.0, *dispositions[3].Lat)
}

func TestRateLimitedHTTPClient(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
	}))
	defer server.Close()

	client := NewRateLimitedHTTPClient(http.DefaultClient, 20*time.Millisecond)
	start := time.Now()
	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			request, _ := http.NewRequest(http.MethodGet, server.URL, nil)
			response, err := client.Do(request)
			if err != nil {
				t.Errorf("Unexpected error: %v", err)
				return
			}
			response.Body.Close()
		}()
	}
	wg.Wait()

	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
	assert.Equal(t, int32(3), requests.Load())
}

func TestRateLimitedHTTPClientHonorsContext(t *testing.T) {
	client := NewRateLimitedHTTPClient(http.DefaultClient, time.Hour)
	client.nextRequest = time.Now().Add(time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	request, _ := http.NewRequestWithContext(ctx, http.MethodGet, "http://example.invalid", nil)
	_, err := client.Do(request)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestTimeoutHTTPClient(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client := NewTimeoutHTTPClient(http.DefaultClient, 20*time.Millisecond)
	request, _ := http.NewRequest(http.MethodGet, server.URL, nil)
	_, err := client.Do(request)
	assert.Error(t, err)
}
