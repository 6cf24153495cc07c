package api

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/coolbeans/convictions/pkg/iucr"
	"github.com/coolbeans/convictions/pkg/statute"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
	)
}

func newTestServer(t *testing.T, opts ...Option) *httptest.Server {
	t.Helper()
	server := NewServer(statute.Default(), iucr.DefaultRegistry(), iucr.Default(), opts...)
	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func get(t *testing.T, ts *httptest.Server, path string, into any) int {
	t.Helper()
	resp, err := http.Get(ts.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	require.NoError(t, json.NewDecoder(resp.Body).Decode(into))
	return resp.StatusCode
}

func classifyPath(raw string) string {
	return "/api/statutes/classify?" + url.Values{"statute": {raw}}.Encode()
}

func TestClassify(t *testing.T) {
	ts := newTestServer(t)

	var body ClassifyResponse
	status := get(t, ts, classifyPath("720-570/402(c)"), &body)
	require.Equal(t, http.StatusOK, status)

	assert.Equal(t, "720-570/402(c)", body.Statute)
	assert.Equal(t, "720-570/402(c)", body.Citation)
	assert.Nil(t, body.Modifier)
	assert.False(t, body.Ambiguous)
	require.Len(t, body.Records, 1)
	assert.Equal(t, "2020", body.Records[0].Code)
}

func TestClassifyInchoate(t *testing.T) {
	ts := newTestServer(t)

	var body ClassifyResponse
	status := get(t, ts, classifyPath("720-5/8-4 (720-5/9-1)"), &body)
	require.Equal(t, http.StatusOK, status)

	assert.Equal(t, "720-5/9-1", body.Primary)
	require.NotNil(t, body.Modifier)
	assert.Equal(t, "720-5/8-4", body.Modifier.Raw)
	assert.Equal(t, statute.KindAttempt, body.Modifier.Kind)
	require.NotEmpty(t, body.Records)
	assert.Equal(t, "0110", body.Records[0].Code)
}

func TestClassifyAmbiguous(t *testing.T) {
	ts := newTestServer(t)

	var body ClassifyResponse
	status := get(t, ts, classifyPath("720-5/9-3"), &body)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, body.Ambiguous)
	assert.Len(t, body.Records, 2)
}

func TestClassifyErrors(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name    string
		path    string
		status  int
		want    ErrorResponse
		message string
	}{
		{
			name:   "missing statute",
			path:   "/api/statutes/classify",
			status: http.StatusBadRequest,
			want:   ErrorResponse{Error: ErrMissingStatute, Message: "statute query parameter is required"},
		},
		{
			name:   "format",
			path:   classifyPath("not-a-real-citation"),
			status: http.StatusUnprocessableEntity,
			want: ErrorResponse{
				Error:   ErrFormat,
				Message: "Can't understand statute 'not-a-real-citation'",
				Statute: "not-a-real-citation",
			},
		},
		{
			name:   "ilcs lookup",
			path:   classifyPath("38-99-9(a)"),
			status: http.StatusNotFound,
			want: ErrorResponse{
				Error:     ErrILCSLookup,
				Message:   "Unable to find ILCS statute for raw statute '38-99-9(a)' (chapter 38, paragraph 99-9)",
				Statute:   "38-99-9(a)",
				Chapter:   "38",
				Paragraph: "99-9",
			},
		},
		{
			name:   "iucr lookup",
			path:   classifyPath("720-5/99-9(z)"),
			status: http.StatusNotFound,
			want: ErrorResponse{
				Error:    ErrIUCRLookup,
				Message:  "Cannot find IUCR offense for statute '720-5/99-9(z)'",
				Statute:  "720-5/99-9(z)",
				Citation: "720-5/99-9(z)",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body ErrorResponse
			status := get(t, ts, tt.path, &body)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.want, body)
		})
	}
}

type failingResolver struct{}

func (failingResolver) Resolve(raw string) (*statute.Resolution, error) {
	return nil, errors.New("table unavailable")
}

func TestClassifyUnexpectedError(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	server := NewServer(failingResolver{}, iucr.DefaultRegistry(), iucr.Default(), WithLogger(zap.New(core)))
	ts := httptest.NewServer(server.Handler())
	defer ts.Close()

	var body ErrorResponse
	status := get(t, ts, classifyPath("720-5/9-1"), &body)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, ErrInternal, body.Error)
	assert.NotContains(t, body.Message, "table unavailable")
	assert.Equal(t, 1, logs.FilterMessage("Unable to classify statute").Len())
}

func TestCategories(t *testing.T) {
	ts := newTestServer(t)

	var groups []iucr.Group
	status := get(t, ts, "/api/categories", &groups)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, iucr.DefaultRegistry().Groups(), groups)
}

func TestCategoriesForCode(t *testing.T) {
	ts := newTestServer(t)

	var body CodeCategoriesResponse
	status := get(t, ts, "/api/categories/0110", &body)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "0110", body.Code)
	assert.Contains(t, body.Categories, "homicide")
	require.NotNil(t, body.Offense)
	assert.Equal(t, "Homicide", body.Offense.Category)

	var missing ErrorResponse
	status = get(t, ts, "/api/categories/ZZZZ", &missing)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, ErrUnknownIUCRCode, missing.Error)
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)

	var body map[string]string
	status := get(t, ts, "/healthz", &body)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
}

func TestMethodNotAllowed(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Post(ts.URL+"/healthz", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestServeShutsDownOnCancel(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	core, logs := observer.New(zap.InfoLevel)
	server := NewServer(statute.Default(), iucr.DefaultRegistry(), iucr.Default(), WithLogger(zap.New(core)))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- server.Serve(ctx, listener, Config{ShutdownTimeout: time.Second})
	}()

	client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
	require.Eventually(t, func() bool {
		resp, err := client.Get("http://" + listener.Addr().String() + "/healthz")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not shut down")
	}
	assert.Equal(t, 1, logs.FilterMessage("Shutting down server").Len())
}

func TestWriteJSONLogsEncodeErrors(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	server := NewServer(statute.Default(), iucr.DefaultRegistry(), iucr.Default(), WithLogger(zap.New(core)))

	recorder := httptest.NewRecorder()
	server.writeJSON(recorder, http.StatusOK, map[string]any{"bad": make(chan int)})

	assert.Equal(t, http.StatusOK, recorder.Code)
	entries := logs.FilterMessage("Unable to write response").All()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(http.StatusOK), entries[0].ContextMap()["status"])
}
