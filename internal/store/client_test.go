package store

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

type flakyTransport struct {
	calls    atomic.Int32
	failures int32
}

func (f *flakyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	n := f.calls.Add(1)
	if n <= f.failures {
		return nil, errors.New("connection reset")
	}
	return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody, Request: req}, nil
}

func TestTransportRetriesGET(t *testing.T) {
	base := &flakyTransport{failures: 2}
	tr := &Transport{Base: base, RetryMax: 2}

	req := httptest.NewRequest(http.MethodGet, "http://example.com/animes", nil)
	resp, err := tr.RoundTrip(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(3), base.calls.Load())
}

func TestTransportGivesUpAfterRetryMax(t *testing.T) {
	base := &flakyTransport{failures: 10}
	tr := &Transport{Base: base, RetryMax: 1}

	_, err := tr.RoundTrip(httptest.NewRequest(http.MethodGet, "http://example.com/animes", nil))
	assert.Error(t, err)
	assert.Equal(t, int32(2), base.calls.Load())
}

func TestTransportNeverRetriesMutations(t *testing.T) {
	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete} {
		base := &flakyTransport{failures: 1}
		tr := &Transport{Base: base, RetryMax: 3}

		req := httptest.NewRequest(method, "http://example.com/animes/1", nil)
		_, err := tr.RoundTrip(req)
		assert.Error(t, err, method)
		assert.Equal(t, int32(1), base.calls.Load(), method)
	}
}

func TestTransportLimiterRespectsContext(t *testing.T) {
	lim := rate.NewLimiter(rate.Every(time.Hour), 1)
	require.True(t, lim.Allow(), "drain the only token")
	tr := &Transport{Base: &flakyTransport{}, Limiter: lim}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "http://example.com/animes", nil).WithContext(ctx)
	_, err := tr.RoundTrip(req)
	assert.Error(t, err)
}

func TestClientStatusErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/animes/404":
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`"Not found"`))
		default:
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", srv.Client())

	_, err := c.Get(context.Background(), "404")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusNotFound, se.Code)
	assert.Contains(t, se.Error(), "Not found")

	_, err = c.List(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusServiceUnavailable, se.Code)
}

func TestClientEscapesIDs(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, srv.Client())
	require.NoError(t, c.Delete(context.Background(), "a/b"))
	assert.Equal(t, "/animes/a%2Fb", gotPath)
}

func TestNewHTTPClientPacing(t *testing.T) {
	paced := NewHTTPClient(2, 0)
	tr := paced.Transport.(*Transport)
	require.NotNil(t, tr.Limiter)
	assert.Equal(t, rate.Limit(2), tr.Limiter.Limit())
	assert.Equal(t, defaultTimeout, paced.Timeout)

	unpaced := NewHTTPClient(0, time.Second)
	assert.Nil(t, unpaced.Transport.(*Transport).Limiter)
	assert.Equal(t, time.Second, unpaced.Timeout)
}
