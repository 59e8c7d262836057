package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"animemanager/pkg/models"
)

const (
	defaultTimeout  = 10 * time.Second
	defaultRetryMax = 2
	maxErrorBody    = 512
)

// Remote is the collection endpoint the Store synchronises with.
type Remote interface {
	List(ctx context.Context) ([]models.Anime, error)
	Get(ctx context.Context, id string) (models.Anime, error)
	Create(ctx context.Context, a models.Anime) (models.Anime, error)
	Update(ctx context.Context, id string, a models.Anime) (models.Anime, error)
	Delete(ctx context.Context, id string) error
}

// Transport paces every request through a token bucket and retries replayable
// requests (GET/HEAD without a body) on transport errors.
type Transport struct {
	Base    http.RoundTripper
	Limiter *rate.Limiter // nil disables pacing

	// RetryMax excludes the first attempt: 2 means at most 3 tries.
	RetryMax int
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req == nil {
		return nil, errors.New("nil request")
	}
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	noBody := req.Body == nil || req.Body == http.NoBody
	canRetry := (req.Method == http.MethodGet || req.Method == http.MethodHead) && noBody
	max := t.RetryMax
	if max < 0 || !canRetry {
		max = 0
	}

	var lastErr error
	for attempt := 0; attempt <= max; attempt++ {
		if t.Limiter != nil {
			if err := t.Limiter.Wait(req.Context()); err != nil {
				return nil, fmt.Errorf("rate limiter: %w", err)
			}
		}
		resp, err := base.RoundTrip(req.Clone(req.Context()))
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if req.Context().Err() != nil {
			return nil, lastErr
		}
	}
	return nil, lastErr
}

// NewHTTPClient builds the client used against the remote collection. ratePerSec <= 0
// disables pacing; timeout <= 0 uses the default.
func NewHTTPClient(ratePerSec float64, timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	tr := &Transport{
		Base: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: timeout,
			MaxIdleConnsPerHost:   4,
		},
		RetryMax: defaultRetryMax,
	}
	if ratePerSec > 0 {
		tr.Limiter = rate.NewLimiter(rate.Limit(ratePerSec), 1)
	}
	return &http.Client{Transport: tr, Timeout: timeout}
}

// Client talks JSON to a REST collection rooted at BaseURL + "/animes".
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = NewHTTPClient(0, 0)
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

func (c *Client) collection() string { return c.baseURL + "/animes" }

func (c *Client) item(id string) string { return c.collection() + "/" + url.PathEscape(id) }

func (c *Client) List(ctx context.Context) ([]models.Anime, error) {
	var out []models.Anime
	if err := c.do(ctx, "list animes", http.MethodGet, c.collection(), nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.Anime{}
	}
	return out, nil
}

func (c *Client) Get(ctx context.Context, id string) (models.Anime, error) {
	var out models.Anime
	err := c.do(ctx, "get anime "+id, http.MethodGet, c.item(id), nil, &out)
	return out, err
}

func (c *Client) Create(ctx context.Context, a models.Anime) (models.Anime, error) {
	a.ID = ""
	var out models.Anime
	err := c.do(ctx, "create anime", http.MethodPost, c.collection(), a, &out)
	return out, err
}

func (c *Client) Update(ctx context.Context, id string, a models.Anime) (models.Anime, error) {
	a.ID = id
	var out models.Anime
	err := c.do(ctx, "update anime "+id, http.MethodPut, c.item(id), a, &out)
	return out, err
}

func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, "delete anime "+id, http.MethodDelete, c.item(id), nil, nil)
}

func (c *Client) do(ctx context.Context, op, method, u string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: encode: %w", op, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{Op: op, Code: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode: %w", op, err)
	}
	return nil
}
