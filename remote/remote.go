// Package remote contains http utils to deal with remote services: JSON GET
// with retries, and a disk cache expiring every day.
package remote

import (
	"bufio"
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"
	"os"
	"path/filepath"
	"time"

	"github.com/etnz/tradebook/date"
	"github.com/rs/zerolog"
)

// Retry bounds the attempts of a request.
type Retry struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

var DefaultRetry = Retry{
	MaxAttempts: 3,
	BaseDelay:   500 * time.Millisecond,
	MaxDelay:    5 * time.Second,
}

// Client performs JSON GET requests.
type Client struct {
	HTTP      *http.Client
	Retry     Retry
	UserAgent string
	Log       zerolog.Logger
}

// New returns a client with a timeout. Responses are cached under dir for the
// day when dir is not empty.
func New(timeout time.Duration, dir string, log zerolog.Logger) *Client {
	client := &http.Client{Timeout: timeout}
	if dir != "" {
		client.Transport = &DiskCache{Base: http.DefaultTransport, Dir: dir, Log: log}
	}
	return &Client{
		HTTP:      client,
		Retry:     DefaultRetry,
		UserAgent: "Mozilla/5.0 (compatible; tbk)",
		Log:       log.With().Str("component", "remote").Logger(),
	}
}

// StatusError is returned for non 200 responses.
type StatusError struct {
	URL    string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("cannot http GET %s: %d %s", e.URL, e.Status, http.StatusText(e.Status))
}

// GetJSON performs an HTTP GET request and unmarshals the JSON response into data.
//
// Transport errors and 5xx responses are retried with exponential backoff.
func (c *Client) GetJSON(ctx context.Context, addr string, data any) error {
	resp, err := c.do(ctx, addr)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return &StatusError{URL: resp.Request.URL.Host + resp.Request.URL.Path, Status: resp.StatusCode}
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, resp.Body); err != nil {
		return err
	}
	if err := json.Unmarshal(buf.Bytes(), data); err != nil {
		return fmt.Errorf("cannot decode %s: %w", resp.Request.URL.Host+resp.Request.URL.Path, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, addr string) (*http.Response, error) {
	cfg := c.Retry
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultRetry.MaxAttempts
	}
	var lastErr error
	delay := cfg.BaseDelay
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		if c.UserAgent != "" {
			req.Header.Set("User-Agent", c.UserAgent)
		}

		resp, err := c.HTTP.Do(req)
		if err == nil && resp.StatusCode < 500 {
			return resp, nil
		}
		if err != nil {
			lastErr = err
		} else {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			resp.Body.Close()
			lastErr = fmt.Errorf("HTTP %d: %s", resp.StatusCode, body)
		}
		if ctx.Err() != nil || attempt == cfg.MaxAttempts {
			break
		}

		c.Log.Warn().Err(lastErr).Int("attempt", attempt).Int("max", cfg.MaxAttempts).Dur("delay", delay).Str("url", req.URL.Host+req.URL.Path).Msg("retrying")
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
		delay = min(delay*2, cfg.MaxDelay)
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	return nil, fmt.Errorf("all %d attempts failed, last error: %w", cfg.MaxAttempts, lastErr)
}

// DiskCache is a RoundTripper caching successful responses on disk.
//
// Keys include the current day, so the cache expires every day.
type DiskCache struct {
	Base  http.RoundTripper
	Dir   string
	Log   zerolog.Logger
	Today func() date.Date
}

func (c *DiskCache) RoundTrip(req *http.Request) (*http.Response, error) {
	today := date.Today
	if c.Today != nil {
		today = c.Today
	}
	key := fmt.Sprintf("%s %s %s", today(), req.Method, req.URL.String())
	key = fmt.Sprintf("tbk-%x", sha1.Sum([]byte(key)))

	if cached, err := c.get(key, req); err == nil {
		return cached, nil
	}

	resp, err := c.Base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	c.Log.Debug().Str("method", req.Method).Str("url", req.URL.Host+req.URL.Path).Int("status", resp.StatusCode).Msg("fetched")
	if resp.StatusCode >= 300 {
		return resp, nil
	}
	if err := c.put(key, resp); err != nil {
		c.Log.Warn().Err(err).Msg("cache write failed (ignored)")
	}
	return resp, nil
}

// get retrieves a cached response from disk
func (c *DiskCache) get(key string, req *http.Request) (*http.Response, error) {
	content, err := os.ReadFile(filepath.Join(c.Dir, key))
	if err != nil {
		return nil, err
	}
	return http.ReadResponse(bufio.NewReader(bytes.NewReader(content)), req)
}

// put stores a response to disk cache
func (c *DiskCache) put(key string, resp *http.Response) error {
	content, err := httputil.DumpResponse(resp, true)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.Dir, key), content, 0o644)
}
