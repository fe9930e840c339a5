package rostercheck

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
)

// Outcome of one roster request.
type outcome int

const (
	outcomeOK outcome = iota
	outcomeRejected
	outcomeFailed
)

// HTTPClient wraps http.Client with the service base URL.
type HTTPClient struct {
	client  *http.Client
	baseURL string
}

func newHTTPClient(cfg *Config) *HTTPClient {
	return &HTTPClient{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: cfg.BaseURL,
	}
}

func (c *HTTPClient) do(ctx context.Context, method, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return resp, nil
}

// activities fetches GET /activities.
func (c *HTTPClient) activities(ctx context.Context) (map[string]Activity, error) {
	resp, err := c.do(ctx, http.MethodGet, "/activities")
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list activities: unexpected status %d", resp.StatusCode)
	}
	var out map[string]Activity
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode activities: %w", err)
	}
	return out, nil
}

// roster sends a signup or unregister request. A 400 means the roster
// already had (or lacked) the student.
func (c *HTTPClient) roster(ctx context.Context, method, action string, s Signup) outcome {
	path := "/activities/" + url.PathEscape(s.Activity) + "/" + action + "?email=" + url.QueryEscape(s.Email)
	resp, err := c.do(ctx, method, path)
	if err != nil {
		return outcomeFailed
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return outcomeOK
	case http.StatusBadRequest:
		return outcomeRejected
	default:
		return outcomeFailed
	}
}

// tally counts outcomes across workers.
type tally struct {
	ok, rejected, failed atomic.Int64
}

func (t *tally) add(o outcome) {
	switch o {
	case outcomeOK:
		t.ok.Add(1)
	case outcomeRejected:
		t.rejected.Add(1)
	default:
		t.failed.Add(1)
	}
}

// fanOut runs fn over every item with the given number of goroutines.
func fanOut(ctx context.Context, workers int, items []Signup, fn func(context.Context, Signup) outcome) *tally {
	workers = max(workers, 1)
	var (
		t  tally
		wg sync.WaitGroup
	)
	work := make(chan Signup, workers*2)

	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for s := range work {
				t.add(fn(ctx, s))
			}
		}()
	}

	go func() {
		defer close(work)
		for _, s := range items {
			select {
			case <-ctx.Done():
				return
			case work <- s:
			}
		}
	}()

	wg.Wait()
	return &t
}
