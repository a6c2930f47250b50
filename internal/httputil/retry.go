// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared across stages.
package httputil

import (
	"context"
	"io"
	"net/http"
	"time"
)

// Backoff bases. Tests override these to avoid real sleeps.
var (
	// RateLimitBaseDelay is the base duration for exponential backoff on
	// HTTP 429 responses.
	RateLimitBaseDelay = 5 * time.Second

	// ServerErrorBaseDelay is the base duration for linear backoff on
	// HTTP 5xx responses.
	ServerErrorBaseDelay = 2 * time.Second
)

const (
	defaultMaxTries = 8

	maxRateLimitDelay   = 60 * time.Second
	maxServerErrorDelay = 20 * time.Second
)

// DoWithRetry executes an HTTP request, retrying on HTTP 429 and 5xx.
//
// A 429 backs off exponentially: 5s, 10s, 20s, 40s, capped at 60s. A 5xx
// backs off linearly: 2s, 4s, 6s, capped at 20s. When maxTries is 0 the
// default (8) is used. The response body is drained and closed before each
// retry sleep; if the context is cancelled during a wait the function
// returns ctx.Err(). After exhausting tries the last retryable response is
// returned so the caller can inspect it. Other status codes, including
// non-429 4xx, return immediately.
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, maxTries int) (*http.Response, error) {
	if maxTries <= 0 {
		maxTries = defaultMaxTries
	}

	for try := 1; ; try++ {
		resp, err := client.Do(req.Clone(ctx))
		if err != nil {
			return nil, err
		}

		var wait time.Duration
		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			wait = RateLimitBaseDelay << (try - 1)
			if wait > maxRateLimitDelay {
				wait = maxRateLimitDelay
			}
		case resp.StatusCode >= 500 && resp.StatusCode < 600:
			wait = ServerErrorBaseDelay * time.Duration(try)
			if wait > maxServerErrorDelay {
				wait = maxServerErrorDelay
			}
		default:
			return resp, nil
		}

		if try >= maxTries {
			return resp, nil
		}

		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
}
