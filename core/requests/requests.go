// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

// Package requests performs rate limited, cached HTTP requests against upstream services.
package requests

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"codeberg.org/petbonk/petbonk/core/audit"
	"codeberg.org/petbonk/petbonk/server/request_context"
)

// maxResponseSize caps how much of an upstream response body is read.
const maxResponseSize = 16 << 20

var (
	errInvalidJSON      = errors.New("response contained invalid JSON")
	errAPIResponseError = errors.New("API response indicated error")
	errResponseTooLarge = errors.New("response body too large")
)

// APIError represents a non-2xx response from an upstream service.
type APIError struct {
	// StatusCode is the HTTP status code from the response.
	StatusCode int

	// Message contains the error message from the API response, or the status text.
	Message string

	// Err is the underlying error cause.
	Err error
}

// Error returns a formatted error message including the status code and API message if available.
func (e *APIError) Error() string {
	var b strings.Builder

	b.WriteString(e.Err.Error())

	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}

	fmt.Fprintf(&b, " (status code: %d)", e.StatusCode)

	return b.String()
}

// Unwrap returns the underlying error for use with errors.Is and errors.As.
func (e *APIError) Unwrap() error {
	return e.Err
}

// Options configure a [Client].
type Options struct {
	// HTTPClient sends the requests. Required.
	HTTPClient *http.Client

	// RateLimit is the sustained number of requests per second. Zero disables limiting.
	RateLimit float64
	RateBurst int

	// Cache stores successful GET responses. Nil disables caching.
	Cache *ResponseCache

	// Header is added to every request.
	Header http.Header
}

// Client sends requests to a single upstream service.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	cache      *ResponseCache
	header     http.Header
}

// NewClient returns a Client configured by opts.
func NewClient(opts Options) *Client {
	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), max(opts.RateBurst, 1))
	}

	return &Client{
		httpClient: opts.HTTPClient,
		limiter:    limiter,
		cache:      opts.Cache,
		header:     opts.Header.Clone(),
	}
}

// GetJSON makes a GET request and returns the body after checking that it is valid JSON.
//
// Non-2xx responses are returned as *APIError with the "message" field of the body, if any.
func (c *Client) GetJSON(ctx context.Context, url string, destination audit.TrafficDestination) ([]byte, error) {
	body, err := c.GetBytes(ctx, url, destination)
	if err != nil {
		return nil, err
	}

	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: %q", errInvalidJSON, truncate(body, 128))
	}

	return body, nil
}

// GetBytes makes a GET request and returns the response body.
//
// Non-2xx responses are returned as *APIError.
func (c *Client) GetBytes(ctx context.Context, url string, destination audit.TrafficDestination) ([]byte, error) {
	if body, ok := c.cache.get(url); ok {
		return body, nil
	}

	statusCode, body, err := c.do(ctx, url, destination)
	if err != nil {
		return nil, err
	}

	if statusCode < http.StatusOK || statusCode >= http.StatusMultipleChoices {
		// Attempt to extract an error message from the JSON body.
		message := gjson.GetBytes(body, "message").String()

		// Fall back to the HTTP status text if no JSON message is found.
		if message == "" {
			message = http.StatusText(statusCode)
		}

		return nil, &APIError{
			StatusCode: statusCode,
			Message:    message,
			Err:        errAPIResponseError,
		}
	}

	c.cache.add(url, body)

	return body, nil
}

// do waits for the rate limiter, then sends a GET request and reads the body.
func (c *Client) do(ctx context.Context, url string, destination audit.TrafficDestination) (int, []byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, nil, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}

	for name, values := range c.header {
		for _, v := range values {
			req.Header.Add(name, v)
		}
	}

	return c.sendRequest(ctx, req, destination)
}

// sendRequest executes the HTTP request, reads the body and logs the exchange.
func (c *Client) sendRequest(
	ctx context.Context,
	req *http.Request,
	destination audit.TrafficDestination,
) (_ int, _ []byte, err error) {
	span := audit.Span{
		Destination: destination,
		RequestID:   request_context.FromContext(ctx).RequestID + "-" + uuid.NewString()[:8],
		Method:      req.Method,
		URL:         redactURL(req.URL.String()),
	}

	_ = span.Begin(ctx)

	defer func() {
		span.Error = err
		span.End()
		span.Log()
	}()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to make HTTP request: %w", err)
	}
	defer resp.Body.Close()

	span.StatusCode = resp.StatusCode

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize+1))
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if len(body) > maxResponseSize {
		return 0, nil, errResponseTooLarge
	}

	span.Size = len(body)

	return resp.StatusCode, body, nil
}

// IsTimeout reports whether err is an upstream timeout: an exceeded deadline,
// including http.Client.Timeout, or a network error that timed out.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error

	return errors.As(err, &netErr) && netErr.Timeout()
}

// redactURL drops the query string, which may carry signed parameters.
func redactURL(raw string) string {
	if i := strings.IndexByte(raw, '?'); i >= 0 {
		return raw[:i]
	}

	return raw
}

func truncate(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}

	return append(bytes.Clone(b[:n]), "..."...)
}
