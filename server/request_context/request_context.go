// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package request_context provides per-request state management for HTTP handlers.

This package is separate because Go disallows a cyclic import graph.
*/
package request_context

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// RequestIDHeader carries the request identifier in both directions.
const RequestIDHeader = "X-Request-Id"

// maxInboundRequestIDLength bounds request IDs accepted from clients.
const maxInboundRequestIDLength = 128

// RequestContext carries request-scoped data through the middleware chain.
type RequestContext struct {
	// RequestID is an identifier for tracing requests.
	RequestID string

	// Holds any error returned by the route handler.
	//
	// Automatically populated by middleware.CatchError when handlers return errors.
	RequestError error

	// HTTP status code sent in the response. Defaults to 200 OK.
	StatusCode int
}

// requestContextKeyType defines a unique type for a RequestContext key.
type requestContextKeyType struct{}

// requestContextKey is a unique key used to access RequestContext
// values from a context.Context.
var requestContextKey = requestContextKeyType{}

// WithRequestContext initializes a new request context and attaches it to
// the parent context.
//
// An inbound X-Request-Id is reused when it looks sane; otherwise a random UUID is generated.
func WithRequestContext(ctx context.Context, r *http.Request) context.Context {
	rc := RequestContext{
		RequestID:  requestID(r),
		StatusCode: http.StatusOK,
	}

	return context.WithValue(ctx, requestContextKey, &rc)
}

func requestID(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get(RequestIDHeader)); id != "" && len(id) <= maxInboundRequestIDLength && isPrintableASCII(id) {
		return id
	}

	return uuid.NewString()
}

func isPrintableASCII(s string) bool {
	for i := range len(s) {
		if s[i] < 0x21 || s[i] > 0x7e {
			return false
		}
	}

	return true
}

// FromContext extracts the RequestContext from a context, always returning
// a valid pointer.
//
// If no context is found, returns a zero-value instance.
func FromContext(ctx context.Context) *RequestContext {
	if v := ctx.Value(requestContextKey); v != nil {
		if rc, ok := v.(*RequestContext); ok {
			return rc
		}
	}

	return &RequestContext{}
}

// FromRequest is a convenience wrapper for extracting RequestContext
// directly from HTTP requests.
func FromRequest(r *http.Request) *RequestContext {
	return FromContext(r.Context())
}
