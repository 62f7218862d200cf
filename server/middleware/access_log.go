// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package middleware

import (
	"net/http"

	"codeberg.org/petbonk/petbonk/core/audit"
	"codeberg.org/petbonk/petbonk/server/request_context"
	"codeberg.org/petbonk/petbonk/server/utils"
)

// statusRecorder records the status code and body size written through it.
type statusRecorder struct {
	http.ResponseWriter

	status int
	size   int
}

func (rec *statusRecorder) WriteHeader(code int) {
	if rec.status == 0 {
		rec.status = code
	}

	rec.ResponseWriter.WriteHeader(code)
}

func (rec *statusRecorder) Write(b []byte) (int, error) {
	if rec.status == 0 {
		rec.status = http.StatusOK
	}

	n, err := rec.ResponseWriter.Write(b)
	rec.size += n

	return n, err
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (rec *statusRecorder) Unwrap() http.ResponseWriter {
	return rec.ResponseWriter
}

// AccessLog logs one line per request once the response is complete.
//
// The status logged is the one the client received; a request abandoned by the client
// is logged with StatusClientClosedRequest.
func AccessLog(w http.ResponseWriter, r *http.Request, next http.Handler) {
	rc := request_context.FromRequest(r)

	span := audit.Span{
		Destination: audit.ToUser,
		RequestID:   rc.RequestID,
		Method:      r.Method,
		URL:         r.URL.String(),
		ClientIP:    utils.ClientIP(r),
	}

	_ = span.Begin(r.Context())

	rec := &statusRecorder{ResponseWriter: w}

	next.ServeHTTP(rec, r)

	span.End()

	switch {
	case rec.status != 0:
		span.StatusCode = rec.status
	case rc.StatusCode == StatusClientClosedRequest:
		span.StatusCode = StatusClientClosedRequest
	default:
		// net/http sends 200 for handlers that write nothing.
		span.StatusCode = http.StatusOK
	}

	span.Size = rec.size
	span.Error = rc.RequestError

	span.Log()
}
