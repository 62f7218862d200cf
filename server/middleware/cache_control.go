// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package middleware

import (
	"errors"
	"fmt"
	"maps"
	"net/http"
	"net/http/httptest"
	"strconv"

	"github.com/rs/zerolog/log"
	"golang.org/x/net/http/httpguts"

	"codeberg.org/petbonk/petbonk/server/request_context"
)

// CacheControlHeader is the header injected by CacheControl.
const CacheControlHeader = "Cache-Control"

var errInvalidHeader = errors.New("invalid response header")

// CacheControl returns a middleware that sets "Cache-Control: max-age=<maxAge>" on every
// response produced by next, overwriting any value next set.
//
// The response of next is buffered so the header can be set after next has written it.
// Nothing is written for requests abandoned by the client.
func CacheControl(maxAge uint64) Middleware {
	return injectHeader(CacheControlHeader, "max-age="+strconv.FormatUint(maxAge, 10))
}

func injectHeader(name, value string) Middleware {
	return func(w http.ResponseWriter, r *http.Request, next http.Handler) {
		recorder := httptest.NewRecorder()

		next.ServeHTTP(recorder, r)

		// The client is gone and next wrote nothing for it.
		if request_context.FromRequest(r).StatusCode == StatusClientClosedRequest {
			return
		}

		if !httpguts.ValidHeaderFieldName(name) || !httpguts.ValidHeaderFieldValue(value) {
			ctx := request_context.FromRequest(r)
			ctx.RequestError = fmt.Errorf("%w: %s: %q", errInvalidHeader, name, value)
			ctx.StatusCode = http.StatusInternalServerError

			log.Error().
				Err(ctx.RequestError).
				Str("request_id", ctx.RequestID).
				Msg("Discarding response")

			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)

			return
		}

		maps.Copy(w.Header(), recorder.Header())
		w.Header().Set(name, value)
		w.WriteHeader(recorder.Code)

		if _, err := recorder.Body.WriteTo(w); err != nil {
			log.Err(err).Msg("Failed to write response body")
		}
	}
}
