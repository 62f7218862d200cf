// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package middleware

import (
	"net/http"
	"strconv"
	"time"
)

// CORS returns a middleware that allows any origin and any request header, but only GET.
//
// Preflight requests are answered here and never reach next: 200 with the allow
// headers when GET is requested, 400 without them otherwise.
func CORS(maxAge time.Duration) Middleware {
	maxAgeSeconds := strconv.FormatInt(int64(maxAge/time.Second), 10)

	return func(w http.ResponseWriter, r *http.Request, next http.Handler) {
		headers := w.Header()

		headers.Set("Access-Control-Allow-Origin", "*")

		if !isPreflight(r) {
			next.ServeHTTP(w, r)

			return
		}

		headers.Add("Vary", "Origin")
		headers.Add("Vary", "Access-Control-Request-Method")
		headers.Add("Vary", "Access-Control-Request-Headers")

		if r.Header.Get("Access-Control-Request-Method") != http.MethodGet {
			headers.Del("Access-Control-Allow-Origin")
			w.WriteHeader(http.StatusBadRequest)

			return
		}

		headers.Set("Access-Control-Allow-Methods", http.MethodGet)

		if requested := r.Header.Get("Access-Control-Request-Headers"); requested != "" {
			headers.Set("Access-Control-Allow-Headers", requested)
		}

		headers.Set("Access-Control-Max-Age", maxAgeSeconds)
		w.WriteHeader(http.StatusOK)
	}
}

func isPreflight(r *http.Request) bool {
	return r.Method == http.MethodOptions &&
		r.Header.Get("Origin") != "" &&
		r.Header.Get("Access-Control-Request-Method") != ""
}
