// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package middleware

import (
	"maps"
	"net/http"

	"codeberg.org/petbonk/petbonk/config"
)

// baseHeaders defines the default headers to be set in responses.
//
// Petbonk-Version and Petbonk-Revision are added dynamically in SetResponseHeaders.
// Cache-Control is owned by CacheControl and never set here.
var baseHeaders = http.Header{
	"Referrer-Policy":        {"no-referrer"},
	"X-Content-Type-Options": {"nosniff"},
	"X-Powered-By":           {"hatsune miku"},
}

// SetResponseHeaders adds default headers to HTTP responses.
func SetResponseHeaders(w http.ResponseWriter, r *http.Request, next http.Handler) {
	headers := w.Header()

	maps.Insert(headers, maps.All(baseHeaders))

	headers.Set("Petbonk-Version", config.BuildVersion)
	headers.Set("Petbonk-Revision", config.Global.Build.Revision())

	next.ServeHTTP(w, r)
}
