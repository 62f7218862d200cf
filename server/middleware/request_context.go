// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package middleware

import (
	"net/http"

	"codeberg.org/petbonk/petbonk/server/request_context"
)

// WithRequestContext attaches a RequestContext to each HTTP request and echoes its ID.
func WithRequestContext(w http.ResponseWriter, r *http.Request, next http.Handler) {
	ctx := request_context.WithRequestContext(r.Context(), r)

	w.Header().Set(request_context.RequestIDHeader, request_context.FromContext(ctx).RequestID)

	next.ServeHTTP(w, r.WithContext(ctx))
}
