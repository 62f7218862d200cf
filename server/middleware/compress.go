// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package middleware

import (
	"fmt"
	"net/http"

	"github.com/klauspost/compress/gzhttp"
)

// Compress returns a middleware that gzip-compresses response bodies of at least minSize
// bytes for clients that accept it. Already-compressed content types are left alone.
func Compress(minSize int) (Middleware, error) {
	wrapper, err := gzhttp.NewWrapper(gzhttp.MinSize(minSize))
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip wrapper: %w", err)
	}

	return func(w http.ResponseWriter, r *http.Request, next http.Handler) {
		wrapper(next).ServeHTTP(w, r)
	}, nil
}
