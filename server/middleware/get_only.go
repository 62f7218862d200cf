// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package middleware

import "net/http"

// GetOnly answers every method other than GET with 405 Method Not Allowed.
//
// http.ServeMux lets "GET" patterns match HEAD as well; this keeps HEAD away from next.
func GetOnly(w http.ResponseWriter, r *http.Request, next http.Handler) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)

		return
	}

	next.ServeHTTP(w, r)
}
