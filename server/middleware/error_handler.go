// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package middleware

import (
	"encoding/json"
	"errors"
	"maps"
	"net/http"
	"net/http/httptest"

	"github.com/rs/zerolog/log"

	"codeberg.org/petbonk/petbonk/core/discord"
	"codeberg.org/petbonk/petbonk/core/requests"
	"codeberg.org/petbonk/petbonk/server/request_context"
)

// StatusClientClosedRequest is recorded when the client went away before a response was written.
const StatusClientClosedRequest = 499

// CatchError wraps HTTP handlers that return an error, providing centralized error handling
// and response buffering.
//
// The handler's output is buffered using an httptest.ResponseRecorder and any error it
// returns is stored in the request context. When the handler returns an error, the buffered
// response is discarded and replaced by a JSON error with the status from errorStatus.
// When the client has gone away, nothing is written at all and the status is recorded
// as StatusClientClosedRequest. Upstream timeouts are not treated as the client going away.
func CatchError(handler func(w http.ResponseWriter, r *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := request_context.FromRequest(r)

		recorder := httptest.NewRecorder()

		err := handler(recorder, r)

		ctx.RequestError = err

		switch {
		case err != nil && r.Context().Err() != nil:
			ctx.StatusCode = StatusClientClosedRequest

		case err != nil:
			ctx.StatusCode = errorStatus(err)

			writeJSONError(w, ctx.StatusCode, publicMessage(ctx.StatusCode, err))

		default:
			ctx.StatusCode = recorder.Code

			maps.Copy(w.Header(), recorder.Header())
			w.WriteHeader(recorder.Code)

			if _, err := recorder.Body.WriteTo(w); err != nil {
				log.Err(err).Msg("Failed to write response body")
			}
		}
	}
}

// errorStatus maps a handler error to the HTTP status returned to the client.
func errorStatus(err error) int {
	var apiErr *requests.APIError

	switch {
	case errors.Is(err, discord.ErrInvalidUserID):
		return http.StatusBadRequest
	case errors.Is(err, discord.ErrUnknownUser):
		return http.StatusNotFound
	case requests.IsTimeout(err):
		return http.StatusGatewayTimeout
	case errors.As(err, &apiErr):
		if apiErr.StatusCode == http.StatusNotFound {
			return http.StatusNotFound
		}

		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage returns the message shown to clients; internal errors are not exposed.
func publicMessage(status int, err error) string {
	switch status {
	case http.StatusBadRequest:
		return err.Error()
	case http.StatusNotFound:
		return "user not found"
	case http.StatusBadGateway:
		return "upstream request failed"
	case http.StatusGatewayTimeout:
		return "upstream request timed out"
	default:
		return http.StatusText(status)
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(struct {
		Error string `json:"error"`
	}{Error: message}); err != nil {
		log.Err(err).Msg("Failed to write error response")
	}
}
