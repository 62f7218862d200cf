// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/petbonk/petbonk/core/discord"
	"codeberg.org/petbonk/petbonk/server/middleware"
	"codeberg.org/petbonk/petbonk/server/routes"
	"codeberg.org/petbonk/petbonk/server/routes/bonk"
	"codeberg.org/petbonk/petbonk/server/routes/pet"
)

// TestRouterUpstreamTimeout checks that a Discord API slower than the HTTP client
// timeout yields a 504 JSON error rather than an empty success.
func TestRouterUpstreamTimeout(t *testing.T) {
	t.Parallel()

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(300 * time.Millisecond):
		}

		_, _ = w.Write([]byte(`{"id":"` + testUserID + `","avatar":"abc"}`))
	}))
	t.Cleanup(upstream.Close)

	users := discord.NewClient(discord.Options{
		APIURL:     upstream.URL + "/api",
		CDNURL:     upstream.URL + "/cdn",
		AvatarSize: 256,
		HTTPClient: &http.Client{Timeout: 50 * time.Millisecond},
	})

	router := NewRouter()
	require.NoError(t, router.RegisterMiddleware())
	router.DefineRoutes(pet.Namespace(users), bonk.Namespace(users))

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/d/"+testUserID, nil))

	assert.Equal(t, http.StatusGatewayTimeout, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "application/json")
	assert.JSONEq(t, `{"error":"upstream request timed out"}`, rr.Body.String())
	assert.Equal(t, []string{maxAge(pet.MaxAge)}, rr.Header().Values("Cache-Control"))
}

// TestRouterAbandonedRequest checks that nothing is written for a client that went
// away, and that the access log records it as such.
//
// It replaces the global logger and so must not run in parallel.
func TestRouterAbandonedRequest(t *testing.T) {
	router := NewRouter()
	require.NoError(t, router.RegisterMiddleware())
	router.DefineRoutes(
		routes.Namespace{Prefix: pet.Prefix, MaxAge: pet.MaxAge, Renderer: &fakeRenderer{err: context.Canceled}},
		routes.Namespace{Prefix: bonk.Prefix, MaxAge: bonk.MaxAge, Renderer: &fakeRenderer{name: "bonk"}},
	)

	var buf bytes.Buffer

	previous := log.Logger
	log.Logger = zerolog.New(&buf)

	t.Cleanup(func() { log.Logger = previous })

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequestWithContext(ctx, http.MethodGet, "/d/"+testUserID, nil))

	assert.False(t, rr.Flushed)
	assert.Empty(t, rr.Body.String())
	assert.Empty(t, rr.Header().Values("Cache-Control"))

	var entry map[string]any

	for line := range strings.SplitSeq(strings.TrimSpace(buf.String()), "\n") {
		if strings.Contains(line, `"sys":"http"`) {
			require.NoError(t, json.Unmarshal([]byte(line), &entry))
		}
	}

	require.NotNil(t, entry, "access log line missing: %s", buf.String())
	assert.InDelta(t, float64(middleware.StatusClientClosedRequest), entry["status_code"], 0)
	assert.Contains(t, entry["error"], "context canceled")
}
