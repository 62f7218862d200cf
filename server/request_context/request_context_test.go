// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package request_context

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithRequestContextGeneratesID(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodGet, "/d/1", nil)
	rc := FromContext(WithRequestContext(r.Context(), r))

	_, err := uuid.Parse(rc.RequestID)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rc.StatusCode)
}

func TestWithRequestContextReusesInboundID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		inbound string
		reused  bool
	}{
		{name: "sane", inbound: "abc-123", reused: true},
		{name: "contains space", inbound: "abc 123", reused: false},
		{name: "too long", inbound: strings.Repeat("a", maxInboundRequestIDLength+1), reused: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.Header.Set(RequestIDHeader, tt.inbound)

			got := FromContext(WithRequestContext(r.Context(), r)).RequestID
			if tt.reused {
				assert.Equal(t, tt.inbound, got)
			} else {
				assert.NotEqual(t, tt.inbound, got)
			}
		})
	}
}

func TestFromContextWithoutValue(t *testing.T) {
	t.Parallel()

	rc := FromContext(context.Background())
	require.NotNil(t, rc)
	assert.Empty(t, rc.RequestID)
}
