// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()

	var buf bytes.Buffer

	previous := log.Logger
	log.Logger = zerolog.New(&buf)

	t.Cleanup(func() { log.Logger = previous })

	return &buf
}

func TestSpanLog(t *testing.T) {
	buf := captureLog(t)

	span := Span{
		Destination: ToUser,
		RequestID:   "req-1",
		Method:      "GET",
		URL:         "/d/80351110224678912",
		ClientIP:    "10.0.0.1",
		Size:        2048,
	}

	_ = span.Begin(context.Background())
	span.End()
	span.End() // idempotent

	span.StatusCode = 200
	span.Error = errors.New("boom")
	span.Log()

	var event map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &event))

	assert.Equal(t, "info", event["level"])
	assert.Equal(t, "http", event["sys"])
	assert.Equal(t, "GET", event["method"])
	assert.Equal(t, "/d/80351110224678912", event["url"])
	assert.EqualValues(t, 200, event["status_code"])
	assert.Equal(t, "2.00K", event["len"])
	assert.Equal(t, "user", event["destination"])
	assert.Equal(t, "req-1", event["request_id"])
	assert.Equal(t, "10.0.0.1", event["client_ip"])
	assert.Equal(t, "boom", event["error"])
}

func TestSpanLogLevels(t *testing.T) {
	tests := []struct {
		name  string
		span  Span
		level string
	}{
		{"user ok", Span{Destination: ToUser, StatusCode: 200}, "info"},
		{"user server error", Span{Destination: ToUser, StatusCode: 502}, "warn"},
		{"upstream", Span{Destination: ToDiscord, StatusCode: 500}, "debug"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := captureLog(t)

			tt.span.Log()

			var event map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &event))
			assert.Equal(t, tt.level, event["level"])
		})
	}
}

func TestHumanizeSize(t *testing.T) {
	t.Parallel()

	tests := map[int]string{
		0:                 "0",
		1023:              "1023",
		1024:              "1.00K",
		1536:              "1.50K",
		bytesInMB:         "1.00M",
		3 * bytesInGB / 2: "1.50G",
	}

	for in, want := range tests {
		assert.Equal(t, want, humanizeSize(in), "humanizeSize(%d)", in)
	}
}
