// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package audit

import (
	"context"
	"encoding/base64"
	"fmt"
	"runtime/trace"
	"strconv"
	"time"

	servertiming "github.com/mitchellh/go-server-timing"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Span represents an HTTP exchange in flight, either a client request we serve
// or a request we make upstream.
type Span struct {
	// only these fields are set automatically
	task     *trace.Task
	start    time.Time
	duration time.Duration
	metric   *servertiming.Metric

	Destination TrafficDestination
	RequestID   string
	Method      string
	URL         string
	ClientIP    string
	StatusCode  int
	Size        int
	Error       error
}

// TrafficDestination describes the logical destination of an HTTP request.
type TrafficDestination string

// Constants for traffic destinations.
const (
	ToUser    TrafficDestination = "user"
	ToDiscord TrafficDestination = "discord"
	ToCDN     TrafficDestination = "cdn"
)

// ServerTimingName encodes the span as a Server-Timing metric name.
func (span Span) ServerTimingName() string {
	// base64 without trailing '=' to match the token syntax
	return string(span.Destination) + "$" + span.Method + "$" + base64.RawURLEncoding.EncodeToString([]byte(span.URL))
}

// Begin starts timing the span and attaches a runtime/trace task to ctx.
func (span *Span) Begin(ctx context.Context) context.Context {
	span.start = time.Now()

	ctx, span.task = trace.NewTask(ctx, "http."+string(span.Destination))
	if servertimingContext := servertiming.FromContext(ctx); servertimingContext != nil {
		span.metric = servertimingContext.NewMetric(span.ServerTimingName())
		span.metric.Extra = make(map[string]string)
		span.metric.Extra["start"] = strconv.FormatFloat(float64(span.start.UnixNano())/float64(time.Millisecond), 'f', -1, 64)
	}

	return ctx
}

// End stops timing the span. Calling it more than once is a no-op.
func (span *Span) End() {
	if span.task != nil {
		span.duration = time.Since(span.start)
		span.task.End()

		if span.metric != nil {
			span.metric.Duration = span.duration
		}

		span.task = nil
	}
}

// Duration reports how long the span ran. It is zero until End is called.
func (span Span) Duration() time.Duration {
	return span.duration
}

// Log writes the span as a single structured event.
//
// Requests served to users are logged at info level, upstream requests at debug level.
func (span Span) Log() {
	var event *zerolog.Event

	switch {
	case span.Destination == ToUser && span.StatusCode >= 500:
		event = log.Warn()
	case span.Destination == ToUser:
		event = log.Info()
	default:
		event = log.Debug()
	}

	event.Str("sys", "http")
	event.Str("method", span.Method)
	event.Str("url", span.URL)
	event.Int("status_code", span.StatusCode)
	event.Str("len", humanizeSize(span.Size))
	event.Dur("dur", span.duration)
	event.Str("destination", string(span.Destination))
	event.Str("request_id", span.RequestID)

	if span.ClientIP != "" {
		event.Str("client_ip", span.ClientIP)
	}

	if span.Error != nil {
		event.Err(span.Error)
	}

	event.Send()
}

const (
	bytesInKB = 1024
	bytesInMB = bytesInKB * bytesInKB
	bytesInGB = bytesInMB * bytesInKB
)

func humanizeSize(x int) string {
	if x < bytesInKB {
		return strconv.Itoa(x)
	}

	if x < bytesInMB {
		return fmt.Sprintf("%.2fK", float64(x)/bytesInKB)
	}

	if x < bytesInGB {
		return fmt.Sprintf("%.2fM", float64(x)/bytesInMB)
	}

	return fmt.Sprintf("%.2fG", float64(x)/bytesInGB)
}
