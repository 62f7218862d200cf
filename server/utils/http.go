// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package utils

import (
	"crypto/tls"
	"net"
	"net/http"
	"strings"
	"time"
)

const (
	// clientSessionCacheSize defines the size of the TLS session cache.
	clientSessionCacheSize = 20

	// maxIdleConnsPerHost defines maximum idle connections to keep per host.
	maxIdleConnsPerHost = 20

	// bufferSize defines the read and write buffer size in bytes (32KB).
	bufferSize = 32 * 1024

	// upstreamTimeout bounds a whole upstream exchange, body included.
	upstreamTimeout = 10 * time.Second
)

// HTTPClient is a pre-configured http.Client shared by all upstream requests.
var HTTPClient = &http.Client{
	Timeout: upstreamTimeout,
	Transport: &http.Transport{
		TLSClientConfig: &tls.Config{
			ClientSessionCache: tls.NewLRUClientSessionCache(clientSessionCacheSize),
			MinVersion:         tls.VersionTLS12,
		},
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        0,
		MaxIdleConnsPerHost: maxIdleConnsPerHost,
		WriteBufferSize:     bufferSize,
		ReadBufferSize:      bufferSize,
	},
}

// ClientIP returns the address of the client that made r.
//
// X-Forwarded-For and X-Real-Ip are only trusted when the direct peer is a
// private or loopback address, i.e. a reverse proxy we run behind.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}

	peer := net.ParseIP(host)
	if peer == nil || !(peer.IsPrivate() || peer.IsLoopback()) {
		return host
	}

	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		// The left-most entry is the original client.
		first, _, _ := strings.Cut(forwarded, ",")
		if ip := net.ParseIP(strings.TrimSpace(first)); ip != nil {
			return ip.String()
		}
	}

	if realIP := net.ParseIP(strings.TrimSpace(r.Header.Get("X-Real-Ip"))); realIP != nil {
		return realIP.String()
	}

	return host
}
