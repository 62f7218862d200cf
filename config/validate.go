// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// validation errors.
var (
	errInvalidPort       = errors.New("PORT must be an unsigned integer between 1 and 65535")
	errInvalidLogLevel   = errors.New("invalid Log.Level")
	errInvalidLogFormat  = errors.New("invalid Log.Format")
	errInvalidBaseURL    = errors.New("base URL must be an absolute http(s) URL")
	errInvalidAvatarSize = errors.New("Discord.AvatarSize must be a power of two between 16 and 4096")
	errInvalidRateLimit  = errors.New("Discord.RateLimit and Discord.RateBurst must be positive")
	errInvalidCacheSize  = errors.New("Cache.Size must be positive when the cache is enabled")
	errInvalidCacheTTL   = errors.New("Cache.TTL must be positive when the cache is enabled")
	errInvalidMinSize    = errors.New("Compression.MinSize cannot be negative")
)

const (
	minAvatarSize = 16
	maxAvatarSize = 4096
)

// validateAndSet validates the server configuration and populates derived fields.
func (cfg *ServerConfig) validateAndSet() error {
	port, err := parsePort(cfg.Basic.RawPort)
	if err != nil {
		return err
	}

	cfg.Basic.Port = port

	if _, err := ParseLogLevel(cfg.Log.Level); err != nil {
		return err
	}

	switch cfg.Log.Format {
	case "console", "json":
		// valid
	default:
		return fmt.Errorf("%w: %q", errInvalidLogFormat, cfg.Log.Format)
	}

	for name, raw := range map[string]*string{
		"Discord.APIURL": &cfg.Discord.APIURL,
		"Discord.CDNURL": &cfg.Discord.CDNURL,
	} {
		if err := validateBaseURL(raw); err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
	}

	size := cfg.Discord.AvatarSize
	if size < minAvatarSize || size > maxAvatarSize || size&(size-1) != 0 {
		return errInvalidAvatarSize
	}

	if cfg.Discord.RateLimit <= 0 || cfg.Discord.RateBurst <= 0 {
		return errInvalidRateLimit
	}

	if cfg.Cache.Enabled {
		if cfg.Cache.Size <= 0 {
			return errInvalidCacheSize
		}

		if cfg.Cache.TTL <= 0 {
			return errInvalidCacheTTL
		}
	}

	if cfg.Compression.MinSize < 0 {
		return errInvalidMinSize
	}

	return nil
}

// parsePort parses a base-10 TCP port. Zero and surrounding whitespace are rejected.
func parsePort(raw string) (uint16, error) {
	port, err := strconv.ParseUint(raw, 10, 16)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %w", errInvalidPort, raw, err)
	}

	if port == 0 {
		return 0, fmt.Errorf("%w: %q", errInvalidPort, raw)
	}

	return uint16(port), nil
}

// ParseLogLevel maps a configured level name to a zerolog level.
func ParseLogLevel(level string) (zerolog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel, nil
	case "info":
		return zerolog.InfoLevel, nil
	case "warn":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	default:
		return zerolog.NoLevel, fmt.Errorf("%w: %q", errInvalidLogLevel, level)
	}
}

// validateBaseURL checks that raw is an absolute http(s) URL and strips a trailing slash.
func validateBaseURL(raw *string) error {
	parsed, err := url.Parse(*raw)
	if err != nil {
		return fmt.Errorf("%w: %w", errInvalidBaseURL, err)
	}

	if (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return fmt.Errorf("%w: %q", errInvalidBaseURL, *raw)
	}

	*raw = strings.TrimSuffix(parsed.String(), "/")

	return nil
}
