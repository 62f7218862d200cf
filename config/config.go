// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/rs/zerolog/log"
)

// Global exposes the server configuration.
var Global ServerConfig

// ListenHost is the address the server binds to: all interfaces.
const ListenHost = "0.0.0.0"

// ServerConfig holds the application configuration.
//
// Every field is read from the process environment; see cmd/genconfig for a template.
type ServerConfig struct {
	Build buildInfo `yaml:"-"`

	Basic struct {
		RawPort string `env:"PORT" env-default:"3000" env-description:"TCP port to listen on (1-65535)" yaml:"port"`
		Port    uint16 `yaml:"-"`
	} `yaml:"basic"`

	Log struct {
		Level   string   `env:"LOG_LEVEL" env-default:"debug" env-description:"Minimum log level: debug, info, warn or error" yaml:"logLevel"`
		Format  string   `env:"LOG_FORMAT" env-default:"console" env-description:"Log format: console or json" yaml:"logFormat"`
		Outputs []string `env:"LOG_OUTPUTS" env-default:"/dev/stderr" env-description:"Comma separated log destinations (/dev/stdout, /dev/stderr or file paths)" yaml:"logOutputs"`
	} `yaml:"log"`

	Discord struct {
		Token      string  `env:"DISCORD_TOKEN" env-description:"Discord bot token used to look up users" yaml:"token"`
		APIURL     string  `env:"DISCORD_API_URL" env-default:"https://discord.com/api/v10" env-description:"Discord REST API base URL" yaml:"apiUrl"`
		CDNURL     string  `env:"DISCORD_CDN_URL" env-default:"https://cdn.discordapp.com" env-description:"Discord CDN base URL" yaml:"cdnUrl"`
		AvatarSize int     `env:"DISCORD_AVATAR_SIZE" env-default:"256" env-description:"Requested avatar size, a power of two between 16 and 4096" yaml:"avatarSize"`
		RateLimit  float64 `env:"DISCORD_RATE_LIMIT" env-default:"40" env-description:"Maximum upstream requests per second" yaml:"rateLimit"`
		RateBurst  int     `env:"DISCORD_RATE_BURST" env-default:"40" env-description:"Upstream request burst size" yaml:"rateBurst"`
	} `yaml:"discord"`

	Cache struct {
		Enabled  bool          `env:"CACHE_ENABLED" env-default:"true" env-description:"Cache upstream responses in memory" yaml:"enabled"`
		Size     int           `env:"CACHE_SIZE" env-default:"512" env-description:"Maximum number of cached upstream responses" yaml:"size"`
		TTL      time.Duration `env:"CACHE_TTL" env-default:"10m" env-description:"How long an upstream response stays cached" yaml:"ttl"`
		Compress bool          `env:"CACHE_COMPRESS" env-default:"true" env-description:"Store cached responses zstd-compressed" yaml:"compress"`
	} `yaml:"cache"`

	HTTP struct {
		ReadHeaderTimeout time.Duration `env:"HTTP_READ_HEADER_TIMEOUT" env-default:"15s" yaml:"readHeaderTimeout"`
		ReadTimeout       time.Duration `env:"HTTP_READ_TIMEOUT" env-default:"15s" yaml:"readTimeout"`
		WriteTimeout      time.Duration `env:"HTTP_WRITE_TIMEOUT" env-default:"30s" yaml:"writeTimeout"`
		IdleTimeout       time.Duration `env:"HTTP_IDLE_TIMEOUT" env-default:"30s" yaml:"idleTimeout"`
		ShutdownTimeout   time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"5s" yaml:"shutdownTimeout"`
	} `yaml:"http"`

	Compression struct {
		MinSize int `env:"COMPRESSION_MIN_SIZE" env-default:"1024" env-description:"Smallest response body in bytes that gets compressed" yaml:"minSize"`
	} `yaml:"compression"`

	CORS struct {
		MaxAge time.Duration `env:"CORS_MAX_AGE" env-default:"1h" env-description:"How long browsers may cache a preflight response" yaml:"maxAge"`
	} `yaml:"cors"`

	Development struct {
		InDevelopment bool `env:"DEV" env-description:"Enable development routes (pprof)" yaml:"inDevelopment"`
	} `yaml:"development"`
}

// LoadConfig loads the configuration from the environment, validates it
// and installs the process logger.
func (cfg *ServerConfig) LoadConfig() error {
	if parseCommandLineArgs() {
		printUsage(cfg)
		os.Exit(0)
	}

	cfg.Build.load()

	useDotEnv()

	if err := cfg.loadFromEnvironment(); err != nil {
		return err
	}

	if err := cfg.setupAudit(); err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}

	cfg.print()

	// Heuristically check for containerized environment; the Discord token is usually injected there.
	if isContainerized() && cfg.Discord.Token == "" {
		log.Warn().Msg("Running in a containerized environment without DISCORD_TOKEN; user lookups will fail.")
	}

	return nil
}

// loadFromEnvironment populates cfg from the process environment and validates it.
func (cfg *ServerConfig) loadFromEnvironment() error {
	if err := readEnv(cfg); err != nil {
		return fmt.Errorf("error loading environment variables: %w", err)
	}

	if err := cfg.validateAndSet(); err != nil {
		return fmt.Errorf("configuration invalid: %w", err)
	}

	return nil
}

// isContainerized checks for common indicators of a containerized environment.
//
// This is a heuristic and may not be 100% accurate.
func isContainerized() bool {
	if os.Getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true
	}

	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true
	}

	if _, err := os.Stat("/.containerenv"); err == nil {
		return true
	}

	// #nosec G304 -- We are checking a well-known system file for heuristics.
	cgroup, err := os.ReadFile("/proc/self/cgroup")
	if err == nil {
		content := string(cgroup)

		return strings.Contains(content, "docker") ||
			strings.Contains(content, "kubepods") ||
			strings.Contains(content, "containerd") ||
			strings.Contains(content, "lxc")
	}

	return false
}

// GetDurationEncoderOption returns a YAML encoder option that marshals
// time.Duration into a human-readable string format (e.g., "30m", "1h").
func GetDurationEncoderOption() yaml.EncodeOption {
	return yaml.CustomMarshaler[time.Duration](
		func(d time.Duration) ([]byte, error) {
			return yaml.Marshal(d.String())
		},
	)
}
