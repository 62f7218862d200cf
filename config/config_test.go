// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoadFromEnvironment verifies environment parsing and validation.
//
// t.Setenv is incompatible with t.Parallel, so these cases run sequentially.
func TestLoadFromEnvironment(t *testing.T) {
	tests := []struct {
		name     string
		env      map[string]string
		wantErr  bool
		wantPort uint16
	}{
		{
			name:     "Default port",
			env:      map[string]string{},
			wantPort: 3000,
		},
		{
			name:     "Explicit port",
			env:      map[string]string{"PORT": "8080"},
			wantPort: 8080,
		},
		{
			name:     "Highest port",
			env:      map[string]string{"PORT": "65535"},
			wantPort: 65535,
		},
		{
			name:    "Non-numeric port",
			env:     map[string]string{"PORT": "abc"},
			wantErr: true,
		},
		{
			name:    "Zero port",
			env:     map[string]string{"PORT": "0"},
			wantErr: true,
		},
		{
			name:    "Port out of range",
			env:     map[string]string{"PORT": "65536"},
			wantErr: true,
		},
		{
			name:    "Hexadecimal port",
			env:     map[string]string{"PORT": "0x50"},
			wantErr: true,
		},
		{
			name:    "Negative port",
			env:     map[string]string{"PORT": "-1"},
			wantErr: true,
		},
		{
			name:    "Invalid log level",
			env:     map[string]string{"LOG_LEVEL": "verbose"},
			wantErr: true,
		},
		{
			name:    "Invalid log format",
			env:     map[string]string{"LOG_FORMAT": "xml"},
			wantErr: true,
		},
		{
			name:    "Relative API URL",
			env:     map[string]string{"DISCORD_API_URL": "/api"},
			wantErr: true,
		},
		{
			name:    "Avatar size not a power of two",
			env:     map[string]string{"DISCORD_AVATAR_SIZE": "100"},
			wantErr: true,
		},
		{
			name:    "Zero cache size with cache enabled",
			env:     map[string]string{"CACHE_ENABLED": "true", "CACHE_SIZE": "0"},
			wantErr: true,
		},
		{
			name:     "Zero cache size with cache disabled",
			env:      map[string]string{"CACHE_ENABLED": "false", "CACHE_SIZE": "0"},
			wantPort: 3000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unsetEnv(t, "PORT")

			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			var cfg ServerConfig

			err := cfg.loadFromEnvironment()
			if tt.wantErr {
				require.Error(t, err)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantPort, cfg.Basic.Port)
		})
	}
}

// unsetEnv removes key for the duration of the test, restoring it afterwards.
func unsetEnv(t *testing.T, key string) {
	t.Helper()

	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}

func TestLoadFromEnvironmentDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "LOG_LEVEL", "DISCORD_AVATAR_SIZE", "COMPRESSION_MIN_SIZE"} {
		unsetEnv(t, key)
	}

	t.Setenv("DISCORD_API_URL", "https://discord.test/api/")

	var cfg ServerConfig

	require.NoError(t, cfg.loadFromEnvironment())

	assert.Equal(t, uint16(3000), cfg.Basic.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "https://discord.test/api", cfg.Discord.APIURL, "trailing slash is stripped")
	assert.Equal(t, 256, cfg.Discord.AvatarSize)
	assert.Equal(t, 1024, cfg.Compression.MinSize)
}

func TestParsePort(t *testing.T) {
	t.Parallel()

	port, err := parsePort("3000")
	require.NoError(t, err)
	assert.Equal(t, uint16(3000), port)

	for _, raw := range []string{"", "0", " 3000 ", "3000\n", "+3000", "65536", "0x50"} {
		_, err = parsePort(raw)
		require.ErrorIs(t, err, errInvalidPort, "%q", raw)
	}
}

func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	for name, want := range map[string]zerolog.Level{
		"debug": zerolog.DebugLevel,
		"INFO":  zerolog.InfoLevel,
		"warn":  zerolog.WarnLevel,
		"error": zerolog.ErrorLevel,
	} {
		got, err := ParseLogLevel(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	_, err := ParseLogLevel("trace")
	require.ErrorIs(t, err, errInvalidLogLevel)
}

func TestPrintableRedactsToken(t *testing.T) {
	t.Parallel()

	var cfg ServerConfig
	cfg.Discord.Token = "secret-token"

	out, err := yaml.MarshalWithOptions(cfg.printable(), GetDurationEncoderOption())
	require.NoError(t, err)

	assert.NotContains(t, string(out), "secret-token")
	assert.Contains(t, string(out), redactedValue)
	assert.Equal(t, "secret-token", cfg.Discord.Token, "original config is untouched")
}

func TestRevision(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "unknown", (&buildInfo{}).Revision())

	b := buildInfo{VcsRevision: "0123456789abcdef", VcsTime: "2025-01-02T03:04:05Z", VcsModified: true}
	assert.Equal(t, "2025-01-02-01234567+dirty", b.Revision())
}

func TestTryLoadDotEnv(t *testing.T) {
	unsetEnv(t, "CACHE_TTL")
	t.Setenv("CACHE_SIZE", "64")

	dir := t.TempDir()
	envPath := filepath.Join(dir, dotEnvFilename)
	require.NoError(t, os.WriteFile(envPath, []byte("CACHE_TTL=5m\nCACHE_SIZE=1\n"), 0o600))

	assert.False(t, tryLoadDotEnv(filepath.Join(dir, "missing.env")))
	assert.True(t, tryLoadDotEnv(envPath))

	assert.Equal(t, "5m", os.Getenv("CACHE_TTL"))
	assert.Equal(t, "64", os.Getenv("CACHE_SIZE"), "variables already set are not overwritten")
}
