// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const dotEnvFilename = ".env"

// readEnv populates the provided struct with values from environment variables,
// falling back to the env-default tags.
func readEnv(spec any) error {
	return cleanenv.ReadEnv(spec)
}

// useDotEnv seeds the process environment from a .env file, checking
// the current working directory, then the directory of the binary.
//
// Variables that are already set are never overwritten. A missing file is not an error.
func useDotEnv() {
	candidates := make([]string, 0, 2)

	if cwd, err := os.Getwd(); err != nil {
		log.Warn().
			Err(err).
			Msg("Could not get current working directory")
	} else {
		candidates = append(candidates, filepath.Join(cwd, dotEnvFilename))
	}

	if exe, err := os.Executable(); err == nil {
		candidates = append(candidates, filepath.Join(filepath.Dir(exe), dotEnvFilename))
	}

	for _, envPath := range candidates {
		if tryLoadDotEnv(envPath) {
			return
		}
	}
}

// tryLoadDotEnv loads envPath into the process environment and reports whether it did.
func tryLoadDotEnv(envPath string) bool {
	err := godotenv.Load(envPath)
	switch {
	case err == nil:
		log.Info().
			Str("path", envPath).
			Msg("Loaded configuration from .env file")

		return true
	case errors.Is(err, fs.ErrNotExist):
		log.Debug().
			Str("path", envPath).
			Msg("No .env file found, skipping")
	default:
		log.Warn().
			Err(err).
			Str("path", envPath).
			Msg("Could not load .env file")
	}

	return false
}
