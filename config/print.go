// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/rs/zerolog/log"
)

const redactedValue = "[redacted]"

// printable returns a shallow copy of cfg with secrets redacted.
func (cfg *ServerConfig) printable() ServerConfig {
	printableConfig := *cfg

	if printableConfig.Discord.Token != "" {
		printableConfig.Discord.Token = redactedValue
	}

	return printableConfig
}

func (cfg *ServerConfig) print() {
	log.Info().
		Str("version", BuildVersion).
		Str("revision", cfg.Build.Revision()).
		Uint16("port", cfg.Basic.Port).
		Msg("Starting petbonk")

	configYAML, err := yaml.MarshalWithOptions(
		cfg.printable(),
		GetDurationEncoderOption(),
	)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal config to YAML for printing")

		return
	}

	log.Info().
		Msg("Application configuration:")
	fmt.Fprintln(os.Stderr, string(configYAML))
}
