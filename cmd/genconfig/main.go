// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

// Command genconfig writes deploy/.env.example from the tags on config.ServerConfig.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/rs/zerolog/log"

	"codeberg.org/petbonk/petbonk/config"
	"codeberg.org/petbonk/petbonk/core/audit"
)

const (
	envOutputFile = "deploy/.env.example"
	filePerm      = 0o644
	dirPerm       = 0o755

	placeholderToken = "your-bot-token"

	envFileHeader = `# petbonk configuration (via environment variables)
#
# Copy this file to .env and customize the values below.
#
# This file was auto-generated using go run ./cmd/genconfig.

`
	proxySettingsComment = `
## Network proxy settings
## ref: https://pkg.go.dev/net/http#ProxyFromEnvironment
# HTTPS_PROXY=
# HTTP_PROXY=`
)

func main() {
	audit.SetDefaultLogger()

	if err := os.MkdirAll(filepath.Dir(envOutputFile), dirPerm); err != nil {
		log.Fatal().Err(err).Str("path", envOutputFile).Msg("Failed to create output directory")
	}

	if err := os.WriteFile(envOutputFile, []byte(renderEnvFile()), filePerm); err != nil {
		log.Fatal().Err(err).Str("path", envOutputFile).Msg("Failed to write .env.example file")
	}

	log.Info().Str("path", envOutputFile).Msg("Successfully generated .env.example")
}

// renderEnvFile builds the .env template, one section per top-level config struct.
func renderEnvFile() string {
	var sb strings.Builder
	sb.WriteString(envFileHeader)

	typ := reflect.TypeFor[config.ServerConfig]()

	for i := range typ.NumField() {
		section := typ.Field(i)
		if section.Type.Kind() != reflect.Struct || section.Name == "Build" {
			continue
		}

		fmt.Fprintf(&sb, "## %s\n", section.Name)

		for j := range section.Type.NumField() {
			writeEnvField(&sb, section.Type.Field(j))
		}

		sb.WriteString("\n")
	}

	sb.WriteString(strings.TrimSpace(proxySettingsComment) + "\n")

	return sb.String()
}

func writeEnvField(sb *strings.Builder, field reflect.StructField) {
	tag, ok := field.Tag.Lookup("env")
	if !ok {
		return
	}

	name := strings.Split(tag, ",")[0]

	if desc := field.Tag.Get("env-description"); desc != "" {
		fmt.Fprintf(sb, "# %s\n", desc)
	}

	switch name {
	case "DISCORD_TOKEN":
		// The only field the server cannot do without.
		fmt.Fprintf(sb, "%s=%q\n", name, placeholderToken)
	case "PORT":
		fmt.Fprintf(sb, "%s=%q\n", name, field.Tag.Get("env-default"))
	default:
		fmt.Fprintf(sb, "# %s=%s\n", name, field.Tag.Get("env-default"))
	}
}
