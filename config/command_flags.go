// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import (
	"flag"
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
)

// parseCommandLineArgs defines and parses flags, returning whether usage was requested.
func parseCommandLineArgs() bool {
	var help bool

	if flag.Lookup("help") == nil {
		flag.BoolVar(&help, "help", false, "Print the supported environment variables and exit.")
	}

	if !flag.Parsed() {
		flag.Parse()
	}

	return help
}

// printUsage writes the environment variable reference to stderr.
func printUsage(cfg *ServerConfig) {
	fmt.Fprintf(os.Stderr, "petbonk %s\n\n", BuildVersion)
	cleanenv.FUsage(os.Stderr, cfg, nil, flag.Usage)()
}
