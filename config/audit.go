// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"

	"codeberg.org/petbonk/petbonk/core/audit"
)

const logFilePermissions = 0o666

// setupAudit installs the process logger described by cfg.Log.
func (cfg *ServerConfig) setupAudit() error {
	level, err := ParseLogLevel(cfg.Log.Level)
	if err != nil {
		return err
	}

	writers := []io.Writer{}

	for _, output := range cfg.Log.Outputs {
		var w io.Writer

		switch output {
		case "/dev/stdout":
			w = cfg.logWriter(os.Stdout)
		case "/dev/stderr":
			w = cfg.logWriter(os.Stderr)
		default:
			file, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermissions) // #nosec:G302,G304
			if err != nil {
				// If opening the file fails, we simply don't add it to the writers.
				fmt.Fprintf(os.Stderr, "Failed to open log file %s: %v\n", output, err)

				continue
			}

			w = cfg.logWriter(file)
		}

		writers = append(writers, w)
	}

	return audit.Install(audit.LoggerOptions{Level: level, Writers: writers})
}

// logWriter returns the writer for f matching cfg.Log.Format.
func (cfg *ServerConfig) logWriter(f *os.File) io.Writer {
	if cfg.Log.Format == "json" {
		return f
	}

	return ConsoleWriter(f)
}

// isTerminal returns true if the given file is a terminal.
func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// ConsoleWriter returns a writer for zerolog that has NoColor:isTerminal(f).
func ConsoleWriter(f *os.File) io.Writer {
	noColor := !isTerminal(f)

	w := zerolog.ConsoleWriter{Out: f, NoColor: noColor, TimeFormat: time.DateTime}

	if !noColor {
		w.FormatPrepare = func(m map[string]any) error {
			// pretty print request logs
			if sys, ok := m["sys"]; ok && sys == "http" {
				m["message"] = fmt.Sprintf("[%s] %v %-5s %s", m["destination"], m["status_code"], m["method"], m["url"])
				delete(m, "sys")
				delete(m, "method")
				delete(m, "status_code")
				delete(m, "url")
				delete(m, "destination")
			}

			return nil
		}
	}

	return w
}
