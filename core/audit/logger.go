// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package audit

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/diode"
	"github.com/rs/zerolog/log"
)

const (
	// diodeBufferSize is the number of log messages held before the writer starts dropping.
	diodeBufferSize = 1000

	// diodePollInterval is how often the diode reader drains the buffer.
	diodePollInterval = 10 * time.Millisecond
)

// ErrLoggerInstalled is returned by Install when the process logger was already installed.
var ErrLoggerInstalled = errors.New("process logger already installed")

var (
	installMu sync.Mutex
	installed bool
	closer    io.Closer
	sink      io.Writer
)

// LoggerOptions describes the process-wide logger.
type LoggerOptions struct {
	// Level is the minimum level that is written.
	Level zerolog.Level

	// Writers receive every log event. Stderr is used when empty.
	Writers []io.Writer
}

// SetDefaultLogger provides an ok log output format on startup if no config is set.
//
// This is not an installation: Install may still be called afterwards.
func SetDefaultLogger() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
}

// Install sets up the process-wide logger exactly once.
//
// Writes go through a non-blocking diode so a slow sink never stalls request handling;
// messages that cannot be buffered are dropped and counted.
//
// A second call returns ErrLoggerInstalled and leaves the current logger untouched.
func Install(opts LoggerOptions) error {
	installMu.Lock()
	defer installMu.Unlock()

	if installed {
		return ErrLoggerInstalled
	}

	writers := opts.Writers
	if len(writers) == 0 {
		writers = []io.Writer{os.Stderr}
	}

	sink = zerolog.MultiLevelWriter(writers...)

	// Hide io.Closer so closing the diode never closes stderr.
	dw := diode.NewWriter(struct{ io.Writer }{sink}, diodeBufferSize, diodePollInterval, func(missed int) {
		fmt.Fprintf(os.Stderr, "logger dropped %d messages\n", missed)
	})

	zerolog.SetGlobalLevel(opts.Level)

	log.Logger = zerolog.New(dw).With().Timestamp().Logger()
	closer = dw
	installed = true

	return nil
}

// Flush drains buffered log messages. Call it once before the process exits.
//
// Later messages are written synchronously to the installed writers.
func Flush() {
	installMu.Lock()
	defer installMu.Unlock()

	if closer != nil {
		_ = closer.Close()
		closer = nil

		log.Logger = zerolog.New(sink).With().Timestamp().Logger()
	}
}
