// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package router

import (
	"net/http"
	"net/http/pprof"
	"runtime/trace"
	"time"

	"github.com/rs/zerolog/log"

	"codeberg.org/petbonk/petbonk/config"
	"codeberg.org/petbonk/petbonk/server/routes"
)

// DefineRoutes mounts the given namespaces. Any other path is answered 404 by the mux.
func (router *Router) DefineRoutes(namespaces ...routes.Namespace) {
	for _, ns := range namespaces {
		router.Namespace(ns)

		log.Debug().
			Str("prefix", ns.Prefix).
			Uint64("max_age", ns.MaxAge).
			Msg("Mounted namespace")
	}

	if config.Global.Development.InDevelopment {
		registerDebugRoutes(router)
	}
}

var flightRecorder = trace.NewFlightRecorder(trace.FlightRecorderConfig{MinAge: time.Minute})

func registerDebugRoutes(router *Router) {
	if err := flightRecorder.Start(); err != nil {
		log.Warn().Err(err).Msg("Failed to start flight recorder")
	}

	router.HandleFunc("GET /debug/pprof/", pprof.Index)
	router.HandleFunc("GET /debug/pprof/cmdline", pprof.Cmdline)
	router.HandleFunc("GET /debug/pprof/profile", pprof.Profile)
	router.HandleFunc("GET /debug/pprof/symbol", pprof.Symbol)
	router.HandleFunc("GET /debug/pprof/trace", pprof.Trace)
	router.HandleFunc("GET /debug/flight", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = flightRecorder.WriteTo(w)
	})
}
