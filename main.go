// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Petbonk serves animated GIFs of Discord users being patted or bonked.
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/rs/zerolog/log"

	"codeberg.org/petbonk/petbonk/config"
	"codeberg.org/petbonk/petbonk/core/audit"
	"codeberg.org/petbonk/petbonk/core/discord"
	"codeberg.org/petbonk/petbonk/core/requests"
	"codeberg.org/petbonk/petbonk/server/router"
	"codeberg.org/petbonk/petbonk/server/routes/bonk"
	"codeberg.org/petbonk/petbonk/server/routes/pet"
	"codeberg.org/petbonk/petbonk/server/utils"
)

const projectURL = "https://codeberg.org/petbonk/petbonk"

// main is the entry point of the application.
func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("Application failed")
	}
}

// run orchestrates the application startup and graceful shutdown.
func run() error {
	audit.SetDefaultLogger()

	if err := config.Global.LoadConfig(); err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	defer audit.Flush()

	users, err := newDiscordClient()
	if err != nil {
		return err
	}

	router := router.NewRouter()
	router.DefineRoutes(pet.Namespace(users), bonk.Namespace(users))

	if err := router.RegisterMiddleware(); err != nil {
		return fmt.Errorf("failed to register middleware: %w", err)
	}

	httpCfg := config.Global.HTTP

	// Create http.Server instance
	server := &http.Server{
		Handler:           router,
		ReadHeaderTimeout: httpCfg.ReadHeaderTimeout,
		ReadTimeout:       httpCfg.ReadTimeout,
		WriteTimeout:      httpCfg.WriteTimeout,
		IdleTimeout:       httpCfg.IdleTimeout,
	}

	listener, err := listen()
	if err != nil {
		return err
	}

	// Channel to listen for server errors
	serverErrors := make(chan error, 1)

	go func() {
		serverErrors <- server.Serve(listener)
	}()

	// Set up graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Block until a shutdown signal or a server error is received
	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case s := <-quit:
		log.Info().Str("signal", s.String()).Msg("Shutdown signal received")
		log.Info().Msg("Shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), httpCfg.ShutdownTimeout)

		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
	}

	log.Info().Msg("Server exited gracefully")

	return nil
}

// newDiscordClient builds the Discord client described by the configuration.
func newDiscordClient() (*discord.Client, error) {
	cfg := config.Global

	var cache *requests.ResponseCache

	if cfg.Cache.Enabled {
		var err error

		cache, err = requests.NewResponseCache(cfg.Cache.Size, cfg.Cache.TTL, cfg.Cache.Compress)
		if err != nil {
			return nil, fmt.Errorf("failed to create cache: %w", err)
		}
	} else {
		log.Info().
			Msg("Cache is disabled, skipping cache initialization")
	}

	return discord.NewClient(discord.Options{
		APIURL:     cfg.Discord.APIURL,
		CDNURL:     cfg.Discord.CDNURL,
		Token:      cfg.Discord.Token,
		UserAgent:  "DiscordBot (" + projectURL + ", " + config.BuildVersion + ")",
		AvatarSize: cfg.Discord.AvatarSize,
		HTTPClient: utils.HTTPClient,
		RateLimit:  cfg.Discord.RateLimit,
		RateBurst:  cfg.Discord.RateBurst,
		Cache:      cache,
	}), nil
}

// listen binds the TCP listener on all interfaces at the configured port.
func listen() (net.Listener, error) {
	addr := net.JoinHostPort(config.ListenHost, strconv.FormatUint(uint64(config.Global.Basic.Port), 10))

	tcpListener, err := (&net.ListenConfig{}).Listen(context.Background(), "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to start TCP listener on %v: %w", addr, err)
	}

	addr = tcpListener.Addr().String()

	// Extract the port for logging
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		_ = tcpListener.Close()

		return nil, fmt.Errorf("failed to parse listener address %q: %w", addr, err)
	}

	// Log the address and convenient URL for local development
	log.Info().
		Str("address", addr).
		Str("port", port).
		Str("url", fmt.Sprintf("http://localhost:%v/d/", port)).
		Msg("Listening on address")

	return tcpListener, nil
}
