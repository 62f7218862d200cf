// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package router

import (
	"codeberg.org/petbonk/petbonk/config"
	"codeberg.org/petbonk/petbonk/server/middleware"
)

// RegisterMiddleware installs the global middleware chain.
//
// Cache-Control is not set here; it is scoped to each namespace by Router.Namespace.
func (router *Router) RegisterMiddleware() error {
	compress, err := middleware.Compress(config.Global.Compression.MinSize)
	if err != nil {
		return err
	}

	// the first middleware is the most outer / first executed one
	router.Use(middleware.WithRequestContext) // needed for everything else
	router.Use(middleware.AccessLog)          // observes the final, compressed response
	router.Use(compress)
	router.Use(middleware.CORS(config.Global.CORS.MaxAge))
	router.Use(middleware.WithServerTiming)
	router.Use(middleware.SetResponseHeaders)

	return nil
}
