// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package router

import (
	"net/http"

	"codeberg.org/petbonk/petbonk/server/middleware"
	"codeberg.org/petbonk/petbonk/server/routes"
)

// Router wraps http.ServeMux and provides middleware chaining functionality.
type Router struct {
	*http.ServeMux

	middlewares []middleware.Middleware
}

// NewRouter creates a new Router instance.
func NewRouter() *Router {
	return &Router{
		ServeMux: http.NewServeMux(),
	}
}

// Use adds a middleware to the router's chain.
func (router *Router) Use(middleware middleware.Middleware) {
	router.middlewares = append(router.middlewares, middleware)
}

// Namespace mounts a route group at ns.Prefix.
//
// The group serves the discord user endpoint at "GET <prefix>" (ID in the "id" query
// parameter) and "GET <prefix>/{id}". Any other method, HEAD included, gets 405 before
// routing. Every response from within the group, including its 404 and 405 responses,
// carries the Cache-Control header of ns.MaxAge.
func (router *Router) Namespace(ns routes.Namespace) {
	handler := middleware.CatchError(routes.DiscordUser(ns.Renderer))

	sub := http.NewServeMux()
	sub.HandleFunc("GET "+ns.Prefix, handler)
	sub.HandleFunc("GET "+ns.Prefix+"/{id}", handler)

	wrapped := middleware.Wrap(middleware.CacheControl(ns.MaxAge), middleware.Wrap(middleware.GetOnly, sub))

	router.Handle(ns.Prefix, wrapped)
	router.Handle(ns.Prefix+"/", wrapped)
}

// runs router.middlewares[i] and every thereafter
func (router *Router) serve(i int, w http.ResponseWriter, r *http.Request) {
	if i < len(router.middlewares) {
		router.middlewares[i](w, r, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			router.serve(i+1, w, r)
		}))
	} else {
		router.ServeMux.ServeHTTP(w, r)
	}
}

// runs all middleware
func (router *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	router.serve(0, w, r)
}
