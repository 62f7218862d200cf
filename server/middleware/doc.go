// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package middleware provides the HTTP middleware of petbonk.

Global middleware is registered in router.RegisterMiddleware; CacheControl is applied
per route namespace by router.Namespace.
*/
package middleware
