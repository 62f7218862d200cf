// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

// Package bonk serves avatars being bonked.
package bonk

import (
	"codeberg.org/petbonk/petbonk/core/render"
	"codeberg.org/petbonk/petbonk/server/routes"
)

// Prefix is where the bonk routes are mounted.
const Prefix = "/bonk/d"

// MaxAge is how long, in seconds, clients may cache a bonk response.
const MaxAge uint64 = 1800

// Namespace returns the bonk route group backed by users.
func Namespace(users routes.UserSource) routes.Namespace {
	return routes.Namespace{
		Prefix: Prefix,
		MaxAge: MaxAge,
		Renderer: routes.AvatarRenderer{
			Users:       users,
			Animate:     render.Bonk,
			ContentType: render.ContentType,
		},
	}
}
