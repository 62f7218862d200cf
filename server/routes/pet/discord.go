// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

// Package pet serves avatars being patted.
package pet

import (
	"codeberg.org/petbonk/petbonk/core/render"
	"codeberg.org/petbonk/petbonk/server/routes"
)

// Prefix is where the pet routes are mounted.
const Prefix = "/d"

// MaxAge is how long, in seconds, clients may cache a pet response.
const MaxAge uint64 = 3600

// Namespace returns the pet route group backed by users.
func Namespace(users routes.UserSource) routes.Namespace {
	return routes.Namespace{
		Prefix: Prefix,
		MaxAge: MaxAge,
		Renderer: routes.AvatarRenderer{
			Users:       users,
			Animate:     render.Pet,
			ContentType: render.ContentType,
		},
	}
}
