// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package routes

import (
	"context"
	"fmt"
	"image"
	"net/http"
	"strconv"

	"codeberg.org/petbonk/petbonk/core/discord"
)

// FallibleHandler is an HTTP handler that reports failure by returning an error.
// It is adapted to http.Handler by middleware.CatchError.
type FallibleHandler = func(w http.ResponseWriter, r *http.Request) error

// Rendered is the output of a Renderer.
type Rendered struct {
	ContentType string
	Body        []byte
}

// Renderer produces the response for a Discord user.
type Renderer interface {
	Render(ctx context.Context, userID string) (*Rendered, error)
}

// Namespace describes a route group: the prefix it is mounted at, the cache lifetime
// of its responses in seconds, and the renderer behind its discord user endpoint.
type Namespace struct {
	Prefix   string
	MaxAge   uint64
	Renderer Renderer
}

// DiscordUser serves the rendering of a Discord user.
//
// The user ID is taken from the {id} path wildcard, or from the "id" query parameter
// when the route has no wildcard.
func DiscordUser(renderer Renderer) FallibleHandler {
	return func(w http.ResponseWriter, r *http.Request) error {
		id := r.PathValue("id")
		if id == "" {
			id = r.URL.Query().Get("id")
		}

		if err := discord.ValidateUserID(id); err != nil {
			return err
		}

		rendered, err := renderer.Render(r.Context(), id)
		if err != nil {
			return fmt.Errorf("failed to render user %s: %w", id, err)
		}

		w.Header().Set("Content-Type", rendered.ContentType)
		w.Header().Set("Content-Length", strconv.Itoa(len(rendered.Body)))
		w.WriteHeader(http.StatusOK)

		_, err = w.Write(rendered.Body)

		return err
	}
}

// UserSource looks up Discord users and their avatars.
type UserSource interface {
	User(ctx context.Context, id string) (*discord.User, error)
	Avatar(ctx context.Context, user *discord.User) (image.Image, error)
}

// AvatarRenderer renders an animation from a user's avatar.
type AvatarRenderer struct {
	Users       UserSource
	Animate     func(avatar image.Image) ([]byte, error)
	ContentType string
}

// Render fetches the user's avatar and animates it.
func (ar AvatarRenderer) Render(ctx context.Context, userID string) (*Rendered, error) {
	user, err := ar.Users.User(ctx, userID)
	if err != nil {
		return nil, err
	}

	avatar, err := ar.Users.Avatar(ctx, user)
	if err != nil {
		return nil, err
	}

	body, err := ar.Animate(avatar)
	if err != nil {
		return nil, err
	}

	return &Rendered{ContentType: ar.ContentType, Body: body}, nil
}
