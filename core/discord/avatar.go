// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package discord

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"net/url"
	"strconv"

	"github.com/rs/zerolog/log"
	_ "golang.org/x/image/webp" // register WebP decoder

	"codeberg.org/petbonk/petbonk/core/audit"
)

const (
	// defaultAvatarCount is the number of default avatars for migrated usernames.
	defaultAvatarCount = 6

	// legacyDefaultAvatarCount is the number of default avatars selected by discriminator.
	legacyDefaultAvatarCount = 5

	snowflakeTimestampShift = 22
)

// AvatarURL returns the PNG avatar URL for u on the given CDN.
//
// Animated avatars are requested as PNG, which yields their first frame.
func (u User) AvatarURL(cdnURL string, size int) string {
	if u.Avatar == "" {
		return cdnURL + "/embed/avatars/" + strconv.Itoa(u.defaultAvatarIndex()) + ".png"
	}

	return cdnURL + "/avatars/" + url.PathEscape(u.ID) + "/" + url.PathEscape(u.Avatar) +
		".png?size=" + strconv.Itoa(size)
}

func (u User) defaultAvatarIndex() int {
	if u.Discriminator == "" || u.Discriminator == "0" {
		id, err := strconv.ParseUint(u.ID, 10, 64)
		if err != nil {
			return 0
		}

		return int((id >> snowflakeTimestampShift) % defaultAvatarCount)
	}

	discriminator, err := strconv.Atoi(u.Discriminator)
	if err != nil {
		return 0
	}

	return discriminator % legacyDefaultAvatarCount
}

// Avatar fetches and decodes the avatar of user.
func (c *Client) Avatar(ctx context.Context, user *User) (image.Image, error) {
	body, err := c.cdn.GetBytes(ctx, user.AvatarURL(c.cdnURL, c.avatarSize), audit.ToCDN)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch avatar of %s: %w", user.ID, err)
	}

	img, format, err := image.Decode(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to decode avatar of %s: %w", user.ID, err)
	}

	log.Debug().
		Str("user", user.ID).
		Str("format", format).
		Stringer("bounds", img.Bounds()).
		Msg("Decoded avatar")

	return img, nil
}
