// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package render

import (
	"image"
	"image/color"
)

// PetDelay is the delay between pet frames in hundredths of a second.
const PetDelay = 6

// petBase is where the avatar sits when not squished.
var petBase = image.Rect(16, 16, Size, Size)

// petSquish offsets petBase per frame: the hand pushes the top edge down and the
// avatar widens. The bottom edge stays put.
var petSquish = []struct{ x, y, w int }{
	{0, 0, 0},
	{-4, 12, 4},
	{-12, 18, 12},
	{-8, 12, 4},
	{-4, 0, 0},
}

var (
	handSkin    = color.NRGBA{R: 0xf4, G: 0xc2, B: 0x9a, A: 0xff}
	handOutline = color.NRGBA{R: 0x8a, G: 0x5a, B: 0x3c, A: 0xff}
)

// Pet renders avatar being patted.
func Pet(avatar image.Image) ([]byte, error) {
	if err := checkAvatar(avatar); err != nil {
		return nil, err
	}

	return animate(len(petSquish), PetDelay, func(canvas *image.NRGBA, i int) {
		off := petSquish[i]

		r := image.Rect(
			petBase.Min.X+off.x,
			petBase.Min.Y+off.y,
			petBase.Max.X+off.x+off.w,
			petBase.Max.Y,
		)
		drawAvatar(canvas, avatar, r)

		// The palm rests on top of the avatar.
		cx := petBase.Min.X + petBase.Dx()/2 + off.x/2
		cy := r.Min.Y - 2

		fillEllipse(canvas, cx, cy, 34, 16, handOutline)
		fillEllipse(canvas, cx, cy, 32, 14, handSkin)
	})
}
