// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package render

import (
	"image"
	"image/color"
)

// BonkDelay is the delay between bonk frames in hundredths of a second.
const BonkDelay = 7

// bonkBase is where the avatar sits when not squashed. It is anchored to the bottom edge.
var bonkBase = image.Rect(16, 24, 16+88, Size)

const (
	malletHeadWidth   = 56
	malletHeadHeight  = 24
	malletHandleWidth = 10
)

// bonkFrames positions the bottom of the mallet head and the avatar squash per frame.
// While squash is non-zero the head rests on the avatar.
var bonkFrames = []struct{ malletBottom, squash int }{
	{0, 0},
	{16, 0},
	{bonkBase.Min.Y + 30, 30},
	{bonkBase.Min.Y + 22, 22},
	{bonkBase.Min.Y + 8, 8},
	{12, 0},
}

var (
	malletHead   = color.NRGBA{R: 0x8b, G: 0x5a, B: 0x2b, A: 0xff}
	malletBand   = color.NRGBA{R: 0x5c, G: 0x3a, B: 0x1a, A: 0xff}
	malletHandle = color.NRGBA{R: 0xc8, G: 0x9b, B: 0x6c, A: 0xff}
)

// Bonk renders avatar being hit with a mallet.
func Bonk(avatar image.Image) ([]byte, error) {
	if err := checkAvatar(avatar); err != nil {
		return nil, err
	}

	return animate(len(bonkFrames), BonkDelay, func(canvas *image.NRGBA, i int) {
		frame := bonkFrames[i]

		// Squashed vertically, bulging sideways.
		r := image.Rect(
			bonkBase.Min.X-frame.squash/3,
			bonkBase.Min.Y+frame.squash,
			bonkBase.Max.X+frame.squash/3,
			bonkBase.Max.Y,
		)
		drawAvatar(canvas, avatar, r)

		cx := bonkBase.Min.X + bonkBase.Dx()/2
		head := image.Rect(cx-malletHeadWidth/2, frame.malletBottom-malletHeadHeight, cx+malletHeadWidth/2, frame.malletBottom)

		fillRect(canvas, image.Rect(head.Max.X-malletHandleWidth, 0, head.Max.X, head.Min.Y+4), malletHandle)
		fillRect(canvas, head, malletHead)
		fillRect(canvas, image.Rect(head.Min.X+8, head.Min.Y, head.Min.X+14, head.Max.Y), malletBand)
		fillRect(canvas, image.Rect(head.Max.X-14, head.Min.Y, head.Max.X-8, head.Max.Y), malletBand)
	})
}
