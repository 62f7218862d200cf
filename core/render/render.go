// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

// Package render draws the pet and bonk animations as looping GIFs.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/color/palette"
	"image/gif"

	"golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"
)

// ContentType is the media type of every rendered animation.
const ContentType = "image/gif"

// Size is the width and height of every frame.
const Size = 112

var errNoAvatar = errors.New("no avatar to render")

// framePalette is the web-safe palette preceded by a transparent entry at index 0.
var framePalette = append(color.Palette{color.RGBA{}}, palette.WebSafe...)

// drawFunc paints frame i onto an empty, transparent canvas.
type drawFunc func(canvas *image.NRGBA, i int)

// animate renders count frames concurrently and encodes them as a looping GIF
// with delay hundredths of a second between frames.
func animate(count, delay int, drawFrame drawFunc) ([]byte, error) {
	frames := make([]*image.Paletted, count)

	var g errgroup.Group

	for i := range count {
		g.Go(func() error {
			canvas := image.NewNRGBA(image.Rect(0, 0, Size, Size))
			drawFrame(canvas, i)

			frames[i] = quantize(canvas)

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	anim := &gif.GIF{
		Image:     frames,
		Delay:     make([]int, count),
		Disposal:  make([]byte, count),
		LoopCount: 0,
	}

	for i := range count {
		anim.Delay[i] = delay
		anim.Disposal[i] = gif.DisposalBackground
	}

	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, anim); err != nil {
		return nil, fmt.Errorf("failed to encode GIF: %w", err)
	}

	return buf.Bytes(), nil
}

// quantize maps img onto framePalette with Floyd-Steinberg dithering.
// Fully transparent pixels map to index 0.
func quantize(img *image.NRGBA) *image.Paletted {
	dst := image.NewPaletted(img.Bounds(), framePalette)
	draw.FloydSteinberg.Draw(dst, dst.Bounds(), img, image.Point{})

	return dst
}

// drawAvatar scales avatar into r, which may extend past the canvas.
func drawAvatar(canvas *image.NRGBA, avatar image.Image, r image.Rectangle) {
	draw.ApproxBiLinear.Scale(canvas, r, avatar, avatar.Bounds(), draw.Over, nil)
}

func fillRect(canvas *image.NRGBA, r image.Rectangle, c color.Color) {
	draw.Draw(canvas, r, image.NewUniform(c), image.Point{}, draw.Over)
}

// fillEllipse fills the axis-aligned ellipse centred on (cx, cy) with radii rx and ry.
func fillEllipse(canvas *image.NRGBA, cx, cy, rx, ry int, c color.Color) {
	bounds := canvas.Bounds()

	for y := max(cy-ry, bounds.Min.Y); y <= min(cy+ry, bounds.Max.Y-1); y++ {
		for x := max(cx-rx, bounds.Min.X); x <= min(cx+rx, bounds.Max.X-1); x++ {
			dx := float64(x-cx) / float64(rx)
			dy := float64(y-cy) / float64(ry)

			if dx*dx+dy*dy <= 1 {
				canvas.Set(x, y, c)
			}
		}
	}
}

func checkAvatar(avatar image.Image) error {
	if avatar == nil || avatar.Bounds().Empty() {
		return errNoAvatar
	}

	return nil
}
