// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package pet

import (
	"bytes"
	"context"
	"image"
	"image/gif"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/petbonk/petbonk/core/discord"
	"codeberg.org/petbonk/petbonk/core/render"
)

type fakeUsers struct{}

func (fakeUsers) User(_ context.Context, id string) (*discord.User, error) {
	return &discord.User{ID: id}, nil
}

func (fakeUsers) Avatar(context.Context, *discord.User) (image.Image, error) {
	return image.NewNRGBA(image.Rect(0, 0, 32, 32)), nil
}

func TestNamespace(t *testing.T) {
	t.Parallel()

	ns := Namespace(fakeUsers{})

	assert.Equal(t, "/d", ns.Prefix)
	assert.Equal(t, uint64(3600), ns.MaxAge)

	rendered, err := ns.Renderer.Render(t.Context(), "80351110224678912")
	require.NoError(t, err)
	assert.Equal(t, render.ContentType, rendered.ContentType)

	anim, err := gif.DecodeAll(bytes.NewReader(rendered.Body))
	require.NoError(t, err)
	assert.Len(t, anim.Image, 5)
}
