// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package routes

import (
	"context"
	"errors"
	"image"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/petbonk/petbonk/core/discord"
)

const testUserID = "80351110224678912"

type recordingRenderer struct {
	ids []string
	err error
}

func (rr *recordingRenderer) Render(_ context.Context, userID string) (*Rendered, error) {
	rr.ids = append(rr.ids, userID)
	if rr.err != nil {
		return nil, rr.err
	}

	return &Rendered{ContentType: "image/gif", Body: []byte("GIF89a" + userID)}, nil
}

func TestDiscordUser(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		pattern string
		target  string
	}{
		{name: "path wildcard", pattern: "GET /d/{id}", target: "/d/" + testUserID},
		{name: "query parameter", pattern: "GET /d", target: "/d?id=" + testUserID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			renderer := &recordingRenderer{}
			handler := DiscordUser(renderer)

			mux := http.NewServeMux()
			mux.HandleFunc(tt.pattern, func(w http.ResponseWriter, r *http.Request) {
				require.NoError(t, handler(w, r))
			})

			rr := httptest.NewRecorder()
			mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, tt.target, nil))

			assert.Equal(t, http.StatusOK, rr.Code)
			assert.Equal(t, "image/gif", rr.Header().Get("Content-Type"))
			assert.Equal(t, "23", rr.Header().Get("Content-Length"))
			assert.Equal(t, "GIF89a"+testUserID, rr.Body.String())
			assert.Equal(t, []string{testUserID}, renderer.ids)
		})
	}
}

func TestDiscordUserInvalidID(t *testing.T) {
	t.Parallel()

	renderer := &recordingRenderer{}

	for _, target := range []string{"/d", "/d?id=abc", "/d?id=1"} {
		err := DiscordUser(renderer)(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, target, nil))
		require.ErrorIs(t, err, discord.ErrInvalidUserID, target)
	}

	assert.Empty(t, renderer.ids, "the renderer is never reached with an invalid ID")
}

func TestDiscordUserRenderError(t *testing.T) {
	t.Parallel()

	renderErr := errors.New("render failed")
	rr := httptest.NewRecorder()

	err := DiscordUser(&recordingRenderer{err: renderErr})(rr, httptest.NewRequest(http.MethodGet, "/d?id="+testUserID, nil))
	require.ErrorIs(t, err, renderErr)
	assert.Empty(t, rr.Body.String())
}

type fakeUsers struct {
	userErr   error
	avatarErr error
}

func (f fakeUsers) User(_ context.Context, id string) (*discord.User, error) {
	if f.userErr != nil {
		return nil, f.userErr
	}

	return &discord.User{ID: id}, nil
}

func (f fakeUsers) Avatar(context.Context, *discord.User) (image.Image, error) {
	if f.avatarErr != nil {
		return nil, f.avatarErr
	}

	return image.NewNRGBA(image.Rect(0, 0, 2, 2)), nil
}

func TestAvatarRenderer(t *testing.T) {
	t.Parallel()

	animate := func(avatar image.Image) ([]byte, error) {
		return []byte(avatar.Bounds().String()), nil
	}

	rendered, err := AvatarRenderer{Users: fakeUsers{}, Animate: animate, ContentType: "image/gif"}.Render(t.Context(), testUserID)
	require.NoError(t, err)
	assert.Equal(t, "image/gif", rendered.ContentType)
	assert.Equal(t, "(0,0)-(2,2)", string(rendered.Body))

	_, err = AvatarRenderer{Users: fakeUsers{userErr: discord.ErrUnknownUser}, Animate: animate}.Render(t.Context(), testUserID)
	require.ErrorIs(t, err, discord.ErrUnknownUser)

	avatarErr := errors.New("cdn down")
	_, err = AvatarRenderer{Users: fakeUsers{avatarErr: avatarErr}, Animate: animate}.Render(t.Context(), testUserID)
	require.ErrorIs(t, err, avatarErr)
}
