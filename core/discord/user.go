// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

// Package discord looks up Discord users and fetches their avatars.
package discord

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/tidwall/gjson"

	"codeberg.org/petbonk/petbonk/core/audit"
	"codeberg.org/petbonk/petbonk/core/requests"
)

var (
	// ErrInvalidUserID is returned for anything that is not a snowflake.
	ErrInvalidUserID = errors.New("invalid Discord user ID")

	// ErrUnknownUser is returned when Discord has no user with the given ID.
	ErrUnknownUser = errors.New("unknown Discord user")

	errMalformedUser = errors.New("malformed user object")
)

const (
	minSnowflakeLength = 17
	maxSnowflakeLength = 20
)

// User is the subset of a Discord user object we need.
type User struct {
	ID            string
	Username      string
	GlobalName    string
	Discriminator string
	Avatar        string // avatar hash, empty for the default avatar
}

// DisplayName returns the global display name, falling back to the username.
func (u User) DisplayName() string {
	if u.GlobalName != "" {
		return u.GlobalName
	}

	return u.Username
}

// Options configure a [Client].
type Options struct {
	APIURL     string
	CDNURL     string
	Token      string
	UserAgent  string
	AvatarSize int

	HTTPClient *http.Client
	RateLimit  float64
	RateBurst  int

	// Cache is shared by the API and CDN clients; nil disables caching.
	Cache *requests.ResponseCache
}

// Client talks to the Discord REST API and CDN.
type Client struct {
	api        *requests.Client
	cdn        *requests.Client
	apiURL     string
	cdnURL     string
	avatarSize int
}

// NewClient returns a Client configured by opts.
//
// The rate limit applies to API requests only; the CDN is not rate limited by Discord.
func NewClient(opts Options) *Client {
	header := http.Header{}
	if opts.UserAgent != "" {
		header.Set("User-Agent", opts.UserAgent)
	}

	apiHeader := header.Clone()
	if opts.Token != "" {
		apiHeader.Set("Authorization", "Bot "+opts.Token)
	}

	return &Client{
		api: requests.NewClient(requests.Options{
			HTTPClient: opts.HTTPClient,
			RateLimit:  opts.RateLimit,
			RateBurst:  opts.RateBurst,
			Cache:      opts.Cache,
			Header:     apiHeader,
		}),
		cdn: requests.NewClient(requests.Options{
			HTTPClient: opts.HTTPClient,
			Cache:      opts.Cache,
			Header:     header,
		}),
		apiURL:     opts.APIURL,
		cdnURL:     opts.CDNURL,
		avatarSize: opts.AvatarSize,
	}
}

// ValidateUserID reports whether id is a snowflake: 17 to 20 ASCII digits.
func ValidateUserID(id string) error {
	if len(id) < minSnowflakeLength || len(id) > maxSnowflakeLength {
		return fmt.Errorf("%w: %q", ErrInvalidUserID, id)
	}

	for i := range len(id) {
		if id[i] < '0' || id[i] > '9' {
			return fmt.Errorf("%w: %q", ErrInvalidUserID, id)
		}
	}

	// 20 digits can still overflow uint64.
	if _, err := strconv.ParseUint(id, 10, 64); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidUserID, id)
	}

	return nil
}

// User fetches the user with the given ID.
func (c *Client) User(ctx context.Context, id string) (*User, error) {
	if err := ValidateUserID(id); err != nil {
		return nil, err
	}

	body, err := c.api.GetJSON(ctx, c.apiURL+"/users/"+url.PathEscape(id), audit.ToDiscord)
	if err != nil {
		var apiErr *requests.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %w", ErrUnknownUser, err)
		}

		return nil, fmt.Errorf("failed to fetch user %s: %w", id, err)
	}

	return parseUser(body)
}

func parseUser(body []byte) (*User, error) {
	result := gjson.ParseBytes(body)

	user := &User{
		ID:            result.Get("id").String(),
		Username:      result.Get("username").String(),
		GlobalName:    result.Get("global_name").String(),
		Discriminator: result.Get("discriminator").String(),
		Avatar:        result.Get("avatar").String(),
	}

	if user.ID == "" {
		return nil, errMalformedUser
	}

	return user, nil
}
