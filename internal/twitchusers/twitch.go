package twitchusers

import (
	"context"

	"github.com/nicklaw5/helix/v2"
)

// TwitchClient represents the subset of Twitch API client functionality used to look up
// users by login
type TwitchClient interface {
	SetAppAccessToken(accessToken string)
	GetUsers(params *helix.UsersParams) (*helix.UsersResponse, error)
}

// TokenSource supplies the app access token used to authorize Get Users requests
type TokenSource interface {
	Get(ctx context.Context) (string, error)
	Invalidate()
}
