// Package apptoken keeps a single Twitch app access token on hand for the whole
// process.
//
// App access tokens are obtained via the OAuth client credentials grant, using our
// app's client ID and client secret:
//
// - https://dev.twitch.tv/docs/authentication/getting-tokens-oauth/#client-credentials-grant-flow
//
// Twitch tells us how long each token lives; we hold onto it until shortly before that
// deadline (the refresh margin), then request a new one the next time a token is
// needed. Concurrent callers that find the token stale share a single upstream request.
package apptoken
